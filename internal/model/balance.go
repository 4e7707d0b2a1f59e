package model

// BalanceSheet holds one reporting date's standard balance sheet line items.
type BalanceSheet struct {
	// Current assets
	CashAndEquivalents   LineItem `json:"cash_and_equivalents"`
	ShortTermInvestments LineItem `json:"short_term_investments"`
	AccountsReceivable   LineItem `json:"accounts_receivable"`
	Inventory            LineItem `json:"inventory"`
	PrepaidExpenses      LineItem `json:"prepaid_expenses"`
	OtherCurrentAssets   LineItem `json:"other_current_assets"`
	TotalCurrentAssets   LineItem `json:"total_current_assets"`

	// Non-current assets
	PPEGross                LineItem `json:"ppe_gross"`
	AccumulatedDepreciation LineItem `json:"accumulated_depreciation"`
	PPENet                  LineItem `json:"ppe_net"`
	IntangibleAssets        LineItem `json:"intangible_assets"`
	Goodwill                LineItem `json:"goodwill"`
	LongTermInvestments     LineItem `json:"long_term_investments"`
	OtherNonCurrentAssets   LineItem `json:"other_non_current_assets"`
	TotalNonCurrentAssets   LineItem `json:"total_non_current_assets"`
	TotalAssets             LineItem `json:"total_assets"`

	// Current liabilities
	AccountsPayable         LineItem `json:"accounts_payable"`
	ShortTermDebt           LineItem `json:"short_term_debt"`
	AccruedExpenses         LineItem `json:"accrued_expenses"`
	DeferredRevenueCurrent  LineItem `json:"deferred_revenue_current"`
	OtherCurrentLiabilities LineItem `json:"other_current_liabilities"`
	TotalCurrentLiabilities LineItem `json:"total_current_liabilities"`

	// Non-current liabilities
	LongTermDebt               LineItem `json:"long_term_debt"`
	DeferredTaxLiabilities     LineItem `json:"deferred_tax_liabilities"`
	PensionLiabilities         LineItem `json:"pension_liabilities"`
	OtherNonCurrentLiabilities LineItem `json:"other_non_current_liabilities"`
	TotalNonCurrentLiabilities LineItem `json:"total_non_current_liabilities"`
	TotalLiabilities           LineItem `json:"total_liabilities"`

	// Equity
	CommonStock                          LineItem `json:"common_stock"`
	AdditionalPaidInCapital              LineItem `json:"additional_paid_in_capital"`
	RetainedEarnings                     LineItem `json:"retained_earnings"`
	TreasuryStock                        LineItem `json:"treasury_stock"`
	AccumulatedOtherComprehensiveIncome  LineItem `json:"accumulated_other_comprehensive_income"`
	TotalShareholdersEquity              LineItem `json:"total_shareholders_equity"`
	TotalLiabilitiesAndEquity            LineItem `json:"total_liabilities_and_equity"`

	AsOfDate string `json:"as_of_date,omitempty"`
	Currency string `json:"currency,omitempty"`
	Scale    string `json:"scale,omitempty"`
}

// Fields returns the line items in statement order.
func (s *BalanceSheet) Fields() []NamedItem {
	return []NamedItem{
		{"cash_and_equivalents", &s.CashAndEquivalents},
		{"short_term_investments", &s.ShortTermInvestments},
		{"accounts_receivable", &s.AccountsReceivable},
		{"inventory", &s.Inventory},
		{"prepaid_expenses", &s.PrepaidExpenses},
		{"other_current_assets", &s.OtherCurrentAssets},
		{"total_current_assets", &s.TotalCurrentAssets},
		{"ppe_gross", &s.PPEGross},
		{"accumulated_depreciation", &s.AccumulatedDepreciation},
		{"ppe_net", &s.PPENet},
		{"intangible_assets", &s.IntangibleAssets},
		{"goodwill", &s.Goodwill},
		{"long_term_investments", &s.LongTermInvestments},
		{"other_non_current_assets", &s.OtherNonCurrentAssets},
		{"total_non_current_assets", &s.TotalNonCurrentAssets},
		{"total_assets", &s.TotalAssets},
		{"accounts_payable", &s.AccountsPayable},
		{"short_term_debt", &s.ShortTermDebt},
		{"accrued_expenses", &s.AccruedExpenses},
		{"deferred_revenue_current", &s.DeferredRevenueCurrent},
		{"other_current_liabilities", &s.OtherCurrentLiabilities},
		{"total_current_liabilities", &s.TotalCurrentLiabilities},
		{"long_term_debt", &s.LongTermDebt},
		{"deferred_tax_liabilities", &s.DeferredTaxLiabilities},
		{"pension_liabilities", &s.PensionLiabilities},
		{"other_non_current_liabilities", &s.OtherNonCurrentLiabilities},
		{"total_non_current_liabilities", &s.TotalNonCurrentLiabilities},
		{"total_liabilities", &s.TotalLiabilities},
		{"common_stock", &s.CommonStock},
		{"additional_paid_in_capital", &s.AdditionalPaidInCapital},
		{"retained_earnings", &s.RetainedEarnings},
		{"treasury_stock", &s.TreasuryStock},
		{"accumulated_other_comprehensive_income", &s.AccumulatedOtherComprehensiveIncome},
		{"total_shareholders_equity", &s.TotalShareholdersEquity},
		{"total_liabilities_and_equity", &s.TotalLiabilitiesAndEquity},
	}
}

// Normalize applies the nil-value invariant to every field.
func (s *BalanceSheet) Normalize() {
	for _, f := range s.Fields() {
		f.Item.Normalize()
	}
}
