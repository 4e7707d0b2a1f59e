package model

// IncomeStatement holds one period's standard income statement line items.
// Zero-value items (nil Value, zero Confidence) mean the document had no
// matching row.
type IncomeStatement struct {
	Revenue                  LineItem `json:"revenue"`
	COGS                     LineItem `json:"cogs"`
	GrossProfit              LineItem `json:"gross_profit"`
	SalariesAndWages         LineItem `json:"salaries_and_wages"`
	RentExpense              LineItem `json:"rent_expense"`
	Utilities                LineItem `json:"utilities"`
	DepreciationAmortization LineItem `json:"depreciation_amortization"`
	MarketingAdvertising     LineItem `json:"marketing_advertising"`
	ProfessionalFees         LineItem `json:"professional_fees"`
	Insurance                LineItem `json:"insurance"`
	OtherOperatingExpenses   LineItem `json:"other_operating_expenses"`
	TotalOperatingExpenses   LineItem `json:"total_operating_expenses"`
	OperatingIncome          LineItem `json:"operating_income"`
	InterestExpense          LineItem `json:"interest_expense"`
	InterestIncome           LineItem `json:"interest_income"`
	OtherIncomeExpense       LineItem `json:"other_income_expense"`
	PretaxIncome             LineItem `json:"pretax_income"`
	IncomeTaxExpense         LineItem `json:"income_tax_expense"`
	NetIncome                LineItem `json:"net_income"`

	FiscalPeriod string `json:"fiscal_period,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Scale        string `json:"scale,omitempty"`
}

// Fields returns the line items in statement order.
func (s *IncomeStatement) Fields() []NamedItem {
	return []NamedItem{
		{"revenue", &s.Revenue},
		{"cogs", &s.COGS},
		{"gross_profit", &s.GrossProfit},
		{"salaries_and_wages", &s.SalariesAndWages},
		{"rent_expense", &s.RentExpense},
		{"utilities", &s.Utilities},
		{"depreciation_amortization", &s.DepreciationAmortization},
		{"marketing_advertising", &s.MarketingAdvertising},
		{"professional_fees", &s.ProfessionalFees},
		{"insurance", &s.Insurance},
		{"other_operating_expenses", &s.OtherOperatingExpenses},
		{"total_operating_expenses", &s.TotalOperatingExpenses},
		{"operating_income", &s.OperatingIncome},
		{"interest_expense", &s.InterestExpense},
		{"interest_income", &s.InterestIncome},
		{"other_income_expense", &s.OtherIncomeExpense},
		{"pretax_income", &s.PretaxIncome},
		{"income_tax_expense", &s.IncomeTaxExpense},
		{"net_income", &s.NetIncome},
	}
}

// Normalize applies the nil-value invariant to every field.
func (s *IncomeStatement) Normalize() {
	for _, f := range s.Fields() {
		f.Item.Normalize()
	}
}
