// Package spreader implements the financial statement extraction pipeline:
// rendering source documents to model-readable pages, detecting statement
// types and reporting periods, classifying period columns against rollups,
// extracting structured line items, and validating and reconciling the
// result.
package spreader

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bridge-group/spreader-cli/internal/llm"
	"github.com/bridge-group/spreader-cli/internal/model"
	"github.com/bridge-group/spreader-cli/internal/period"
	"github.com/bridge-group/spreader-cli/internal/render"
)

// Options tunes the pipeline. Zero values take documented defaults.
type Options struct {
	// Render controls document rasterization.
	Render render.Options

	// DetectionPages caps how many leading pages statement-type detection
	// sees. Default 8.
	DetectionPages int

	// MaxRetries bounds single-period validation retries. Default 2.
	MaxRetries int

	// ValidationTolerance is the relative tolerance for accounting-identity
	// checks. Default 0.05.
	ValidationTolerance float64

	// ReconcileTolerance is the relative tolerance for comparing stated
	// totals against their derivations. Default 0.01.
	ReconcileTolerance float64

	// ModelOverride forces a specific extraction model instead of the deep
	// tier default.
	ModelOverride string
}

func (o Options) withDefaults() Options {
	if o.DetectionPages <= 0 {
		o.DetectionPages = 8
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 2
	}
	if o.ValidationTolerance <= 0 {
		o.ValidationTolerance = 0.05
	}
	if o.ReconcileTolerance <= 0 {
		o.ReconcileTolerance = 0.01
	}
	return o
}

// Request describes one extraction.
type Request struct {
	// FilePath is the source document (.pdf or .xlsx).
	FilePath string

	// StatementType selects what to extract. StatementAuto detects and
	// extracts whatever the document contains.
	StatementType model.StatementType

	// Period is the requested reporting period label, or an auto sentinel
	// ("", "latest", "auto", "detect") to detect it. Single-period mode
	// only.
	Period string

	// MultiPeriod extracts every real period column instead of one.
	MultiPeriod bool
}

// Spreader runs the extraction pipeline.
type Spreader struct {
	gw       *llm.Gateway
	deep     *llm.Handle
	renderer render.Renderer
	prompts  *PromptSource
	opts     Options
}

// New builds a Spreader. A non-empty Options.ModelOverride must name a
// registered model with vision and structured output support.
func New(gw *llm.Gateway, renderer render.Renderer, prompts *PromptSource, opts Options) (*Spreader, error) {
	opts = opts.withDefaults()
	deep := gw.Deep()
	if opts.ModelOverride != "" {
		h, err := gw.Create(opts.ModelOverride)
		if err != nil {
			return nil, eris.Wrap(err, "spreader: resolve model override")
		}
		deep = h
	}
	return &Spreader{
		gw:       gw,
		deep:     deep,
		renderer: renderer,
		prompts:  prompts,
		opts:     opts,
	}, nil
}

// deepModel returns the handle used for final extraction calls.
func (s *Spreader) deepModel() *llm.Handle {
	return s.deep
}

// Spread runs one extraction end to end and returns the tagged result.
func (s *Spreader) Spread(ctx context.Context, req Request) (*model.SpreadResult, error) {
	ec := &model.ExtractionContext{}

	start := time.Now()
	pages, err := s.renderer.Render(ctx, req.FilePath, s.opts.Render)
	if err != nil {
		return nil, eris.Wrapf(err, "spreader: render %s", req.FilePath)
	}
	ec.RecordStep("render", time.Since(start).Milliseconds())

	zap.L().Info("document rendered",
		zap.String("file", req.FilePath),
		zap.Int("pages", len(pages)),
	)

	switch {
	case req.StatementType == model.StatementAuto:
		return s.spreadCombined(ctx, pages, req.Period, ec)
	case req.MultiPeriod:
		return s.spreadMultiPeriod(ctx, pages, req.StatementType, req.Period, ec)
	default:
		return s.spreadSingle(ctx, pages, req.StatementType, req.Period, ec)
	}
}

// spreadSingle extracts one period with a validation reasoning loop: extract,
// validate, and on failure re-extract with the prior output and its specific
// errors attached. After MaxRetries the last attempt is returned regardless,
// with its validation result attached; a statement that never reconciles is
// still more useful than no statement.
func (s *Spreader) spreadSingle(ctx context.Context, pages []render.Page, st model.StatementType, requested string, ec *model.ExtractionContext) (*model.SpreadResult, error) {
	periodLabel := requested
	if IsAutoPeriod(requested) {
		start := time.Now()
		det, err := s.detectPeriods(ctx, pages, requested, ec)
		ec.RecordStep("period_detection", time.Since(start).Milliseconds())
		if err != nil {
			return nil, err
		}
		periodLabel = det.BestPeriod
	}
	if !IsAutoPeriod(periodLabel) {
		periodLabel = period.Standardize(periodLabel)
	} else {
		periodLabel = "the most recent period shown"
	}

	var (
		raw json.RawMessage
		val model.ValidationResult
		rc  *model.RetryContext
		err error
	)
	for attempt := 1; attempt <= s.opts.MaxRetries+1; attempt++ {
		start := time.Now()
		raw, err = s.extractSingle(ctx, pages, st, periodLabel, rc, ec)
		ec.RecordStep("extract", time.Since(start).Milliseconds())
		if err != nil {
			return nil, err
		}

		val, err = s.parseAndValidateSingle(raw, st)
		if err != nil {
			return nil, err
		}
		if val.IsValid {
			break
		}

		zap.L().Warn("extraction failed validation",
			zap.Int("attempt", attempt),
			zap.Strings("errors", val.Errors),
		)
		if attempt > s.opts.MaxRetries {
			ec.Warn("returning result that failed validation after retries")
			break
		}
		rc = &model.RetryContext{
			Attempt:          attempt,
			PriorResult:      raw,
			ValidationErrors: val.Errors,
		}
	}

	return s.buildSingleResult(raw, st, periodLabel, val, ec)
}

// parseAndValidateSingle decodes one attempt's raw output and validates it.
func (s *Spreader) parseAndValidateSingle(raw json.RawMessage, st model.StatementType) (model.ValidationResult, error) {
	switch st {
	case model.StatementIncome:
		var stmt model.IncomeStatement
		if err := json.Unmarshal(raw, &stmt); err != nil {
			return model.ValidationResult{}, eris.Wrap(err, "spreader: parse income statement")
		}
		stmt.Normalize()
		return ValidateIncomeStatement(&stmt, s.opts.ValidationTolerance), nil
	case model.StatementBalance:
		var stmt model.BalanceSheet
		if err := json.Unmarshal(raw, &stmt); err != nil {
			return model.ValidationResult{}, eris.Wrap(err, "spreader: parse balance sheet")
		}
		stmt.Normalize()
		return ValidateBalanceSheet(&stmt, s.opts.ValidationTolerance), nil
	default:
		return model.ValidationResult{}, eris.Errorf("spreader: unsupported statement type %q", st)
	}
}

// buildSingleResult decodes the final attempt into the result union and
// applies reconciliation fills.
func (s *Spreader) buildSingleResult(raw json.RawMessage, st model.StatementType, periodLabel string, val model.ValidationResult, ec *model.ExtractionContext) (*model.SpreadResult, error) {
	res := &model.SpreadResult{Context: ec, Validation: []model.ValidationResult{val}}
	switch st {
	case model.StatementIncome:
		var stmt model.IncomeStatement
		if err := json.Unmarshal(raw, &stmt); err != nil {
			return nil, eris.Wrap(err, "spreader: parse income statement")
		}
		stmt.Normalize()
		if stmt.FiscalPeriod == "" {
			stmt.FiscalPeriod = periodLabel
		}
		reconcileIncomeStatement(&stmt, s.opts.ReconcileTolerance)
		res.Kind = model.ResultIncome
		res.Income = &stmt
	case model.StatementBalance:
		var stmt model.BalanceSheet
		if err := json.Unmarshal(raw, &stmt); err != nil {
			return nil, eris.Wrap(err, "spreader: parse balance sheet")
		}
		stmt.Normalize()
		res.Kind = model.ResultBalance
		res.Balance = &stmt
	}
	return res, nil
}

// spreadMultiPeriod runs the multi-period pipeline: detect periods, freeze
// the column classification, extract every period column in one call, then
// reconcile and validate. Validation here is diagnostic only; there is no
// re-extraction loop on this path.
func (s *Spreader) spreadMultiPeriod(ctx context.Context, pages []render.Page, st model.StatementType, requested string, ec *model.ExtractionContext) (*model.SpreadResult, error) {
	start := time.Now()
	det, err := s.detectPeriods(ctx, pages, requested, ec)
	ec.RecordStep("period_detection", time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}

	start = time.Now()
	frozen, err := s.classifyColumns(ctx, pages, det, st, ec)
	ec.RecordStep("column_classification", time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}

	start = time.Now()
	raw, err := s.extractMultiPeriod(ctx, pages, st, frozen, ec)
	ec.RecordStep("extract", time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}

	res := &model.SpreadResult{Context: ec}
	switch st {
	case model.StatementIncome:
		m, perr := parseMultiIncome(raw)
		if perr != nil {
			return nil, perr
		}
		standardizeIncomePeriods(m)
		reconcileMultiIncome(m, s.opts.ReconcileTolerance)
		res.Validation = validateMultiIncome(ctx, m, s.opts.ValidationTolerance)
		for _, f := range AuditIncomeConsistency(m) {
			ec.Warn(f)
		}
		for _, f := range auditPeriodMagnitudes(m) {
			ec.Warn(f)
		}
		res.Kind = model.ResultMultiIncome
		res.MultiIncome = m
	case model.StatementBalance:
		m, perr := parseMultiBalance(raw)
		if perr != nil {
			return nil, perr
		}
		standardizeBalancePeriods(m)
		res.Validation = validateMultiBalance(ctx, m, s.opts.ValidationTolerance)
		for _, f := range AuditBalanceConsistency(m) {
			ec.Warn(f)
		}
		res.Kind = model.ResultMultiBalance
		res.MultiBalance = m
	default:
		return nil, eris.Errorf("spreader: unsupported statement type %q", st)
	}

	logValidationFindings(res.Validation)
	return res, nil
}

// spreadCombined detects which statement types the document contains and
// extracts each present type through the multi-period pipeline. When both
// are present the two extractions run concurrently over their detected page
// ranges. A failure of one type does not discard the other.
func (s *Spreader) spreadCombined(ctx context.Context, pages []render.Page, requested string, ec *model.ExtractionContext) (*model.SpreadResult, error) {
	start := time.Now()
	det := s.detectStatementTypes(ctx, pages, ec)
	ec.RecordStep("statement_type_detection", time.Since(start).Milliseconds())

	combined := &model.CombinedExtraction{
		Detection: det,
		Metadata:  map[string]any{},
	}
	res := &model.SpreadResult{Kind: model.ResultCombined, Combined: combined, Context: ec}

	if !det.HasIncomeStatement && !det.HasBalanceSheet {
		combined.Metadata["note"] = "no financial statements detected in document"
		zap.L().Warn("no financial statements detected", zap.String("notes", det.Notes))
		return res, nil
	}

	// Sub-contexts keep the concurrent branches from racing on the shared
	// diagnostics; merged below.
	incomeEC := &model.ExtractionContext{}
	balanceEC := &model.ExtractionContext{}

	var (
		incomeRes  *model.SpreadResult
		balanceRes *model.SpreadResult
		incomeErr  error
		balanceErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	if det.HasIncomeStatement {
		g.Go(func() error {
			sub := selectPages(pages, det.IncomeStatementPages)
			incomeRes, incomeErr = s.spreadMultiPeriod(gctx, sub, model.StatementIncome, requested, incomeEC)
			return nil
		})
	}
	if det.HasBalanceSheet {
		g.Go(func() error {
			sub := selectPages(pages, det.BalanceSheetPages)
			balanceRes, balanceErr = s.spreadMultiPeriod(gctx, sub, model.StatementBalance, requested, balanceEC)
			return nil
		})
	}
	g.Wait()

	mergeContext(ec, incomeEC, "income")
	mergeContext(ec, balanceEC, "balance")

	switch {
	case incomeErr != nil:
		combined.Metadata["income_statement_error"] = incomeErr.Error()
		zap.L().Error("income statement extraction failed", zap.Error(incomeErr))
	case incomeRes != nil:
		combined.IncomeStatement = incomeRes.MultiIncome
		res.Validation = append(res.Validation, incomeRes.Validation...)
		if len(incomeRes.MultiIncome.Periods) > 0 {
			combined.Metadata["income_statement_quality"] = IncomeQuality(&incomeRes.MultiIncome.Periods[0].Statement)
		}
	}
	switch {
	case balanceErr != nil:
		combined.Metadata["balance_sheet_error"] = balanceErr.Error()
		zap.L().Error("balance sheet extraction failed", zap.Error(balanceErr))
	case balanceRes != nil:
		combined.BalanceSheet = balanceRes.MultiBalance
		res.Validation = append(res.Validation, balanceRes.Validation...)
		if len(balanceRes.MultiBalance.Periods) > 0 {
			combined.Metadata["balance_sheet_quality"] = BalanceQuality(&balanceRes.MultiBalance.Periods[0].Statement)
		}
	}

	combined.Metadata["parallel"] = det.HasIncomeStatement && det.HasBalanceSheet
	combined.Metadata["elapsed_ms"] = time.Since(start).Milliseconds()

	if combined.IncomeStatement == nil && combined.BalanceSheet == nil {
		return nil, eris.New("spreader: all detected statement extractions failed")
	}
	return res, nil
}

// standardizeIncomePeriods rewrites period labels into standard form.
func standardizeIncomePeriods(m *model.MultiPeriodIncomeStatement) {
	for i := range m.Periods {
		if std := period.Standardize(m.Periods[i].PeriodLabel); std != "" {
			m.Periods[i].PeriodLabel = std
		}
		if m.Periods[i].Statement.FiscalPeriod == "" {
			m.Periods[i].Statement.FiscalPeriod = m.Periods[i].PeriodLabel
		}
	}
}

// standardizeBalancePeriods rewrites period labels into standard form.
func standardizeBalancePeriods(m *model.MultiPeriodBalanceSheet) {
	for i := range m.Periods {
		if std := period.Standardize(m.Periods[i].PeriodLabel); std != "" {
			m.Periods[i].PeriodLabel = std
		}
		if m.Periods[i].Statement.AsOfDate == "" {
			m.Periods[i].Statement.AsOfDate = m.Periods[i].EndDate
		}
	}
}

// mergeContext folds a branch's diagnostics into the parent context. Step
// keys are namespaced per branch; the concurrent branches record the same
// step names and would otherwise overwrite each other.
func mergeContext(dst, src *model.ExtractionContext, branch string) {
	if src.FallbackPromptUsed {
		dst.FallbackPromptUsed = true
	}
	for _, m := range src.ModelsUsed {
		dst.RecordModel(m)
	}
	for name, ms := range src.StepDurationsMS {
		dst.RecordStep(branch+"."+name, ms)
	}
	for _, w := range src.Warnings {
		dst.Warn(w)
	}
}

// logValidationFindings logs multi-period validation failures. Diagnostic
// only on that path.
func logValidationFindings(results []model.ValidationResult) {
	for _, v := range results {
		if v.IsValid {
			continue
		}
		zap.L().Warn("period failed validation",
			zap.String("period", v.PeriodLabel),
			zap.Strings("errors", v.Errors),
		)
	}
}
