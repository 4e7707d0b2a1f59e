package spreader

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bridge-group/spreader-cli/internal/model"
)

// BatchOptions controls batch fan-out.
type BatchOptions struct {
	// MaxConcurrentFiles caps in-flight documents. Default 3.
	MaxConcurrentFiles int

	// RatePerMinute throttles document starts to stay inside provider rate
	// limits. Zero disables throttling.
	RatePerMinute int
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.MaxConcurrentFiles <= 0 {
		o.MaxConcurrentFiles = 3
	}
	return o
}

// SpreadBatch runs the same request template against many files. Results
// come back in submission order; one file's failure fills its slot with the
// error and never aborts the rest of the batch.
func (s *Spreader) SpreadBatch(ctx context.Context, files []string, template Request, opts BatchOptions) *model.BatchResult {
	opts = opts.withDefaults()

	batch := &model.BatchResult{
		Files: make([]model.BatchFileResult, len(files)),
	}

	if len(files) > 1 {
		s.primeBatchCache(ctx, template)
	}

	var limiter *rate.Limiter
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrentFiles)

	for i, file := range files {
		g.Go(func() error {
			batch.Files[i].FilePath = file

			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					batch.Files[i].Error = err.Error()
					return nil
				}
			}

			req := template
			req.FilePath = file
			res, err := s.Spread(gctx, req)
			if err != nil {
				zap.L().Error("batch file failed",
					zap.String("file", file),
					zap.Error(err),
				)
				batch.Files[i].Error = err.Error()
				return nil
			}
			batch.Files[i].Result = res
			return nil
		})
	}
	g.Wait()

	for _, f := range batch.Files {
		if f.Error != "" {
			batch.Failed++
		} else {
			batch.Completed++
		}
	}

	zap.L().Info("batch complete",
		zap.Int("files", len(files)),
		zap.Int("completed", batch.Completed),
		zap.Int("failed", batch.Failed),
	)
	return batch
}

// primeBatchCache warms the prompt cache with the extraction instructions
// every batch file will reuse, one primer per statement type the template
// implies. A primer failure is not fatal; the first real call then writes
// the cache instead of reading it.
func (s *Spreader) primeBatchCache(ctx context.Context, template Request) {
	types := []model.StatementType{template.StatementType}
	if template.StatementType == model.StatementAuto {
		types = []model.StatementType{model.StatementIncome, model.StatementBalance}
	}

	ec := &model.ExtractionContext{}
	for _, st := range types {
		if err := s.deepModel().WarmCache(ctx, s.prompts.Instructions(st, ec)); err != nil {
			zap.L().Warn("prompt cache primer failed",
				zap.String("statement_type", string(st)),
				zap.Error(err),
			)
			return
		}
	}
}
