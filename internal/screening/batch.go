package screening

import (
	"context"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"golang.org/x/sync/errgroup"
)

// ScreenBatch screens records as of the configured date.
func (s *Service) ScreenBatch(ctx context.Context, recs []crecord.Record) ([]BatchItem, error) {
	return s.ScreenBatchAt(ctx, recs, crecord.Date{})
}

// ScreenBatchAt screens records concurrently on at most batch_workers
// goroutines. Items come back in input order. A record that fails to screen
// is reported in its item and does not stop the batch; only cancelling ctx
// does, in which case ctx's error is returned.
func (s *Service) ScreenBatchAt(ctx context.Context, recs []crecord.Record, asOf crecord.Date) ([]BatchItem, error) {
	items := make([]BatchItem, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.BatchWorkers, 1))

	for i, rec := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i].Index = i
			report, err := s.ScreenAt(gctx, rec, asOf)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				items[i].Error = err.Error()
				return nil
			}
			items[i].Report = &report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
