package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"moviemart/internal/config"
	"moviemart/internal/metrics"
	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// publish replaces tables in every sink. Sinks run concurrently, bounded by
// LoaderWorkers; tables within one sink are written in order over a single
// connection. A failing sink does not stop the others.
func (r *run) publish(ctx context.Context, tables []schema.Table) error {
	workers := r.cfg.Runtime.LoaderWorkers
	if workers <= 0 {
		workers = 1
	}
	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)

	names := sinkNames(r.cfg.Sinks)
	for i, sc := range r.cfg.Sinks {
		name := names[i]
		p.Go(func(ctx context.Context) error {
			if err := r.publishTo(ctx, name, sc, tables); err != nil {
				return stageErr("load."+name, KindSink, err)
			}
			return nil
		})
	}
	return p.Wait()
}

func (r *run) publishTo(ctx context.Context, name string, sc config.Sink, tables []schema.Table) error {
	log := r.log.With(zap.String("sink", name))

	sink, err := newSinkFn(ctx, storage.ConfigFromSink(sc))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn("close sink", zap.Error(err))
		}
	}()

	for _, t := range tables {
		if len(sc.Tables) > 0 && !slices.Contains(sc.Tables, t.Name) {
			continue
		}
		start := time.Now()
		n, err := sink.Replace(ctx, t)
		metrics.RecordStep(r.cfg.Job, "load."+name+"."+t.Name, err, time.Since(start))
		if err != nil {
			return fmt.Errorf("replace %s: %w", t.Name, err)
		}
		metrics.RecordWrite(r.cfg.Job, t.Name, name, n)
		r.report.setWritten(name, t.Name, n)
		log.Info("table replaced",
			zap.String("table", t.Name),
			zap.Int64("rows", n),
			zap.Duration("took", time.Since(start)),
		)
	}
	return nil
}

// sinkNames labels sinks by kind, adding the index when a kind repeats.
func sinkNames(sinks []config.Sink) []string {
	seen := map[string]int{}
	for _, s := range sinks {
		seen[s.Kind]++
	}
	out := make([]string, len(sinks))
	for i, s := range sinks {
		out[i] = s.Kind
		if seen[s.Kind] > 1 {
			out[i] = fmt.Sprintf("%s.%d", s.Kind, i)
		}
	}
	return out
}
