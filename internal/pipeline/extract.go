package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"moviemart/internal/config"
	"moviemart/internal/metrics"
	"moviemart/internal/parser/tsv"
	"moviemart/internal/staging"
	"moviemart/pkg/records"
)

// parseErrSamples is how many parse error messages are logged per entity.
const parseErrSamples = 3

// extract reads every entity concurrently, bounded by ReaderWorkers. Each
// entity decodes into its own field of the result.
func (r *run) extract(ctx context.Context) (staging.Raw, error) {
	var raw staging.Raw

	g, ctx := errgroup.WithContext(ctx)
	limit := r.cfg.Runtime.ReaderWorkers
	if limit <= 0 {
		limit = len(config.Entities)
	}
	g.SetLimit(limit)

	for _, entity := range config.Entities {
		sink := decoder(entity, &raw)
		g.Go(func() error {
			return r.step("extract."+entity, func() error {
				return r.extractOne(ctx, entity, sink)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return staging.Raw{}, err
	}
	return raw, nil
}

func (r *run) extractOne(ctx context.Context, entity string, sink func([]records.Record) int) error {
	stage := "extract." + entity
	name := r.cfg.Source.TableFile(entity)

	chain, err := staging.Chain(entity, staging.FormatFrom(r.cfg.Parser.Options))
	if err != nil {
		return stageErr(stage, KindConfig, err)
	}

	rc, err := r.src.Open(ctx, name)
	if err != nil {
		return stageErr(stage, KindSource, err)
	}
	defer rc.Close()

	agg := newErrAgg(parseErrSamples)
	var read, kept int
	emit := func(batch []records.Record) error {
		read += len(batch)
		kept += sink(chain.Apply(batch))
		return nil
	}

	err = tsv.Stream(ctx, rc, tsv.OptionsFrom(r.cfg.Parser.Options), r.cfg.Runtime.BatchSize, emit, agg.add)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return stageErr(stage, KindParse, fmt.Errorf("%s: %w", name, err))
	}

	bad, samples := agg.snapshot()
	for i, s := range samples {
		r.log.Warn("parse error", zap.String("entity", entity), zap.Int("sample", i+1), zap.String("error", s))
	}
	r.report.setParseErrors(entity, bad)
	metrics.RecordRows(r.cfg.Job, "parse_errors."+entity, bad)

	r.count("raw."+entity, kept)
	r.log.Info("extracted",
		zap.String("entity", entity),
		zap.String("file", name),
		zap.Int("read", read),
		zap.Int("kept", kept),
		zap.Int64("parse_errors", bad),
	)
	return nil
}

// decoder returns a func that decodes a cleaned batch into the matching
// field of raw and reports how many rows it added.
func decoder(entity string, raw *staging.Raw) func([]records.Record) int {
	switch entity {
	case config.EntityPeople:
		return func(recs []records.Record) int {
			d := staging.DecodePeople(recs)
			raw.People = append(raw.People, d...)
			return len(d)
		}
	case config.EntityTitles:
		return func(recs []records.Record) int {
			d := staging.DecodeTitles(recs)
			raw.Titles = append(raw.Titles, d...)
			return len(d)
		}
	case config.EntityRatings:
		return func(recs []records.Record) int {
			d := staging.DecodeRatings(recs)
			raw.Ratings = append(raw.Ratings, d...)
			return len(d)
		}
	case config.EntityCrew:
		return func(recs []records.Record) int {
			d := staging.DecodeCrew(recs)
			raw.Crew = append(raw.Crew, d...)
			return len(d)
		}
	case config.EntityCast:
		return func(recs []records.Record) int {
			d := staging.DecodeCast(recs)
			raw.Cast = append(raw.Cast, d...)
			return len(d)
		}
	}
	return func([]records.Record) int { return 0 }
}
