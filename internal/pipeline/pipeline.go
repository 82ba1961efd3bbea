// Package pipeline runs one mart build end to end: extract every raw IMDB
// table, stage it, build the movie fact table and the person dimensions,
// fingerprint the results and replace them in every configured sink.
//
// Extract and publish run concurrently; everything in between is pure and
// single-threaded, so two runs over the same inputs and thresholds publish
// byte-identical tables.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moviemart/internal/config"
	"moviemart/internal/datasource"
	"moviemart/internal/mart"
	"moviemart/internal/metrics"
	"moviemart/internal/schema"
	"moviemart/internal/staging"
	"moviemart/internal/storage"
)

// Test seams.
var (
	newSinkFn = storage.New
	nowFn     = time.Now
)

type run struct {
	cfg    config.Pipeline
	src    datasource.Source
	log    *zap.Logger
	report *Report
}

// Run executes cfg against src. Configuration is validated before any row is
// read. On failure the returned error wraps a *StageError and the report
// holds whatever was measured up to that point.
func Run(ctx context.Context, cfg config.Pipeline, src datasource.Source, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	config.ResolveCurrentYear(&cfg, nowFn())

	r := &run{
		cfg:    cfg,
		src:    src,
		log:    log.Named("pipeline"),
		report: newReport(cfg.Job, cfg.Thresholds.CurrentYear, nowFn()),
	}
	r.log.Info("run started",
		zap.String("run_id", r.report.RunID.String()),
		zap.String("job", cfg.Job),
		zap.Int64("min_votes", cfg.Thresholds.MinVotes),
		zap.Int("min_release_year", cfg.Thresholds.MinReleaseYear),
		zap.Int("current_year", cfg.Thresholds.CurrentYear),
	)

	if err := config.Errors(config.ValidatePipeline(cfg)); err != nil {
		return r.report, stageErr("config", KindConfig, err)
	}
	if src == nil {
		return r.report, stageErr("config", KindConfig, fmt.Errorf("no source"))
	}

	var raw staging.Raw
	if err := r.step("extract", func() (err error) {
		raw, err = r.extract(ctx)
		return err
	}); err != nil {
		return r.report, err
	}

	tables, err := r.build(raw)
	if err != nil {
		return r.report, err
	}

	if err := r.step("publish", func() error { return r.publish(ctx, tables) }); err != nil {
		return r.report, err
	}

	r.log.Info("run finished",
		zap.String("run_id", r.report.RunID.String()),
		zap.Any("rows", r.report.Rows),
		zap.Any("fingerprints", r.report.Fingerprints),
	)
	return r.report, nil
}

// Build runs staging, fact and dimension models over raw and returns the
// mart tables in publish order. It is the pure core of Run.
func Build(raw staging.Raw, th config.Thresholds) []schema.Table {
	return marts(staging.Build(raw, th), th)
}

func marts(st staging.Tables, th config.Thresholds) []schema.Table {
	movies := mart.BuildMovies(st, th)
	return []schema.Table{
		mart.MoviesTable(movies),
		mart.ActorsTable(mart.BuildActors(movies, st.People, th)),
		mart.DirectorsTable(mart.BuildDirectors(movies, st.People, th)),
	}
}

func (r *run) build(raw staging.Raw) ([]schema.Table, error) {
	th := r.cfg.Thresholds

	var st staging.Tables
	r.timed("stage", func() {
		st = staging.Build(raw, th)
		r.count("staging.clean_people", len(st.People))
		r.count("staging.clean_titles", len(st.Titles))
		r.count("staging.clean_ratings", len(st.Ratings))
		r.count("staging.director_credits", len(st.Directors))
		r.count("staging.actor_credits", len(st.Actors))
	})

	var tables []schema.Table
	r.timed("marts", func() { tables = marts(st, th) })

	if err := r.step("fingerprint", func() error { return r.fingerprint(tables) }); err != nil {
		return nil, err
	}
	return tables, nil
}

// fingerprint checks every table against its contract and records its hash.
func (r *run) fingerprint(tables []schema.Table) error {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return stageErr(t.Name, KindBuild, err)
		}
		fp, err := schema.Fingerprint(t)
		if err != nil {
			return stageErr(t.Name, KindBuild, err)
		}
		r.count("mart."+t.Name, len(t.Rows))
		r.report.mu.Lock()
		r.report.Fingerprints[t.Name] = schema.FingerprintHex(fp)
		r.report.mu.Unlock()
	}
	return nil
}

// step times fn and records it as a pipeline step.
func (r *run) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.record(name, err, time.Since(start))
	return err
}

// timed is step for work that cannot fail.
func (r *run) timed(name string, fn func()) {
	start := time.Now()
	fn()
	r.record(name, nil, time.Since(start))
}

func (r *run) record(name string, err error, d time.Duration) {
	metrics.RecordStep(r.cfg.Job, name, err, d)
	r.report.setDuration(name, d)
	if err != nil {
		r.log.Error("step failed", zap.String("step", name), zap.Duration("took", d), zap.Error(err))
		return
	}
	r.log.Debug("step done", zap.String("step", name), zap.Duration("took", d))
}

func (r *run) count(kind string, n int) {
	r.report.setRows(kind, n)
	metrics.RecordRows(r.cfg.Job, kind, int64(n))
}
