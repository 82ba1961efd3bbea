package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moviemart/internal/config"
	"moviemart/internal/datasource"
	"moviemart/internal/mart"
	"moviemart/internal/schema"
	"moviemart/internal/staging"
	"moviemart/internal/storage"
	_ "moviemart/internal/storage/jsonl"
)

func tsvLines(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func fixture() datasource.Memory {
	return datasource.Memory{
		"name.basics.tsv.gz": tsvLines(
			"nconst\tprimaryName\tbirthYear\tdeathYear\tprimaryProfession\tknownForTitles",
			"nm1\tAda Director\t1950\t\\N\tdirector\ttt1",
			"nm2\tBo Actor\t1970\t\\N\tactor\ttt1",
			"nm3\tCy Actress\t1980\t\\N\tactress\ttt2",
			"nm4\tDee Unknown\t1985\t\\N\tactress\t\\N",
		),
		"title.basics.tsv.gz": tsvLines(
			"tconst\ttitleType\tprimaryTitle\toriginalTitle\tisAdult\tstartYear\tendYear\truntimeMinutes\tgenres",
			"tt1\tmovie\tAlpha\tAlpha\t0\t2001\t\\N\t120\tDrama,Comedy",
			"tt2\tmovie\tBeta\tBeta\t0\t2005\t\\N\t95\tAction",
			"tt3\ttvSeries\tGamma\tGamma\t0\t2010\t\\N\t30\tDrama",
			"tt4\tmovie\tOld\tOld\t0\t1950\t\\N\t90\tDrama",
			"tt5\tmovie\tbroken line",
		),
		"title.ratings.tsv.gz": tsvLines(
			"tconst\taverageRating\tnumVotes",
			"tt1\t8.0\t20000",
			"tt2\t7.0\t30000",
			"tt3\t9.0\t50000",
			"tt4\t9.5\t50000",
		),
		"title.crew.tsv.gz": tsvLines(
			"tconst\tdirectors\twriters",
			"tt1\tnm1\t\\N",
			"tt2\tnm1,nm9\t\\N",
		),
		"title.principals.tsv.gz": tsvLines(
			"tconst\tordering\tnconst\tcategory\tjob\tcharacters",
			"tt1\t1\tnm2\tactor\t\\N\t[\"Hero\"]",
			"tt1\t2\tnm3\tactress\t\\N\t[\"Sidekick\"]",
			"tt2\t1\tnm3\tactress\t\\N\t[\"Lead\"]",
			"tt2\t2\tnm4\tactress\t\\N\t[\"Extra\"]",
		),
	}
}

func testConfig(dir string) config.Pipeline {
	cfg := config.Default()
	cfg.Job = "test"
	cfg.Thresholds.CurrentYear = 2024
	cfg.Thresholds.MinReleaseYear = 1990
	cfg.Sinks = []config.Sink{{Kind: "jsonl", File: config.FileConfig{Dir: dir}}}
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	rep, err := Run(context.Background(), testConfig(dir), fixture(), nil)
	require.NoError(t, err)

	assert.EqualValues(t, 2, rep.Rows["mart.movies"])
	// nm4 has no known titles, so it never becomes a clean person.
	assert.EqualValues(t, 2, rep.Rows["mart.dim_actors"])
	assert.EqualValues(t, 3, rep.Rows["staging.clean_people"])
	assert.EqualValues(t, 1, rep.Rows["mart.dim_directors"])
	assert.EqualValues(t, 4, rep.Rows["raw.titles"])
	assert.EqualValues(t, 1, rep.ParseErrors[config.EntityTitles])
	assert.Equal(t, []string{"dim_actors", "dim_directors", "movies"}, rep.Tables())
	assert.EqualValues(t, 2, rep.Written["jsonl"]["movies"])

	b, err := os.ReadFile(filepath.Join(dir, "movies.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `{"movie_id":"tt1","title":"Alpha"`), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `{"movie_id":"tt2","title":"Beta"`), lines[1])
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	first, err := Run(context.Background(), cfg, fixture(), nil)
	require.NoError(t, err)
	before := map[string][]byte{}
	for _, name := range first.Tables() {
		b, err := os.ReadFile(filepath.Join(dir, name+".jsonl"))
		require.NoError(t, err)
		before[name] = b
	}

	second, err := Run(context.Background(), cfg, fixture(), nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprints, second.Fingerprints)
	for name, want := range before {
		got, err := os.ReadFile(filepath.Join(dir, name+".jsonl"))
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestRun_ConfigErrorFailsBeforeReading(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Thresholds.MinVotes = -1

	opened := 0
	src := countingSource{Source: fixture(), opened: &opened}
	_, err := Run(context.Background(), cfg, src, nil)
	require.Error(t, err)
	assert.Equal(t, KindConfig, KindOf(err))
	assert.Zero(t, opened)
}

func TestRun_MissingExtract(t *testing.T) {
	src := fixture()
	delete(src, "title.crew.tsv.gz")

	_, err := Run(context.Background(), testConfig(t.TempDir()), src, nil)
	require.Error(t, err)
	assert.Equal(t, KindSource, KindOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "extract.crew", se.Stage)
}

func TestRun_SinkFailureDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Sinks = append(cfg.Sinks, config.Sink{Kind: "sqlite", DB: config.DBConfig{DSN: "ignored"}})

	orig := newSinkFn
	t.Cleanup(func() { newSinkFn = orig })
	newSinkFn = func(ctx context.Context, c storage.Config) (storage.Sink, error) {
		if c.Kind == "sqlite" {
			return failingSink{}, nil
		}
		return orig(ctx, c)
	}

	rep, err := Run(context.Background(), cfg, fixture(), nil)
	require.Error(t, err)
	assert.Equal(t, KindSink, KindOf(err))
	assert.ErrorContains(t, err, "load.sqlite")

	_, statErr := os.Stat(filepath.Join(dir, "movies.jsonl"))
	assert.NoError(t, statErr)
	assert.EqualValues(t, 2, rep.Written["jsonl"]["movies"])
}

func TestRun_SinkTableFilter(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Sinks[0].Tables = []string{mart.TableDirectors}

	_, err := Run(context.Background(), cfg, fixture(), nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "dim_directors.jsonl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "movies.jsonl"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_MatchesRunFingerprints(t *testing.T) {
	cfg := testConfig(t.TempDir())
	rep, err := Run(context.Background(), cfg, fixture(), nil)
	require.NoError(t, err)

	tables := Build(decodeFixture(t, cfg), cfg.Thresholds)
	require.Len(t, tables, 3)
	for _, tbl := range tables {
		fp, err := schema.Fingerprint(tbl)
		require.NoError(t, err)
		assert.Equal(t, schema.FingerprintHex(fp), rep.Fingerprints[tbl.Name], tbl.Name)
	}
}

func TestReport_WriteFile(t *testing.T) {
	rep, err := Run(context.Background(), testConfig(t.TempDir()), fixture(), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, rep.WriteFile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"run_id": "`+rep.RunID.String()+`"`)
	assert.Contains(t, string(b), `"mart.movies": 2`)
}

func TestBuildTables_ContractViolationIsBuildError(t *testing.T) {
	r := &run{cfg: testConfig(t.TempDir()), log: zap.NewNop(), report: newReport("test", 2024, nowFn())}
	err := r.fingerprint([]schema.Table{{
		Name:    mart.TableMovies,
		Columns: []schema.Column{{Name: "movie_id", Kind: schema.String}},
		Rows:    []schema.Row{{int64(7)}},
	}})
	require.Error(t, err)
	assert.Equal(t, KindBuild, KindOf(err))
	assert.Empty(t, r.report.Fingerprints)
}

func TestRun_StepsAreTimed(t *testing.T) {
	rep, err := Run(context.Background(), testConfig(t.TempDir()), fixture(), nil)
	require.NoError(t, err)
	for _, step := range []string{"extract", "stage", "marts", "fingerprint", "publish"} {
		assert.Contains(t, rep.Durations, step)
	}
}

func TestSinkNames(t *testing.T) {
	got := sinkNames([]config.Sink{{Kind: "jsonl"}, {Kind: "sqlite"}, {Kind: "jsonl"}})
	assert.Equal(t, []string{"jsonl.0", "sqlite", "jsonl.2"}, got)
}

func TestMartTablesAreKnownToConfig(t *testing.T) {
	for _, tbl := range mart.Schemas() {
		cfg := testConfig(t.TempDir())
		cfg.Sinks[0].Tables = []string{tbl.Name}
		assert.NoError(t, config.Errors(config.ValidatePipeline(cfg)), tbl.Name)
	}
}

func decodeFixture(t *testing.T, cfg config.Pipeline) staging.Raw {
	t.Helper()
	r := &run{cfg: cfg, src: fixture(), log: zap.NewNop(), report: newReport(cfg.Job, cfg.Thresholds.CurrentYear, nowFn())}
	raw, err := r.extract(context.Background())
	require.NoError(t, err)
	return raw
}

type countingSource struct {
	datasource.Source
	opened *int
}

func (c countingSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	*c.opened++
	return c.Source.Open(ctx, name)
}

type failingSink struct{}

func (failingSink) Replace(context.Context, schema.Table) (int64, error) {
	return 0, errors.New("disk full")
}

func (failingSink) Close() error { return nil }
