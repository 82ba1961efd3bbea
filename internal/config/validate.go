package config

// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns issues that the CLI prints before
// any extract is opened. Thresholds out of range are errors: they would
// otherwise silently change which rows qualify.

import (
	"errors"
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config (e.g. "thresholds.min_votes", "sinks[1].db.dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error so an Issue can be returned on its own.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors joins the error-severity issues into one error, or returns nil.
func Errors(issues []Issue) error {
	var errs []error
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

// ValidatePipeline performs static validation of p. It does not mutate p.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, ValidateThresholds(p.Thresholds)...)
	issues = append(issues, validateSinks(p.Sinks)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Dir) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.dir", "file source requires a directory"})
		}
	case "http":
		if strings.TrimSpace(s.HTTP.BaseURL) == "" {
			issues = append(issues, Issue{SeverityError, "source.http.base_url", "http source requires a base_url"})
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{SeverityError, "source.http.max_retries", "max_retries must not be negative"})
		}
	case "gcs":
		if strings.TrimSpace(s.GCS.Bucket) == "" {
			issues = append(issues, Issue{SeverityError, "source.gcs.bucket", "gcs source requires a bucket"})
		}
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q", s.Kind)})
	}

	for entity := range s.Tables {
		if _, ok := DefaultTableFiles[entity]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.tables." + entity,
				Message:  fmt.Sprintf("unknown entity %q is ignored", entity),
			})
		}
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if p.Kind != "tsv" {
		issues = append(issues, Issue{SeverityError, "parser.kind", fmt.Sprintf("unsupported parser kind %q; only \"tsv\" is implemented", p.Kind)})
	}
	if sep := p.Options.String("array_separator", ","); sep == "" {
		issues = append(issues, Issue{SeverityError, "parser.options.array_separator", "array_separator must not be empty"})
	}
	if p.Options.String("null_sentinel", `\N`) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.null_sentinel",
			Message:  "empty null_sentinel; only empty cells will be treated as absent",
		})
	}
	return issues
}

// ValidateThresholds checks the qualifying constants. It is exported so that
// programmatic callers that build Thresholds by hand get the same fail-fast
// behavior as the CLI.
func ValidateThresholds(t Thresholds) []Issue {
	var issues []Issue
	add := func(path, msg string) {
		issues = append(issues, Issue{SeverityError, "thresholds." + path, msg})
	}

	if t.MinVotes < 0 {
		add("min_votes", fmt.Sprintf("min_votes=%d must not be negative", t.MinVotes))
	}
	if t.MinBirthYear > t.MaxBirthYear {
		add("min_birth_year", fmt.Sprintf("min_birth_year=%d exceeds max_birth_year=%d", t.MinBirthYear, t.MaxBirthYear))
	}
	if t.CurrentYear < 0 {
		add("current_year", "current_year must not be negative")
	}
	if t.CurrentYear > 0 {
		if t.MinReleaseYear < 1800 || t.MinReleaseYear > t.CurrentYear {
			add("min_release_year", fmt.Sprintf("min_release_year=%d outside [1800, %d]", t.MinReleaseYear, t.CurrentYear))
		}
		if t.MaxBirthYear > t.CurrentYear {
			add("max_birth_year", fmt.Sprintf("max_birth_year=%d is after current_year=%d", t.MaxBirthYear, t.CurrentYear))
		}
	} else if t.MinReleaseYear < 1800 {
		add("min_release_year", fmt.Sprintf("min_release_year=%d is before 1800", t.MinReleaseYear))
	}
	if t.MaxActors < 1 {
		add("max_actors", "max_actors must be at least 1")
	}

	mt := t.MovieTiers
	if !(mt.Excellent > mt.VeryGood && mt.VeryGood > mt.Good && mt.Good > mt.Average) {
		add("movie_tiers", "tiers must be strictly descending: excellent > very_good > good > average")
	}
	if mt.Excellent > 10 || mt.Average < 0 {
		add("movie_tiers", "tiers must lie within [0, 10]")
	}
	pt := t.PersonTiers
	if !(pt.Elite > pt.Excellent && pt.Excellent > pt.Good) {
		add("person_tiers", "tiers must be strictly descending: elite > excellent > good")
	}
	for name, cs := range map[string]CareerStages{"director_stages": t.DirectorStages, "actor_stages": t.ActorStages} {
		if !(cs.Prolific > cs.Established && cs.Established > cs.Emerging && cs.Emerging > 0) {
			add(name, "stages must be strictly descending and positive: prolific > established > emerging > 0")
		}
	}
	if !(t.RoleTypes.Leading > t.RoleTypes.Mixed && t.RoleTypes.Mixed >= 0 && t.RoleTypes.Leading <= 100) {
		add("role_types", "role types must satisfy 100 >= leading > mixed >= 0")
	}
	return issues
}

var knownSinks = map[string]struct{}{
	"sqlite": {}, "postgres": {}, "mysql": {}, "mssql": {},
	"bigquery": {}, "jsonl": {}, "xlsx": {},
}

var knownTables = map[string]struct{}{
	"movies": {}, "dim_actors": {}, "dim_directors": {},
}

func validateSinks(sinks []Sink) []Issue {
	var issues []Issue
	if len(sinks) == 0 {
		issues = append(issues, Issue{SeverityError, "sinks", "at least one sink is required"})
		return issues
	}
	for i, s := range sinks {
		base := fmt.Sprintf("sinks[%d]", i)
		if _, ok := knownSinks[s.Kind]; !ok {
			issues = append(issues, Issue{SeverityError, base + ".kind", fmt.Sprintf("unknown sink kind %q", s.Kind)})
			continue
		}
		switch s.Kind {
		case "sqlite", "postgres", "mysql", "mssql":
			if strings.TrimSpace(s.DB.DSN) == "" {
				issues = append(issues, Issue{SeverityError, base + ".db.dsn", "dsn must not be empty"})
			}
		case "jsonl", "xlsx":
			if strings.TrimSpace(s.File.Dir) == "" {
				issues = append(issues, Issue{SeverityError, base + ".file.dir", "dir must not be empty"})
			}
		case "bigquery":
			if strings.TrimSpace(s.BigQuery.Project) == "" {
				issues = append(issues, Issue{SeverityError, base + ".bigquery.project", "project must not be empty"})
			}
			if strings.TrimSpace(s.BigQuery.Dataset) == "" {
				issues = append(issues, Issue{SeverityError, base + ".bigquery.dataset", "dataset must not be empty"})
			}
		}
		for j, t := range s.Tables {
			if _, ok := knownTables[t]; !ok {
				issues = append(issues, Issue{SeverityError, fmt.Sprintf("%s.tables[%d]", base, j), fmt.Sprintf("unknown mart table %q", t)})
			}
		}
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue
	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; a default of 4096 is used", r.BatchSize),
		})
	}
	if r.ReaderWorkers < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.reader_workers", "reader_workers must not be negative"})
	}
	if r.LoaderWorkers < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.loader_workers", "loader_workers must not be negative"})
	}
	return issues
}
