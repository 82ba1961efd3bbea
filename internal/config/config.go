// Package config defines the serializable configuration model for a mart
// build. A Pipeline names where the raw IMDB extracts live, how they are
// parsed, the qualifying thresholds the transformation applies, and the sinks
// that receive the finished mart tables.
//
// Pipelines are decoded from JSON or TOML files (see Load). Decoding happens on
// top of Default(), so a file only needs to mention what it changes:
//
//	{
//	  "job":        "imdb_marts",
//	  "source":     { "kind": "file", "file": { "dir": "data/raw" } },
//	  "thresholds": { "min_votes": 25000 },
//	  "sinks":      [ { "kind": "sqlite", "db": { "dsn": "marts.db" } } ]
//	}
package config

import "encoding/json"

// Entity names used to key source tables.
const (
	EntityPeople  = "people"
	EntityTitles  = "titles"
	EntityRatings = "ratings"
	EntityCrew    = "crew"
	EntityCast    = "cast"
)

// Entities lists every raw extract the pipeline reads, in staging order.
var Entities = []string{EntityPeople, EntityTitles, EntityRatings, EntityCrew, EntityCast}

// DefaultTableFiles maps each entity to its file name in the IMDB dump.
var DefaultTableFiles = map[string]string{
	EntityPeople:  "name.basics.tsv.gz",
	EntityTitles:  "title.basics.tsv.gz",
	EntityRatings: "title.ratings.tsv.gz",
	EntityCrew:    "title.crew.tsv.gz",
	EntityCast:    "title.principals.tsv.gz",
}

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels log lines and metrics for this run.
	Job string `json:"job" toml:"job"`

	Source     Source     `json:"source" toml:"source"`
	Parser     Parser     `json:"parser" toml:"parser"`
	Thresholds Thresholds `json:"thresholds" toml:"thresholds"`

	// Sinks receive the three mart tables. Every sink gets a full replace.
	Sinks []Sink `json:"sinks" toml:"sinks"`

	Runtime RuntimeConfig `json:"runtime" toml:"runtime"`
	Log     LogConfig     `json:"log" toml:"log"`
}

// RuntimeConfig controls batching and how many extracts/sinks run at once.
type RuntimeConfig struct {
	// BatchSize is the number of parsed rows handed to the transformer chain
	// at a time.
	BatchSize int `json:"batch_size" toml:"batch_size"`
	// ReaderWorkers bounds how many extracts are read concurrently.
	ReaderWorkers int `json:"reader_workers" toml:"reader_workers"`
	// LoaderWorkers bounds how many table writes run concurrently.
	LoaderWorkers int `json:"loader_workers" toml:"loader_workers"`
}

// LogConfig selects the zap log level and an optional log file.
type LogConfig struct {
	Level string `json:"level" toml:"level"`
	File  string `json:"file" toml:"file"`
}

// Source identifies where raw extracts are read from.
type Source struct {
	// Kind is one of "file", "http", "gcs".
	Kind string `json:"kind" toml:"kind"`

	File SourceFile `json:"file" toml:"file"`
	HTTP SourceHTTP `json:"http" toml:"http"`
	GCS  SourceGCS  `json:"gcs" toml:"gcs"`

	// Tables overrides the object name per entity (see DefaultTableFiles).
	Tables map[string]string `json:"tables" toml:"tables"`
}

// SourceFile reads extracts from a local directory.
type SourceFile struct {
	Dir string `json:"dir" toml:"dir"`
}

// SourceHTTP downloads extracts from a base URL.
type SourceHTTP struct {
	BaseURL            string `json:"base_url" toml:"base_url"`
	TimeoutSeconds     int    `json:"timeout_seconds" toml:"timeout_seconds"`
	MaxRetries         int    `json:"max_retries" toml:"max_retries"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" toml:"insecure_skip_verify"`
}

// SourceGCS reads extracts from a Cloud Storage bucket.
type SourceGCS struct {
	Bucket string `json:"bucket" toml:"bucket"`
	Prefix string `json:"prefix" toml:"prefix"`
}

// TableFile returns the configured object name for entity.
func (s Source) TableFile(entity string) string {
	if name, ok := s.Tables[entity]; ok && name != "" {
		return name
	}
	return DefaultTableFiles[entity]
}

// Parser selects how raw bytes become records.
type Parser struct {
	// Kind is currently always "tsv".
	Kind string `json:"kind" toml:"kind"`

	// Options keys for tsv: null_sentinel (string), array_separator (string),
	// comma (string), lazy_quotes (bool), trim_space (bool).
	Options Options `json:"options" toml:"options"`
}

// Sink selects one destination for the mart tables.
type Sink struct {
	// Kind is one of "sqlite", "postgres", "mysql", "mssql", "bigquery",
	// "jsonl", "xlsx".
	Kind string `json:"kind" toml:"kind"`

	DB       DBConfig       `json:"db" toml:"db"`
	File     FileConfig     `json:"file" toml:"file"`
	BigQuery BigQueryConfig `json:"bigquery" toml:"bigquery"`

	// Tables restricts the sink to a subset of mart tables. Empty means all.
	Tables []string `json:"tables" toml:"tables"`
}

// DBConfig configures SQL sinks.
type DBConfig struct {
	// DSN is handed to the driver unchanged.
	DSN string `json:"dsn" toml:"dsn"`
	// Schema optionally qualifies table names (postgres, mssql).
	Schema string `json:"schema" toml:"schema"`
}

// FileConfig configures file sinks.
type FileConfig struct {
	Dir string `json:"dir" toml:"dir"`
}

// BigQueryConfig configures the BigQuery sink.
type BigQueryConfig struct {
	Project  string `json:"project" toml:"project"`
	Dataset  string `json:"dataset" toml:"dataset"`
	Location string `json:"location" toml:"location"`
	// CredentialsFile points at a service account key. Empty uses
	// application default credentials.
	CredentialsFile string `json:"credentials_file" toml:"credentials_file"`
}

// Default returns a Pipeline populated with the stock thresholds and runtime
// knobs. Files are decoded on top of it.
func Default() Pipeline {
	return Pipeline{
		Job:        "moviemart",
		Source:     Source{Kind: "file", File: SourceFile{Dir: "data/raw"}},
		Parser:     Parser{Kind: "tsv", Options: Options{}},
		Thresholds: DefaultThresholds(),
		Runtime: RuntimeConfig{
			BatchSize:     4096,
			ReaderWorkers: len(Entities),
			LoaderWorkers: 3,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Options is a small helper to fetch typed values from free-form option maps.
// Missing keys or values of an unexpected type yield the provided default.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the int value for key or def. JSON numbers arrive as float64 and
// TOML integers as int64; both are accepted.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if s, ok := o[key].(string); ok && len(s) > 0 {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the string-valued entries of an object option. Non-string
// values are skipped.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if m, ok := o[key].(map[string]any); ok {
		for k, vv := range m {
			if s, ok := vv.(string); ok {
				res[k] = s
			}
		}
	}
	return res
}

// UnmarshalJSON makes a missing or null "options" object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
