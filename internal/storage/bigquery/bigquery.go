// Package bigquery publishes mart tables to BigQuery with load jobs. The
// canonical JSON-lines encoding is uploaded as NEWLINE_DELIMITED_JSON with an
// explicit nested schema, and WRITE_TRUNCATE replaces the table atomically.
package bigquery

import (
	"bytes"
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// Sink loads tables into one dataset.
type Sink struct {
	client  *bigquery.Client
	dataset *bigquery.Dataset
}

// Open creates a client for project. Location pins load jobs to a region
// when set; credentialsFile overrides application default credentials.
func Open(ctx context.Context, project, dataset, location, credentialsFile string) (*Sink, error) {
	if project == "" || dataset == "" {
		return nil, fmt.Errorf("bigquery: project and dataset are required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery: new client: %w", err)
	}
	if location != "" {
		c.Location = location
	}
	return &Sink{client: c, dataset: c.Dataset(dataset)}, nil
}

func init() {
	storage.Register("bigquery", func(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(ctx, cfg.Project, cfg.Dataset, cfg.Location, cfg.CredentialsFile)
	})
}

// Replace runs a truncating load job and waits for it.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	var buf bytes.Buffer
	if err := t.WriteJSONL(&buf); err != nil {
		return 0, fmt.Errorf("bigquery: encode %s: %w", t.Name, err)
	}

	src := bigquery.NewReaderSource(&buf)
	src.SourceFormat = bigquery.JSON
	src.Schema = Schema(t.Columns)

	loader := s.dataset.Table(t.Name).LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteTruncate
	loader.CreateDisposition = bigquery.CreateIfNeeded

	job, err := loader.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("bigquery: start load %s: %w", t.Name, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("bigquery: wait load %s (job %s): %w", t.Name, job.ID(), err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("bigquery: load %s (job %s): %w", t.Name, job.ID(), err)
	}

	if t.Description != "" {
		if _, err := s.dataset.Table(t.Name).Update(ctx, bigquery.TableMetadataToUpdate{Description: t.Description}, ""); err != nil {
			return 0, fmt.Errorf("bigquery: describe %s: %w", t.Name, err)
		}
	}

	if st, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
		return st.OutputRows, nil
	}
	return int64(len(t.Rows)), nil
}

// Close closes the client.
func (s *Sink) Close() error { return s.client.Close() }

// Schema converts mart columns to a BigQuery schema. Non-nullable scalars are
// REQUIRED, repeated columns are REPEATED and records nest their fields.
func Schema(cols []schema.Column) bigquery.Schema {
	out := make(bigquery.Schema, 0, len(cols))
	for _, c := range cols {
		f := &bigquery.FieldSchema{
			Name:        c.Name,
			Description: c.Description,
			Type:        fieldType(c.Kind),
			Repeated:    c.Repeated,
			Required:    !c.Repeated && !c.Nullable,
		}
		if c.Kind == schema.Record {
			f.Schema = Schema(c.Fields)
		}
		out = append(out, f)
	}
	return out
}

func fieldType(k schema.Kind) bigquery.FieldType {
	switch k {
	case schema.Int:
		return bigquery.IntegerFieldType
	case schema.Float:
		return bigquery.FloatFieldType
	case schema.Bool:
		return bigquery.BooleanFieldType
	case schema.Record:
		return bigquery.RecordFieldType
	default:
		return bigquery.StringFieldType
	}
}
