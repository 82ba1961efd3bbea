package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"moviemart/internal/storage"
)

// Report summarizes one run. Counts and fingerprints are stable across runs
// over the same inputs; RunID and timings are not.
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	Job         string    `json:"job"`
	StartedAt   time.Time `json:"started_at"`
	CurrentYear int       `json:"current_year"`

	// Rows counts records per stage output, e.g. "raw.people",
	// "staging.clean_titles", "mart.movies".
	Rows map[string]int64 `json:"rows"`
	// ParseErrors counts skipped lines per entity.
	ParseErrors map[string]int64 `json:"parse_errors,omitempty"`
	// Fingerprints holds the xxh3 hash of each mart table's canonical
	// encoding, hex formatted.
	Fingerprints map[string]string `json:"fingerprints"`
	// Written holds rows written per sink kind and table.
	Written map[string]map[string]int64 `json:"written,omitempty"`
	// Durations per step, in milliseconds.
	Durations map[string]int64 `json:"durations_ms"`

	mu sync.Mutex
}

func newReport(job string, year int, now time.Time) *Report {
	return &Report{
		RunID:        uuid.New(),
		Job:          job,
		StartedAt:    now.UTC(),
		CurrentYear:  year,
		Rows:         map[string]int64{},
		ParseErrors:  map[string]int64{},
		Fingerprints: map[string]string{},
		Written:      map[string]map[string]int64{},
		Durations:    map[string]int64{},
	}
}

func (r *Report) setRows(key string, n int) {
	r.mu.Lock()
	r.Rows[key] = int64(n)
	r.mu.Unlock()
}

func (r *Report) setParseErrors(entity string, n int64) {
	if n == 0 {
		return
	}
	r.mu.Lock()
	r.ParseErrors[entity] = n
	r.mu.Unlock()
}

func (r *Report) setWritten(sink, table string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Written[sink] == nil {
		r.Written[sink] = map[string]int64{}
	}
	r.Written[sink][table] = n
}

func (r *Report) setDuration(step string, d time.Duration) {
	r.mu.Lock()
	r.Durations[step] = d.Milliseconds()
	r.mu.Unlock()
}

// Tables lists the fingerprinted table names, sorted.
func (r *Report) Tables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Fingerprints))
	for t := range r.Fingerprints {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// WriteFile writes the report as indented JSON through a temp file.
func (r *Report) WriteFile(path string) error {
	r.mu.Lock()
	b, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return storage.WriteFileAtomic(path, func(f *os.File) error {
		_, err := f.Write(append(b, '\n'))
		return err
	})
}
