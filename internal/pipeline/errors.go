package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds, coarse enough for the CLI to pick an exit code.
const (
	KindConfig = "config"
	KindSource = "source"
	KindParse  = "parse"
	KindBuild  = "build"
	KindSink   = "sink"
)

// StageError reports which stage did not produce its output table.
type StageError struct {
	Stage string
	Kind  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s did not produce an output table (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage, kind string, err error) error {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

// KindOf returns the kind of the first StageError in err's chain, or "".
func KindOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
