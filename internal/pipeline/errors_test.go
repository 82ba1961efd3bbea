package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("publish: %w", stageErr("load.postgres", KindSink, cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindSink, KindOf(err))
	assert.Equal(t, "publish: stage load.postgres did not produce an output table (sink): connection refused", err.Error())

	joined := errors.Join(errors.New("other"), stageErr("extract.cast", KindParse, cause))
	assert.Equal(t, KindParse, KindOf(joined))

	assert.Empty(t, KindOf(cause))
}

func TestErrAgg(t *testing.T) {
	a := newErrAgg(2)
	a.add(3, errors.New("bad"))
	a.add(7, nil)
	a.add(9, errors.New("worse"))
	a.add(12, errors.New("worst"))

	n, first := a.snapshot()
	assert.EqualValues(t, 3, n)
	assert.Equal(t, []string{"line 3: bad", "line 9: worse"}, first)
}
