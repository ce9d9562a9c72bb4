package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordMonitor struct {
	errs    []error
	tags    []map[string]string
	flushed time.Duration
	panics  []any
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) RecoverPanic(v any)    { r.panics = append(r.panics, v) }
func (r *recordMonitor) Flush(d time.Duration) { r.flushed = d }

func TestCaptureTagsModule(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})

	Capture(ModuleI2C, errors.New("nack"), "step", "read", "dangling")
	Capture(ModuleMQTT, nil)
	CaptureException(nil, nil)
	Flush(time.Second)

	assert.Len(t, mon.errs, 1)
	assert.Equal(t, map[string]string{"module": "i2c", "step": "read"}, mon.tags[0])
	assert.Equal(t, time.Second, mon.flushed)
}

func TestInitIgnoresNil(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})
	Init(nil)
	CaptureException(errors.New("boom"), nil)
	assert.Len(t, mon.errs, 1)
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	mon := &recordMonitor{}
	Init(mon)
	defer Init(NopMonitor{})

	assert.PanicsWithValue(t, "boom", func() {
		defer Recover()
		panic("boom")
	})
	assert.Equal(t, []any{"boom"}, mon.panics)
	assert.Equal(t, 2*time.Second, mon.flushed)
}
