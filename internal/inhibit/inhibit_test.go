package inhibit

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	inhibitErr error
	inhibits   int
	releases   int
}

func (r *recorder) Inhibit(string) error {
	r.inhibits++
	return r.inhibitErr
}

func (r *recorder) Release() error {
	r.releases++
	return nil
}

func TestHoldReleases(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{}
	release := Hold(rec, "game running", slog.New(slog.NewTextHandler(&buf, nil)))
	release()

	assert.Equal(t, 1, rec.inhibits)
	assert.Equal(t, 1, rec.releases)
}

func TestHoldFailureIsLoggedAndNotReleased(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{inhibitErr: errors.New("no session bus")}
	release := Hold(rec, "game running", slog.New(slog.NewTextHandler(&buf, nil)))
	release()

	assert.Equal(t, 0, rec.releases)
	assert.Contains(t, buf.String(), "no session bus")
}

func TestHoldNilInhibitor(t *testing.T) {
	release := Hold(nil, "x", slog.Default())
	release()
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Inhibit("x"))
	assert.NoError(t, Noop{}.Release())
}
