package scheduler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/casegraph/internal/ingest"
	"github.com/rendis/casegraph/pkg/schema"
)

// mockImporter records every import it receives.
type mockImporter struct {
	mu      sync.Mutex
	sources []string
	bodies  []string
	err     error
}

func (m *mockImporter) Import(_ context.Context, source string, r io.Reader) (*ingest.Result, error) {
	body, _ := io.ReadAll(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sources = append(m.sources, source)
	m.bodies = append(m.bodies, string(body))
	return &ingest.Result{Source: source, CaseCount: 1}, nil
}

func (m *mockImporter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

// everySchedule fires at a fixed sub-second interval.
type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeCases(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("*/5 * * * *")
	require.NoError(t, err)
	from := time.Date(2024, 1, 1, 10, 2, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC), s.Next(from))

	_, err = ParseSchedule("@hourly")
	assert.NoError(t, err)

	_, err = ParseSchedule("not a cron")
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeValidation, schema.CodeOf(err))

	_, err = ParseSchedule("0 0 * * * *")
	assert.Error(t, err, "six fields are rejected")
}

func TestNewReloaderInvalidCron(t *testing.T) {
	_, err := NewReloader(&mockImporter{}, "cases.json", "bogus", testLogger())
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	r, err := NewReloader(&mockImporter{}, "cases.json", "0 3 * * *", testLogger())
	require.NoError(t, err)
	from := time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC), r.NextRun(from))
}

func TestReloadSkipsUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeCases(t, path, `{}`, mod)

	imp := &mockImporter{}
	r := NewReloaderWithSchedule(imp, path, everySchedule(time.Hour), testLogger())
	ctx := context.Background()

	res, err := r.Reload(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)

	res, err = r.Reload(ctx)
	require.NoError(t, err)
	assert.Nil(t, res, "unchanged file is skipped")

	writeCases(t, path, `{"C-1": {"Case_information": {}}}`, mod.Add(time.Minute))
	res, err = r.Reload(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 2, imp.calls())
	assert.Equal(t, 2, r.Runs())
	assert.Equal(t, path, imp.sources[1])
}

func TestReloadFailureIsRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	writeCases(t, path, `{}`, time.Now())

	imp := &mockImporter{err: errors.New("invalid document")}
	r := NewReloaderWithSchedule(imp, path, everySchedule(time.Hour), testLogger())

	_, err := r.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, r.Runs())

	imp.mu.Lock()
	imp.err = nil
	imp.mu.Unlock()

	res, err := r.Reload(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res, "a failed import does not mark the file as seen")
}

func TestReloadMissingFile(t *testing.T) {
	r := NewReloaderWithSchedule(&mockImporter{}, filepath.Join(t.TempDir(), "none.json"), everySchedule(time.Hour), testLogger())
	_, err := r.Reload(context.Background())
	assert.Error(t, err)
}

func TestStartRunsInitialImportAndLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	writeCases(t, path, `{}`, time.Now())

	imp := &mockImporter{}
	r := NewReloaderWithSchedule(imp, path, everySchedule(10*time.Millisecond), testLogger())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.Eventually(t, func() bool { return imp.calls() == 1 }, time.Second, 5*time.Millisecond)

	// Touch the file so the next tick imports again.
	writeCases(t, path, `{"C-2": {"Case_information": {}}}`, time.Now().Add(time.Minute))
	require.Eventually(t, func() bool { return imp.calls() == 2 }, time.Second, 5*time.Millisecond)
}

func TestStartTwiceFails(t *testing.T) {
	r := NewReloaderWithSchedule(&mockImporter{}, "missing.json", everySchedule(time.Hour), testLogger())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Error(t, r.Start(context.Background()))
}

func TestStopIsIdempotent(t *testing.T) {
	r := NewReloaderWithSchedule(&mockImporter{}, "missing.json", everySchedule(time.Hour), testLogger())
	assert.NoError(t, r.Stop())

	require.NoError(t, r.Start(context.Background()))
	assert.NoError(t, r.Stop())
	assert.NoError(t, r.Stop())

	// Restart after stop is allowed.
	require.NoError(t, r.Start(context.Background()))
	assert.NoError(t, r.Stop())
}

func TestParentContextCancelEndsLoop(t *testing.T) {
	r := NewReloaderWithSchedule(&mockImporter{}, "missing.json", everySchedule(time.Hour), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))

	cancel()
	done := make(chan struct{})
	go func() {
		_ = r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
