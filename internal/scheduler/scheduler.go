package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rendis/casegraph/internal/ingest"
	"github.com/rendis/casegraph/internal/logging"
	"github.com/rendis/casegraph/pkg/schema"
)

// Importer is the part of ingest.Importer the reloader drives.
type Importer interface {
	Import(ctx context.Context, source string, r io.Reader) (*ingest.Result, error)
}

// cronParser accepts standard 5-field cron expressions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a 5-field cron expression (or a @descriptor).
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation, "parse cron expression %q: %s", expr, err).WithCause(err)
	}
	return schedule, nil
}

// Reloader re-imports a cases file on a cron schedule. A reload is skipped
// when the file's size and modification time are unchanged since the last
// successful import.
type Reloader struct {
	importer Importer
	path     string
	schedule cron.Schedule
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex

	stateMu  sync.Mutex
	lastSeen fileStamp
	runs     int
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// NewReloader creates a Reloader for the cases file at path.
func NewReloader(importer Importer, path, cronExpr string, logger *slog.Logger) (*Reloader, error) {
	schedule, err := ParseSchedule(cronExpr)
	if err != nil {
		return nil, err
	}
	return NewReloaderWithSchedule(importer, path, schedule, logger), nil
}

// NewReloaderWithSchedule creates a Reloader driven by an already parsed schedule.
func NewReloaderWithSchedule(importer Importer, path string, schedule cron.Schedule, logger *slog.Logger) *Reloader {
	return &Reloader{
		importer: importer,
		path:     path,
		schedule: schedule,
		logger:   logging.OrDefault(logger),
	}
}

// Start runs an initial import and launches the background reload loop.
// The initial import's error is logged, not returned: the loop retries on
// the next due time.
func (r *Reloader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.done != nil {
		r.mu.Unlock()
		return fmt.Errorf("reloader already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.loop(loopCtx)
	r.logger.Info("reloader started", slog.String("path", r.path))
	return nil
}

func (r *Reloader) loop(ctx context.Context) {
	defer close(r.done)

	r.tick(ctx)

	for {
		next := r.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			r.tick(ctx)
		}
	}
}

func (r *Reloader) tick(ctx context.Context) {
	if _, err := r.Reload(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("scheduled reload failed",
			slog.String("path", r.path),
			slog.String("error", err.Error()),
		)
	}
}

// Reload imports the cases file now unless it is unchanged. It returns a nil
// result when the import was skipped.
func (r *Reloader) Reload(ctx context.Context) (*ingest.Result, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open cases file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat cases file: %w", err)
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}

	r.stateMu.Lock()
	unchanged := r.runs > 0 && stamp == r.lastSeen
	r.stateMu.Unlock()
	if unchanged {
		r.logger.Debug("cases file unchanged, reload skipped", slog.String("path", r.path))
		return nil, nil
	}

	res, err := r.importer.Import(ctx, r.path, f)
	if err != nil {
		return nil, err
	}

	r.stateMu.Lock()
	r.lastSeen = stamp
	r.runs++
	r.stateMu.Unlock()
	return res, nil
}

// Runs returns the number of successful imports so far.
func (r *Reloader) Runs() int {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.runs
}

// NextRun returns the next due time after from.
func (r *Reloader) NextRun(from time.Time) time.Time {
	return r.schedule.Next(from)
}

// Stop cancels the loop and waits for it to exit.
func (r *Reloader) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel == nil {
		return nil
	}

	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil

	r.logger.Info("reloader stopped")
	return nil
}
