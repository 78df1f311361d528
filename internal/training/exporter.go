package training

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/news-credibility/internal/analysis"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// fileTimeLayout names export files in UTC
const fileTimeLayout = "20060102T150405.000Z"

// Source supplies pending training records and accepts processed marks
type Source interface {
	PendingTrainingData(ctx context.Context, limit int) ([]analysis.TrainingRecord, error)
	MarkProcessed(ctx context.Context, id string) error
}

// Result describes one export run
type Result struct {
	Path     string `json:"path,omitempty"`
	Exported int    `json:"exported"`
	Marked   int    `json:"marked"`
}

// Exporter writes unprocessed training records to JSON lines files on a schedule
type Exporter struct {
	source    Source
	dir       string
	batchSize int
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.Mutex
	runMu     sync.Mutex
	started   bool
}

// NewExporter creates an exporter. The schedule accepts standard cron
// expressions and descriptors such as "@every 1h".
func NewExporter(source Source, dir string, batchSize int, schedule string, logger *zap.Logger) (*Exporter, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid export schedule %q: %w", schedule, err)
	}

	return &Exporter{
		source:    source,
		dir:       dir,
		batchSize: batchSize,
		schedule:  schedule,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Export writes one batch of pending records and marks each written record
// processed. A failed mark is logged and the remaining records continue.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	records, err := e.source.PendingTrainingData(ctx, e.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending training data: %w", err)
	}
	if len(records) == 0 {
		e.logger.Debug("No pending training data to export")
		return &Result{}, nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.dir, exportFileName(e.now()))
	if err := writeJSONLines(path, records); err != nil {
		return nil, err
	}

	result := &Result{Path: path, Exported: len(records)}
	for _, r := range records {
		if err := e.source.MarkProcessed(ctx, r.ID); err != nil {
			e.logger.Error("Failed to mark training record processed",
				zap.String("record_id", r.ID),
				zap.Error(err))
			continue
		}
		result.Marked++
	}

	e.logger.Info("Exported training data",
		zap.String("path", path),
		zap.Int("exported", result.Exported),
		zap.Int("marked", result.Marked))
	return result, nil
}

// exportFileName sorts by time. The random suffix keeps two runs in the same
// millisecond from renaming onto one file.
func exportFileName(at time.Time) string {
	return fmt.Sprintf("training-%s-%s.jsonl", at.UTC().Format(fileTimeLayout), uuid.NewString()[:8])
}

// writeJSONLines writes records to a temporary file and renames it into place
func writeJSONLines(path string, records []analysis.TrainingRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".training-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode training record %s: %w", records[i].ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export file into place: %w", err)
	}
	return nil
}

// Start schedules the export job
func (e *Exporter) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}

	_, err := e.cron.AddFunc(e.schedule, func() {
		if _, err := e.Export(context.Background()); err != nil {
			e.logger.Error("Scheduled training export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule training export: %w", err)
	}

	e.cron.Start()
	e.started = true
	e.logger.Info("Training export scheduled",
		zap.String("schedule", e.schedule),
		zap.String("dir", e.dir),
		zap.Int("batch_size", e.batchSize))
	return nil
}

// Stop halts the schedule and waits for a running export to finish or ctx to end
func (e *Exporter) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil
	}
	e.started = false

	stopped := e.cron.Stop()
	e.cron = cron.New(cron.WithLocation(time.UTC))

	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("training export still running at shutdown: %w", ctx.Err())
	}
}
