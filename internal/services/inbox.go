package services

import (
	"context"
	"fmt"
	"github.com/maxaizer/jobscout/internal/logger"
	log "github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"time"
)

const processedDir = "processed"

type ingester interface {
	Ingest(ctx context.Context, source, content string, receivedAt time.Time) (IntakeReport, error)
}

// InboxWatcher ingests files dropped under <dir>/<source>/ and moves each one
// to <dir>/processed/<source>/ once it is stored.
type InboxWatcher struct {
	dir     string
	sources []string
	intake  ingester
}

func NewInboxWatcher(dir string, sources []string, intake ingester) *InboxWatcher {
	return &InboxWatcher{dir: dir, sources: sources, intake: intake}
}

func (w *InboxWatcher) Poll(ctx context.Context) error {

	for _, source := range w.sources {
		sourceDir := filepath.Join(w.dir, source)
		entries, err := os.ReadDir(sourceDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if entry.IsDir() {
				continue
			}
			if err = w.ingestFile(ctx, source, filepath.Join(sourceDir, entry.Name())); err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeExtract).
					Errorf("failed to ingest %s: %v", entry.Name(), err)
			}
		}
	}

	return nil
}

func (w *InboxWatcher) ingestFile(ctx context.Context, source, path string) error {

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if _, err = w.intake.Ingest(ctx, source, string(content), info.ModTime()); err != nil {
		return err
	}

	target := filepath.Join(w.dir, processedDir, source)
	if err = os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create processed dir: %w", err)
	}
	return os.Rename(path, filepath.Join(target, filepath.Base(path)))
}
