package workers

import (
	"context"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"teduh_scraper/models"
	"teduh_scraper/storage"
)

// Uploader pushes one snapshot file to archive storage.
// *storage.S3Uploader implements it.
type Uploader interface {
	Key(localPath string) string
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
}

// ArchiveWorker copies finished snapshot CSVs to archive storage,
// tracking what was already pushed in the operational ledger so files
// are uploaded at most once.
type ArchiveWorker struct {
	root      string
	ledger    *storage.SQLiteStore
	uploader  Uploader
	logf      LogFunc
	triggerCh chan struct{}
}

func NewArchiveWorker(root string, ledger *storage.SQLiteStore, uploader Uploader) *ArchiveWorker {
	return &ArchiveWorker{
		root:      root,
		ledger:    ledger,
		uploader:  uploader,
		logf:      NoOpLogger,
		triggerCh: make(chan struct{}, 1),
	}
}

func (w *ArchiveWorker) SetLogger(logf LogFunc) {
	w.logf = logf
}

// Trigger requests an immediate sweep. Non-blocking; a sweep already
// pending absorbs the request.
func (w *ArchiveWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *ArchiveWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.triggerCh:
			w.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *ArchiveWorker) sweep(ctx context.Context) {
	base := filepath.Join(w.root, "data", "pemaju")

	var uploaded, failed int
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".csv") {
			return nil
		}

		done, err := w.ledger.IsUploaded(path)
		if err != nil {
			log.Printf("Archive: ledger check failed for %s: %v", path, err)
			return nil
		}
		if done {
			return nil
		}

		if err := w.upload(ctx, path); err != nil {
			log.Printf("Archive: upload failed for %s: %v", path, err)
			w.logf(models.LogLevelWarn, "", "archive upload failed: "+path)
			failed++
			return nil
		}

		if err := w.ledger.MarkUploaded(path); err != nil {
			log.Printf("Archive: ledger mark failed for %s: %v", path, err)
		}
		uploaded++
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Archive: sweep failed: %v", err)
		return
	}

	if uploaded > 0 || failed > 0 {
		log.Printf("Archive sweep: %d uploaded, %d failed", uploaded, failed)
	}
}

func (w *ArchiveWorker) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return w.uploader.Upload(ctx, w.uploader.Key(path), f, "text/csv")
}

// NoOpUploader discards uploads. The worker is only started when
// archive storage is configured; this exists so tests and wiring can
// pass an uploader unconditionally.
type NoOpUploader struct{}

func NewNoOpUploader() *NoOpUploader {
	return &NoOpUploader{}
}

func (u *NoOpUploader) Key(localPath string) string {
	return filepath.Base(localPath)
}

func (u *NoOpUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	return nil
}
