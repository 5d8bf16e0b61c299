// Package process watches the upload directories and records a sha256
// checksum for every stored evidence and document file.
package process

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"jirams/models"
	"jirams/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"gorm.io/gorm"
)

// Watcher fills in the checksum column for uploads as they land on disk.
type Watcher struct {
	db  *gorm.DB
	log *logger.Logger
	fw  *fsnotify.Watcher
}

// NewWatcher watches the evidence and documents subdirectories under base.
// The directories are created when missing so the watch can be registered
// before the first upload.
func NewWatcher(gdb *gorm.DB, lg *logger.Logger, base string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, sub := range []string{"evidence", "documents"} {
		dir := filepath.Join(base, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fw.Close()
			return nil, err
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return &Watcher{db: gdb, log: lg, fw: fw}, nil
}

// Run processes filesystem events until Close is called.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.handle(ev.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) handle(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	sum, err := hashFile(path)
	if err != nil {
		w.log.Warn("checksum failed", "path", path, "error", err)
		return
	}
	// The file lands on disk before its row is committed, so retry briefly.
	for attempt := 0; attempt < 5; attempt++ {
		if w.record(path, sum) {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	w.log.Debug("no upload row for file", "path", path)
}

func (w *Watcher) record(path, sum string) bool {
	res := w.db.Model(&models.Evidence{}).
		Where("store_path = ?", path).Update("checksum", sum)
	if res.Error == nil && res.RowsAffected > 0 {
		w.log.Debug("evidence checksum recorded", "path", path)
		return true
	}
	res = w.db.Model(&models.Document{}).
		Where("store_path = ?", path).Update("checksum", sum)
	if res.Error == nil && res.RowsAffected > 0 {
		w.log.Debug("document checksum recorded", "path", path)
		return true
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
