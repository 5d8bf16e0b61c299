package main

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Subdirectories of the upload base.
const (
	evidenceDir = "evidence"
	documentDir = "documents"
)

const maxUploadSize = 10 * 1024 * 1024

// storeUploadedFile writes a multipart file under the upload base. The stored
// name carries a nanosecond timestamp and a UUID so two uploads can never
// collide, whatever the client-supplied name.
func storeUploadedFile(c *gin.Context, subdir string, file *multipart.FileHeader) (string, error) {
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file too large (max %dMB)", maxUploadSize/(1024*1024))
	}
	// strip any client-supplied directory components
	base := filepath.Base(file.Filename)
	dir := filepath.Join(uploadBaseDir(), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir failed: %w", err)
	}
	stored := fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), uuid.NewString(), base)
	fullPath := filepath.Join(dir, stored)
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		return "", fmt.Errorf("save failed: %w", err)
	}
	return fullPath, nil
}

// removeStoredFile deletes a stored upload from disk, ignoring files that are
// already gone.
func removeStoredFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to remove stored file", "path", path, "error", err)
	}
}
