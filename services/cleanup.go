package services

import (
	"os"
	"path/filepath"
	"time"

	"document-qa-platform/internal/config"
	"document-qa-platform/internal/logger"

	"github.com/go-co-op/gocron"
)

// CleanupService periodically removes stale downloaded documents. Downloads
// are only needed for the duration of one ingestion, so anything older than
// the configured age is garbage.
type CleanupService struct {
	downloadDir string
	maxAge      time.Duration
	interval    time.Duration
	scheduler   *gocron.Scheduler
}

func NewCleanupService(cfg *config.Config) *CleanupService {
	return &CleanupService{
		downloadDir: cfg.DownloadDir,
		maxAge:      time.Duration(cfg.CleanupMaxAgeMinutes) * time.Minute,
		interval:    time.Duration(cfg.CleanupIntervalMinutes) * time.Minute,
		scheduler:   gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the cleanup job and returns immediately.
func (c *CleanupService) Start() error {
	_, err := c.scheduler.Every(c.interval).Do(c.sweep)
	if err != nil {
		return err
	}
	c.scheduler.StartAsync()
	logger.Info("Download cleanup scheduled", "interval", c.interval.String(), "max_age", c.maxAge.String())
	return nil
}

// Stop halts the scheduler.
func (c *CleanupService) Stop() {
	c.scheduler.Stop()
}

func (c *CleanupService) sweep() {
	entries, err := os.ReadDir(c.downloadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Cleanup sweep failed to read download dir", "error", err)
		}
		return
	}

	cutoff := time.Now().Add(-c.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(c.downloadDir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("Failed to remove stale download", "path", path, "error", err)
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Info("Removed stale downloads", "count", removed)
	}
}
