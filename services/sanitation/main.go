package sanitation

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"importer/models"
	"importer/models/constants"

	. "github.com/ahmetb/go-linq"
	"github.com/go-co-op/gocron"
	"github.com/labstack/gommon/log"
)

type (
	SanitationService struct {
		Initialized bool
		Config      *models.Config

		scheduler *gocron.Scheduler
		logger    *log.Logger
	}
)

func NewSanitationService(cfg *models.Config, logger *log.Logger) *SanitationService {
	ss := &SanitationService{
		Initialized: false,
		Config:      cfg,
		scheduler:   gocron.NewScheduler(time.UTC),
		logger:      logger,
	}

	ss.Init()

	return ss
}

func (ss *SanitationService) Init() {
	// initialization if necessary
	if ss.Initialized {
		return
	}

	every := ss.Config.Api.SanitationEvery
	if every < 1 {
		every = 1
	}

	// prune work areas left behind by crashed or retained runs
	_, err := ss.scheduler.Every(every).Hours().Do(func() {
		ss.logger.Infof("Running work area cleanup in %s..", ss.Config.Api.ScratchPath)
		removed, err := CleanStaleWorkDirs(ss.Config.Api.ScratchPath, ss.Config.Api.WorkDirMaxAge, time.Now())
		if err != nil {
			ss.logger.Errorf("Work area cleanup failed: %v", err)
			return
		}
		ss.logger.Infof("Removed %d stale work areas", len(removed))
	})
	if err != nil {
		ss.logger.Errorf("Could not schedule work area cleanup: %v", err)
		return
	}
	ss.scheduler.StartAsync()

	ss.Initialized = true
}

func (ss *SanitationService) Stop() {
	ss.scheduler.Stop()
}

// CleanStaleWorkDirs removes the per-run work areas under root last modified before now-maxAge
// and returns the removed paths. Other directories are left alone.
func CleanStaleWorkDirs(root string, maxAge time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-maxAge)
	var stale []string
	From(entries).
		WhereT(func(e os.DirEntry) bool {
			if !e.IsDir() || !strings.HasPrefix(e.Name(), constants.WorkDirPrefix) {
				return false
			}
			info, err := e.Info()
			return err == nil && info.ModTime().Before(cutoff)
		}).
		SelectT(func(e os.DirEntry) string {
			return filepath.Join(root, e.Name())
		}).
		ToSlice(&stale)

	removed := []string{}
	for _, dir := range stale {
		if err := os.RemoveAll(dir); err != nil {
			return removed, err
		}
		removed = append(removed, dir)
	}
	return removed, nil
}
