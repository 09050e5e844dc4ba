package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"importer/models"
	"importer/utils"

	"github.com/labstack/gommon/log"
)

// FileFetcher resolves a logical file identifier to a readable file inside destDir.
type FileFetcher interface {
	Fetch(ctx context.Context, identifier string, destDir string) (string, error)
}

// StagingFetcher copies files out of a local staging area.
type StagingFetcher struct {
	Root string

	logger *log.Logger
}

func NewStagingFetcher(root string, logger *log.Logger) *StagingFetcher {
	return &StagingFetcher{Root: root, logger: logger}
}

func (f *StagingFetcher) Fetch(ctx context.Context, identifier string, destDir string) (string, error) {
	source, err := f.resolve(identifier)
	if err != nil {
		return "", &models.FetchError{Identifier: identifier, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", &models.FetchError{Identifier: identifier, Err: err}
	}

	info, err := os.Stat(source)
	if err != nil {
		return "", &models.FetchError{Identifier: identifier, Err: err}
	}
	if info.IsDir() {
		return "", &models.FetchError{Identifier: identifier, Err: fmt.Errorf("%s is a directory", identifier)}
	}

	destination := filepath.Join(destDir, filepath.Base(source))
	f.logger.Debugf("Copying %s to %s", source, destination)
	if err := utils.CopyFile(source, destination); err != nil {
		return "", &models.FetchError{Identifier: identifier, Err: err}
	}
	return destination, nil
}

// resolve maps identifier into the staging root and refuses anything that leaves it.
func (f *StagingFetcher) resolve(identifier string) (string, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("empty file identifier")
	}

	root, err := filepath.Abs(f.Root)
	if err != nil {
		return "", err
	}
	source := filepath.Join(root, identifier)

	rel, err := filepath.Rel(root, source)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the staging area", identifier)
	}
	return source, nil
}

var (
	_ FileFetcher = (*StagingFetcher)(nil)
	_ FileFetcher = (*DrsFetcher)(nil)
)
