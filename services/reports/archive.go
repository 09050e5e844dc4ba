package reports

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"importer/utils"
)

// never packaged: the inputs themselves, the html report and earlier archives
var excludedSuffixes = []string{".zip", ".vcf", ".vcf.gz", ".html", ".ds_store"}

// Package zips the files under dir into archivePath, skipping excluded files.
// It returns the archive-relative names that were added.
func Package(dir string, archivePath string) ([]string, error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	added := []string{}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || path == archivePath || utils.HasAnySuffix(info.Name(), excludedSuffixes) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if err := addFile(w, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		added = append(added, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return added, out.Close()
}

func addFile(w *zip.Writer, path string, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
