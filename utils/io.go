package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// HasAnySuffix reports whether name ends with one of the suffixes, ignoring case.
func HasAnySuffix(name string, suffixes []string) bool {
	lowered := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lowered, s) {
			return true
		}
	}
	return false
}

// CopyFile copies src to dst, creating dst's parent directories.
func CopyFile(src string, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err = io.Copy(destination, r); err != nil {
		destination.Close()
		return err
	}
	return destination.Close()
}

// WriteLines writes one entry per line.
func WriteLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
