package main

import (
	"bufio"
	"io"
	"strings"
)

// readContigList reads contig names from a samtools .fai index (first column) or a
// plain list with one name per line. Blank lines and '#' comments are skipped and
// duplicates collapse onto their first occurrence.
func readContigList(r io.Reader) ([]string, error) {
	var (
		contigs []string
		seen    = map[string]struct{}{}
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name := strings.Fields(line)[0]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		contigs = append(contigs, name)
	}
	return contigs, scanner.Err()
}
