package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrObjectNotFound is wrapped by store lookups that found nothing.
var ErrObjectNotFound = errors.New("object not found")

/*
	Errors that abort a validation or import run.
	None of them are retried and none of them come
	with a partial verdict.
*/

type MalformedHeaderError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed VCF header in %s (line %d): %s", e.Path, e.Line, e.Reason)
}

type MissingSampleHeaderError struct {
	Path string
}

func (e *MissingSampleHeaderError) Error() string {
	return fmt.Sprintf("no #CHROM column header found in %s", e.Path)
}

type UnsupportedEncodingError struct {
	Path string
	Err  error
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *UnsupportedEncodingError) Unwrap() error { return e.Err }

type UnsupportedVersionError struct {
	Version float64
	Minimum float64
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("VCF file is version %.1f. Must be at least version %.1f", e.Version, e.Minimum)
}

type AttributeSchemaError struct {
	Path   string
	Reason string
}

func (e *AttributeSchemaError) Error() string {
	return fmt.Sprintf("invalid attributes file %s: %s", e.Path, e.Reason)
}

// SampleMismatchError reports a difference between the attribute ids and the VCF sample ids.
type SampleMismatchError struct {
	Path             string
	AttributeIdCount int
	SampleIdCount    int
	// ids in the VCF but not in the attributes file
	Missing []string
	// ids in the attributes file but not in the VCF
	Unexpected []string
}

func (e *SampleMismatchError) Error() string {
	msg := fmt.Sprintf("location ids in %s do not match sample ids in variation file (%d attribute ids, %d sample ids)",
		e.Path, e.AttributeIdCount, e.SampleIdCount)
	if len(e.Missing) > 0 {
		msg += "; missing: " + strings.Join(e.Missing, ",")
	}
	if len(e.Unexpected) > 0 {
		msg += "; unexpected: " + strings.Join(e.Unexpected, ",")
	}
	return msg
}

type FetchError struct {
	Identifier string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unable to fetch %s: %v", e.Identifier, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type AssemblyLookupError struct {
	GenomeRef string
	NotFound  bool
	Err       error
}

func (e *AssemblyLookupError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("no assembly registered for genome %s", e.GenomeRef)
	}
	return fmt.Sprintf("unable to retrieve assembly contigs for genome %s: %v", e.GenomeRef, e.Err)
}

func (e *AssemblyLookupError) Unwrap() error { return e.Err }

type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
