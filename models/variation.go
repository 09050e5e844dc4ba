package models

import "sort"

/*
	Structures shared by the validation pipeline, the
	import service and the stores.
*/

// ContigSet is an unordered set of contig identifiers.
type ContigSet map[string]struct{}

func NewContigSet(ids ...string) ContigSet {
	set := make(ContigSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s ContigSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s ContigSet) Add(id string) {
	s[id] = struct{}{}
}

// Sorted returns the identifiers in lexical order.
func (s ContigSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// VcfHeaderSummary is what the header parser extracts from a single VCF file.
type VcfHeaderSummary struct {
	FileFormat      string   `json:"fileFormat"`
	FormatVersion   float64  `json:"formatVersion"`
	DeclaredContigs []string `json:"declaredContigs"`
	SampleIds       []string `json:"sampleIds"`
}

type ContigReconciliationResult struct {
	KnownContigs   ContigSet `json:"-"`
	UnknownContigs []string  `json:"unknownContigs"`
}

type Location struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Elevation   float64 `json:"elevation"`
	Description string  `json:"description"`
}

type StrainInfo struct {
	SourceId     string   `json:"sourceId"`
	LocationInfo Location `json:"locationInfo"`
}

type PopulationRecord struct {
	Description string       `json:"description"`
	Strains     []StrainInfo `json:"strains"`
}

// ValidationVerdict is the result of a validation run that was able to complete.
// Runs that could not complete return an error instead.
type ValidationVerdict struct {
	IsValid       bool     `json:"isValid"`
	FileName      string   `json:"fileName"`
	FormatVersion float64  `json:"formatVersion"`
	SampleCount   int      `json:"sampleCount"`
	SampleIds     []string `json:"sampleIds"`

	DeclaredContigs       []string                   `json:"declaredContigs"`
	ContigSummary         ContigReconciliationResult `json:"contigSummary"`
	MissingContigMetadata bool                       `json:"missingContigMetadata"`

	Population *PopulationRecord `json:"population,omitempty"`

	ExternalValidatorExitCode   int      `json:"externalValidatorExitCode"`
	ExternalValidatorReportPath string   `json:"externalValidatorReportPath"`
	ExternalValidatorErrors     []string `json:"externalValidatorErrors"`
	ExternalValidatorWarnings   []string `json:"externalValidatorWarnings"`

	Findings []string `json:"findings"`
}

// KnownContigList is a JSON-friendly rendering of the known contigs.
func (r ContigReconciliationResult) KnownContigList() []string {
	return r.KnownContigs.Sorted()
}
