package dtos

import (
	"importer/models"
	"time"
)

type GeneralError struct {
	Message string `json:"message"`
}

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

// VerdictResponseDto is returned for every validation run that completed,
// whether or not the file turned out to be valid.
type VerdictResponseDto struct {
	Status         int                       `json:"status"`
	Message        string                    `json:"message"`
	Verdict        *models.ValidationVerdict `json:"verdict"`
	KnownContigs   []string                  `json:"knownContigs"`
	UnknownContigs []string                  `json:"unknownContigs"`
}

type AssemblyRegistrationDto struct {
	Contigs []string `json:"contigs"`
}

type AssemblyRegistrationResponseDto struct {
	GenomeRef   string `json:"genomeRef"`
	ContigCount int    `json:"contigCount"`
}
