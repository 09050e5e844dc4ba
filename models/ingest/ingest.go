package ingest

import (
	"github.com/google/uuid"
)

type State string

const (
	Queued  State = "Queued"
	Running State = "Running"
	Done    State = "Done"
	Error   State = "Error"
)

// ImportParams identifies the inputs of a single variation import.
type ImportParams struct {
	VariationFile  string `json:"variationFile"`
	AttributesFile string `json:"attributesFile"`
	GenomeRef      string `json:"genomeRef"`
	ObjectName     string `json:"objectName"`
	PopulationDesc string `json:"populationDescription"`

	// extra plink flags, groups separated by ';' e.g. "--maf 0.05;--geno 0.1"
	StatsArguments string `json:"statsArguments,omitempty"`
}

type ImportRequest struct {
	Id        uuid.UUID     `json:"id"`
	Params    ImportParams  `json:"params"`
	State     State         `json:"state"`
	Message   string        `json:"message"`
	Result    *ImportResult `json:"result,omitempty"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
}

type ImportResult struct {
	IsValid      bool   `json:"isValid"`
	VariationRef string `json:"variationRef"`
	ReportName   string `json:"reportName"`
	ReportRef    string `json:"reportRef"`
}

type ImportResponseDTO struct {
	Id       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	State    State     `json:"state"`
	Message  string    `json:"message"`
}
