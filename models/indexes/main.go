package indexes

import "importer/models"

const (
	AssembliesIndex = "assemblies"
	VariationsIndex = "variations"
	ReportsIndex    = "variation-reports"
)

type Assembly struct {
	GenomeRef string   `json:"genomeRef"`
	Contigs   []string `json:"contigs"`
	CreatedAt string   `json:"createdAt"`
}

// Variation is the persisted variation record. Only distilled verdict fields end up here.
type Variation struct {
	Id                     string                  `json:"id"`
	Name                   string                  `json:"name"`
	Genome                 string                  `json:"genome"`
	Population             models.PopulationRecord `json:"population"`
	Contigs                []string                `json:"contigs"`
	FormatVersion          float64                 `json:"formatVersion"`
	SampleIds              []string                `json:"sampleIds"`
	VariationFileReference string                  `json:"variationFileReference"`
	Comment                string                  `json:"comment"`
	CreatedAt              string                  `json:"createdAt"`
}

type ReportFile struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type Report struct {
	Name           string       `json:"name"`
	Message        string       `json:"message"`
	ObjectsCreated []string     `json:"objectsCreated"`
	Html           string       `json:"html"`
	HtmlPath       string       `json:"htmlPath"`
	FileLinks      []ReportFile `json:"fileLinks"`
	VariationRef   string       `json:"variationRef"`
	IsValid        bool         `json:"isValid"`
	CreatedAt      string       `json:"createdAt"`
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_KEYWORD = map[string]interface{}{"type": "keyword"}
var MAPPING_FLOAT64 = map[string]interface{}{"type": "double"}
var MAPPING_BOOL = map[string]interface{}{"type": "boolean"}
var MAPPING_DATE = map[string]interface{}{"type": "date"}
var MAPPING_DISABLED = map[string]interface{}{"type": "object", "enabled": false}
var MAPPING_UNINDEXED_TEXT = map[string]interface{}{"type": "text", "index": false}

var ASSEMBLY_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"genomeRef": MAPPING_KEYWORD,
		"contigs":   MAPPING_KEYWORD,
		"createdAt": MAPPING_DATE,
	},
}

var VARIATION_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"id":     MAPPING_KEYWORD,
		"name":   MAPPING_TEXT,
		"genome": MAPPING_KEYWORD,
		"population": map[string]interface{}{
			"properties": map[string]interface{}{
				"description": MAPPING_TEXT,
				"strains": map[string]interface{}{
					"properties": map[string]interface{}{
						"sourceId": MAPPING_KEYWORD,
						"locationInfo": map[string]interface{}{
							"properties": map[string]interface{}{
								"lat":         MAPPING_FLOAT64,
								"lon":         MAPPING_FLOAT64,
								"elevation":   MAPPING_FLOAT64,
								"description": MAPPING_TEXT,
							},
						},
					},
				},
			},
		},
		"contigs":                MAPPING_KEYWORD,
		"formatVersion":          MAPPING_FLOAT64,
		"sampleIds":              MAPPING_KEYWORD,
		"variationFileReference": MAPPING_KEYWORD,
		"comment":                MAPPING_TEXT,
		"createdAt":              MAPPING_DATE,
	},
}

var REPORT_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"name":           MAPPING_KEYWORD,
		"message":        MAPPING_TEXT,
		"objectsCreated": MAPPING_KEYWORD,
		"html":           MAPPING_UNINDEXED_TEXT,
		"htmlPath":       MAPPING_KEYWORD,
		"fileLinks":      MAPPING_DISABLED,
		"variationRef":   MAPPING_KEYWORD,
		"isValid":        MAPPING_BOOL,
		"createdAt":      MAPPING_DATE,
	},
}
