package workflows

type WorkflowSchema map[string]interface{}

var WORKFLOW_VARIATION_SCHEMA WorkflowSchema = map[string]interface{}{
	"ingestion": map[string]interface{}{
		"vcf_attributes": map[string]interface{}{
			"name":        "VCF and Location Attributes Import",
			"description": "This ingestion workflow validates a VCF file against its reference assembly, joins it with per-sample location attributes and registers a variation record.",
			"data_type":   "variation",
			"tags":        []string{"variation", "vcf"},
			"file":        "vcf_attributes.wdl",
			"type":        "ingestion",
			"inputs": []map[string]interface{}{
				{
					"id":       "vcf_file",
					"type":     "file",
					"required": true,
					"pattern":  "^.*\\.vcf(\\.b?gz)?$",
				},
				{
					"id":       "attributes_file",
					"type":     "file",
					"required": true,
					"pattern":  "^.*\\.(tsv|txt)$",
				},
				{
					"id":       "genome_ref",
					"type":     "string",
					"required": true,
				},
				{
					"id":       "object_name",
					"type":     "string",
					"required": true,
				},
				{
					"id":       "population_description",
					"type":     "string",
					"required": false,
				},
				{
					"id":           "importer_url",
					"type":         "service-url",
					"required":     true,
					"injected":     true,
					"service_kind": "variation-importer",
				},
			},
		},
	},
	"analysis": map[string]interface{}{},
	"export":   map[string]interface{}{},
}
