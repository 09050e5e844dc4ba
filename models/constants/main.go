package constants

/*
Defines a set of base level
constants and enums to be used
throughout the importer and its
associated services.
*/
type PermissionVerb string
type PermissionNoun string

// The fixed VCF columns preceding the sample/genotype columns on the #CHROM line
var VcfHeaders = []string{"chrom", "pos", "id", "ref", "alt", "qual", "filter", "info", "format"}

const (
	// Placeholder given to strains whose attributes row has no description
	DefaultStrainDescription = "None provided."

	// Population description used when the caller does not provide one
	DefaultPopulationDescription = "None Provided"

	// Elevation given to strains whose attributes file has no elevation column
	DefaultElevation = 0.0

	MinimumSupportedVcfVersion = 4.1
)

// Per-run work areas are named <WorkDirPrefix><uuid> under the scratch path
const WorkDirPrefix = "variation_importer_"
