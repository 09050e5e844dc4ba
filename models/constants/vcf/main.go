package vcf

const (
	FileFormatKey    = "##fileformat"
	ContigKey        = "##contig"
	MetaLinePrefix   = "##"
	ColumnHeaderLine = "#CHROM"

	// key holding the contig identifier inside a ##contig=<...> list
	ContigIdField = "ID"
)

// Suffixes treated as compressed input
var CompressedSuffixes = []string{".gz", ".bgz"}
