package contigs

import "importer/models"

// Reconcile splits the declared contigs into those the reference assembly knows and those
// it does not. Unknown contigs keep their first-seen order and appear once.
func Reconcile(declared []string, reference models.ContigSet) models.ContigReconciliationResult {
	result := models.ContigReconciliationResult{
		KnownContigs:   models.NewContigSet(),
		UnknownContigs: []string{},
	}

	seenUnknown := make(map[string]bool)
	for _, contig := range declared {
		if reference.Has(contig) {
			result.KnownContigs.Add(contig)
			continue
		}
		if seenUnknown[contig] {
			continue
		}
		seenUnknown[contig] = true
		result.UnknownContigs = append(result.UnknownContigs, contig)
	}

	return result
}
