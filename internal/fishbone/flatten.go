package fishbone

import "causemap/internal/extraction"

// Flatten converts an extracted fishbone hierarchy into rows, one per leaf
// detail, depth first in branch order. Details attached directly to a main
// branch produce rows with an empty SubCause. Branches with no details
// produce no rows.
func Flatten(result *extraction.TreeResult) []Row {
	var rows []Row

	for _, cause := range result.Causes {
		for _, sub := range cause.SubCauses {
			for _, detail := range sub.Details {
				rows = append(rows, Row{
					MainCause: cause.MainCause,
					SubCause:  sub.SubCause,
					Detail:    detail,
				})
			}
		}

		for _, detail := range cause.Details {
			rows = append(rows, Row{
				MainCause: cause.MainCause,
				Detail:    detail,
			})
		}
	}

	return rows
}
