// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/pdiddy/research-summary/pkg/types"
)

// grantHashPrefix marks grant keys derived from record content.
const grantHashPrefix = "hash:"

// PublicationKey returns the selection key of a publication: its PMID.
func PublicationKey(p types.Publication) string {
	return strconv.Itoa(p.PMID)
}

// GrantKey derives a stable selection key for a grant. Precedence: the id
// column, then grant_id, then Award_Number, then a hash of the record content.
// The content hash ignores column order, so two grants that are identical
// field for field share a key and are selected together.
func GrantKey(g types.Grant) string {
	for _, col := range []string{types.GrantID, types.GrantAltID, types.GrantAwardNumber} {
		if v := g[col]; v != "" {
			return v
		}
	}
	h, err := hashstructure.Hash(map[string]string(g), hashstructure.FormatV2, nil)
	if err != nil {
		// Hashing a map of strings cannot fail; fall back to the sorted dump.
		return grantHashPrefix + fmt.Sprint(g.Columns())
	}
	return grantHashPrefix + strconv.FormatUint(h, 16)
}

// SpecialtyKey returns the MeSH term.
func SpecialtyKey(s types.ClinicalSpecialty) string {
	return s.MeshTerm
}

// TrialKey returns the NCT number.
func TrialKey(t types.ClinicalTrial) string {
	return t.NCTNumber
}
