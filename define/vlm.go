package define

import (
	"fmt"

	"github.com/dostiep/360i/library"
	"github.com/dostiep/360i/usdm"
)

// VLMEntry is the value-level metadata block for one variable within one
// concept. Descriptive fields are copied from the specialization variable
// when present; WhereClause is shared by every entry of the owning concept.
type VLMEntry struct {
	Role              string        `json:"role,omitempty"`
	DataType          string        `json:"dataType,omitempty"`
	Length            *int          `json:"length,omitempty"`
	Format            string        `json:"format,omitempty"`
	SignificantDigits *int          `json:"significantDigits,omitempty"`
	OriginType        string        `json:"originType,omitempty"`
	OriginSource      string        `json:"originSource,omitempty"`
	ResponseCodes     []string      `json:"responseCodes,omitempty"`
	WhereClause       []ClauseGroup `json:"WhereClause"`
}

// resolveVLMTargets builds a metadata block for every concept property whose
// specialization variable is a VLM target. Comparator variables select
// records rather than take values, so they are excluded here and handled by
// the where clause builder instead.
func (r *run) resolveVLMTargets(bc *usdm.BiomedicalConcept, rec *library.ConceptRecord, whereClause []ClauseGroup) error {
	if whereClause == nil {
		whereClause = []ClauseGroup{}
	}

	entry := r.concept(bc.ID)

	for i := range bc.Properties {
		p := &bc.Properties[i]

		v := findVariable(rec.Variables, p.Name)

		if v == nil || v.HasComparator() || !v.VLMTarget {
			continue
		}

		e := &VLMEntry{
			Role:              v.Role,
			DataType:          v.DataType,
			Length:            v.Length,
			Format:            v.Format,
			SignificantDigits: v.SignificantDigits,
			OriginType:        v.OriginType,
			OriginSource:      v.OriginSource,
			WhereClause:       whereClause,
		}

		// Response codes resolve through the variable's own codelist. A
		// variable without one gets no responseCodes key at all.
		if codelistID := v.CodelistID(); codelistID != "" {
			terms, err := r.cat.CodelistTerms(r.ct, codelistID)

			if err != nil {
				return fmt.Errorf("fetching terms of codelist %q: %w", codelistID, err)
			}

			if values := resolveResponseCodes(p.ResponseCodes, terms); len(values) > 0 {
				e.ResponseCodes = values
			}
		}

		entry.entries = append(entry.entries, vlmVariable{name: p.Name, entry: e})
	}

	return nil
}

// buildVLMLookup indexes every VLM block by variable name, in concept order,
// for the assembler to merge into dataset variable rows.
func (r *run) buildVLMLookup() {
	for _, c := range r.concepts {
		for _, v := range c.entries {
			r.vlm[v.name] = append(r.vlm[v.name], v.entry)
		}
	}
}
