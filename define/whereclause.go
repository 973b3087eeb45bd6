package define

import (
	"fmt"

	"github.com/dostiep/360i/library"
	"github.com/dostiep/360i/usdm"
)

// Clause selects the records a concept's value-level metadata applies to.
type Clause struct {
	Dataset           string   `json:"Dataset"`
	Variable          string   `json:"Variable"`
	CodelistConceptID string   `json:"Codelist Concept ID"`
	Comparator        string   `json:"Comparator"`
	Values            []string `json:"Values"`
}

// ClauseGroup wraps a single clause. One group is emitted per
// comparator-bearing property.
type ClauseGroup struct {
	Clause []Clause `json:"Clause"`
}

// buildWhereClause emits one clause group per concept property whose
// specialization variable declares a comparator, in property order. Values
// resolve from the property's response codes first, then the variable's
// assigned term, then its value list.
func (r *run) buildWhereClause(bc *usdm.BiomedicalConcept, rec *library.ConceptRecord) ([]ClauseGroup, error) {
	var groups []ClauseGroup

	for i := range bc.Properties {
		p := &bc.Properties[i]

		v := findVariable(rec.Variables, p.Name)

		if v == nil || !v.HasComparator() {
			continue
		}

		codelistID := v.CodelistID()

		var terms []library.Term

		if codelistID != "" {
			var err error
			terms, err = r.cat.CodelistTerms(r.ct, codelistID)

			if err != nil {
				return nil, fmt.Errorf("fetching terms of codelist %q: %w", codelistID, err)
			}
		}

		values := resolveResponseCodes(p.ResponseCodes, terms)

		if len(values) == 0 {
			switch {
			case v.AssignedTerm != nil && v.AssignedTerm.ConceptID != "":
				values = []string{v.AssignedTerm.Value}
			case len(v.ValueList) > 0:
				values = append([]string(nil), v.ValueList...)
			}
		}

		if values == nil {
			values = []string{}
		}

		groups = append(groups, ClauseGroup{
			Clause: []Clause{{
				Dataset:           rec.Domain,
				Variable:          p.Name,
				CodelistConceptID: codelistID,
				Comparator:        v.Comparator,
				Values:            values,
			}},
		})
	}

	return groups, nil
}
