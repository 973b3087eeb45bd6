package define

import (
	"fmt"

	"github.com/dostiep/360i/library"
	"github.com/dostiep/360i/usdm"
)

// aggregateVariables records every named variable of a specialization and,
// for variables matched by one of the concept's properties, unions the
// property's resolved response values into the (dataset, variable, codelist)
// accumulator.
func (r *run) aggregateVariables(dataset string, vars []library.Variable, bc *usdm.BiomedicalConcept) error {
	ds := r.dataset(dataset)

	for i := range vars {
		v := &vars[i]

		if v.Name == "" || v.DataElementConceptID == "" {
			continue
		}

		entry := ds.variable(v.Name)

		prop := r.matchProperty(bc, v.DataElementConceptID)

		if prop == nil {
			continue
		}

		codelistID := v.CodelistID()

		if codelistID == "" {
			// Known but unrestricted. The mark is sticky so later
			// restrictions cannot attach to the variable.
			if !entry.markNoCodelist() {
				r.warnf("aggregate", "concept %s: variable %s.%s declared without a codelist after restrictions were recorded", bc.ID, dataset, v.Name)
			}

			continue
		}

		terms, err := r.cat.CodelistTerms(r.ct, codelistID)

		if err != nil {
			return fmt.Errorf("fetching terms of codelist %q: %w", codelistID, err)
		}

		values := resolveResponseCodes(prop.ResponseCodes, terms)

		if !entry.union(codelistID, values) {
			r.warnf("aggregate", "concept %s: variable %s.%s has no codelist, dropping %d values", bc.ID, dataset, v.Name, len(values))
		}
	}

	return nil
}

// matchProperty returns the first concept property whose standard code
// equals the data element concept id. A concept should map at most one
// property to a given id; additional matches are reported and ignored.
func (r *run) matchProperty(bc *usdm.BiomedicalConcept, dataElementConceptID string) *usdm.Property {
	var match *usdm.Property

	for i := range bc.Properties {
		p := &bc.Properties[i]

		if p.Code.StandardCode.Code != dataElementConceptID {
			continue
		}

		if match != nil {
			r.warnf("aggregate", "concept %s: properties %q and %q both map to %s, keeping %q", bc.ID, match.Name, p.Name, dataElementConceptID, match.Name)
			continue
		}

		match = p
	}

	return match
}

// resolveResponseCodes maps response codes to codelist submission values.
// Codes with no matching term contribute nothing.
func resolveResponseCodes(codes []usdm.ResponseCode, terms []library.Term) []string {
	var values []string

	for _, rc := range codes {
		for i := range terms {
			if terms[i].ConceptID == rc.Code.Code {
				values = append(values, terms[i].SubmissionValue)
				break
			}
		}
	}

	return values
}
