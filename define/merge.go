package define

import (
	"fmt"
	"strings"
)

const (
	testCodeSuffix  = "TESTCD"
	testLabelSuffix = "TEST"
)

type mergeKey struct {
	variable string
	dataset  string
	codelist string
}

// mergeRestrictions is the second aggregation pass: every where-clause value
// across every concept widens the same (dataset, variable, codelist)
// accumulator the variable aggregator fills. Test-code variables additionally
// feed the TEST lookup so paired test-label variables present matching
// codelists.
func (r *run) mergeRestrictions() error {
	var order []mergeKey

	merged := make(map[mergeKey]*valueSet)

	for _, c := range r.concepts {
		for _, v := range c.entries {
			for _, group := range v.entry.WhereClause {
				for _, clause := range group.Clause {
					if clause.Variable == "" || clause.Dataset == "" {
						continue
					}

					key := mergeKey{clause.Variable, clause.Dataset, clause.CodelistConceptID}

					set, ok := merged[key]

					if !ok {
						set = newValueSet()
						merged[key] = set
						order = append(order, key)
					}

					set.addAll(clause.Values)
				}
			}
		}
	}

	for _, key := range order {
		set := merged[key]

		entry := r.dataset(key.dataset).variable(key.variable)

		if strings.HasSuffix(key.variable, testCodeSuffix) {
			if err := r.recordTestCodes(key, set); err != nil {
				return err
			}
		}

		if !entry.union(key.codelist, set.sorted()) {
			r.warnf("merge", "variable %s.%s has no codelist, dropping %d restriction values", key.dataset, key.variable, len(set.members))
		}
	}

	return nil
}

// recordTestCodes translates a test-code variable's merged submission values
// back into term identifiers and stores them under the paired test-label
// variable name. Values with no matching term contribute nothing.
func (r *run) recordTestCodes(key mergeKey, set *valueSet) error {
	if key.codelist == "" {
		r.warnf("merge", "variable %s.%s has restriction values but no codelist to translate them", key.dataset, key.variable)
		return nil
	}

	terms, err := r.cat.CodelistTerms(r.ct, key.codelist)

	if err != nil {
		return fmt.Errorf("fetching terms of codelist %q: %w", key.codelist, err)
	}

	var ids []string

	for _, value := range set.sorted() {
		for i := range terms {
			if terms[i].SubmissionValue == value {
				ids = append(ids, terms[i].ConceptID)
				break
			}
		}
	}

	if _, ok := r.testCodes[key.dataset]; !ok {
		r.testCodes[key.dataset] = make(map[string][]string)
	}

	label := strings.TrimSuffix(key.variable, testCodeSuffix) + testLabelSuffix
	r.testCodes[key.dataset][label] = ids

	return nil
}
