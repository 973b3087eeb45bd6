package define

import (
	"fmt"

	"github.com/dostiep/360i/library"
	"github.com/dostiep/360i/usdm"
)

// resolveConcepts walks the study's biomedical concept references in source
// order and dispatches each on its catalog record type.
func (r *run) resolveConcepts(concepts []usdm.BiomedicalConcept) error {
	for i := range concepts {
		bc := &concepts[i]

		rec, err := r.cat.ConceptRecord(bc.Reference)

		if err != nil {
			return fmt.Errorf("resolving concept %q: %w", bc.ID, err)
		}

		switch rec.Type {
		case library.TypeBiomedicalConcept:
			err = r.resolvePlainConcept(bc, rec)
		case library.TypeDatasetSpecialization:
			err = r.resolveSpecialization(bc, rec)
		default:
			// Neither known type: the record contributes nothing.
			r.warnf("resolve", "concept %s: unknown record type %q, skipped", bc.ID, rec.Type)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// resolvePlainConcept aggregates the variables of every dataset
// specialization implementing a plain biomedical concept. Plain concepts do
// not declare comparators, so no restriction or VLM handling happens here.
func (r *run) resolvePlainConcept(bc *usdm.BiomedicalConcept, rec *library.ConceptRecord) error {
	refs, err := r.cat.DatasetSpecializationsFor(rec.ConceptID)

	if err != nil {
		return fmt.Errorf("listing specializations of %q: %w", rec.ConceptID, err)
	}

	for _, ref := range refs {
		dss, err := r.cat.ConceptRecord(ref)

		if err != nil {
			return fmt.Errorf("resolving specialization %q: %w", ref, err)
		}

		if err = r.aggregateVariables(dss.Domain, dss.Variables, bc); err != nil {
			return err
		}
	}

	return nil
}

// resolveSpecialization aggregates a dataset specialization's variables and
// additionally builds its where clauses and value-level metadata, which only
// specializations carry.
func (r *run) resolveSpecialization(bc *usdm.BiomedicalConcept, rec *library.ConceptRecord) error {
	if err := r.aggregateVariables(rec.Domain, rec.Variables, bc); err != nil {
		return err
	}

	whereClause, err := r.buildWhereClause(bc, rec)

	if err != nil {
		return err
	}

	r.concept(bc.ID)

	return r.resolveVLMTargets(bc, rec, whereClause)
}

// findVariable returns the record variable with the given name, or nil.
func findVariable(vars []library.Variable, name string) *library.Variable {
	for i := range vars {
		if vars[i].Name == name {
			return &vars[i]
		}
	}

	return nil
}
