package define

import "github.com/dostiep/360i/library"

// Catalog is the standards catalog surface consumed by the aggregation
// engine. library.Client implements it over the CDISC Library API; tests
// supply an in-memory implementation.
type Catalog interface {
	// ConceptRecord fetches the full record behind a study concept reference.
	ConceptRecord(ref string) (*library.ConceptRecord, error)

	// DatasetSpecializationsFor lists the references of the dataset
	// specializations implementing a biomedical concept.
	DatasetSpecializationsFor(conceptID string) ([]string, error)

	// CodelistTerms returns the terms of a controlled terminology codelist.
	CodelistTerms(ctVersion, codelistConceptID string) ([]library.Term, error)

	// DatasetDefinition fetches the implementation guide definition of a
	// dataset.
	DatasetDefinition(igVersion, dataset string) (*library.DatasetDefinition, error)

	// CodelistDefinition fetches a full codelist definition.
	CodelistDefinition(ctVersion, codelistID string) (*library.Codelist, error)
}
