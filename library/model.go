package library

// Concept record types as declared by the catalog.
const (
	TypeBiomedicalConcept     = "Biomedical Concept"
	TypeDatasetSpecialization = "SDTM Dataset Specialization"
)

// AssignedTerm is a single controlled term assigned to a specialization
// variable.
type AssignedTerm struct {
	ConceptID string `json:"conceptId"`
	Value     string `json:"value"`
}

// CodelistRef points a variable at its controlled terminology codelist.
type CodelistRef struct {
	ConceptID       string `json:"conceptId"`
	SubmissionValue string `json:"submissionValue"`
}

// Variable is a variable declared by a concept or dataset specialization
// record. Pointer fields distinguish absent from zero; Comparator is empty
// when the variable carries no comparator.
type Variable struct {
	Name                 string        `json:"name"`
	Label                string        `json:"label"`
	DataElementConceptID string        `json:"dataElementConceptId"`
	Codelist             *CodelistRef  `json:"codelist"`
	Comparator           string        `json:"comparator"`
	VLMTarget            bool          `json:"vlmTarget"`
	AssignedTerm         *AssignedTerm `json:"assignedTerm"`
	ValueList            []string      `json:"valueList"`

	// Descriptive fields used for value-level metadata.
	Role              string `json:"role"`
	DataType          string `json:"dataType"`
	Length            *int   `json:"length"`
	Format            string `json:"format"`
	SignificantDigits *int   `json:"significantDigits"`
	OriginType        string `json:"originType"`
	OriginSource      string `json:"originSource"`
}

// CodelistID returns the concept id of the variable's codelist, or an empty
// string when the variable has none.
func (v *Variable) CodelistID() string {
	if v.Codelist == nil {
		return ""
	}

	return v.Codelist.ConceptID
}

// HasComparator reports whether the variable declares a comparator.
func (v *Variable) HasComparator() bool {
	return v.Comparator != ""
}

// ConceptRecord is the catalog's full definition of a biomedical concept or
// dataset specialization. Domain and Variables are populated only for
// specializations.
type ConceptRecord struct {
	Type             string
	ConceptID        string
	SpecializationID string
	Domain           string
	ShortName        string
	Variables        []Variable
}

// IsSpecialization reports whether the record is a dataset specialization.
func (r *ConceptRecord) IsSpecialization() bool {
	return r.Type == TypeDatasetSpecialization
}

// Term is a single controlled term within a codelist.
type Term struct {
	ConceptID       string   `json:"conceptId"`
	SubmissionValue string   `json:"submissionValue"`
	Synonyms        []string `json:"synonyms"`
}

// Codelist is a controlled terminology codelist definition.
type Codelist struct {
	ConceptID       string `json:"conceptId"`
	Name            string `json:"name"`
	SubmissionValue string `json:"submissionValue"`
	Terms           []Term `json:"terms"`
}

// DatasetVariable is a variable of a standards-catalog dataset definition.
// Codelists holds codelist ids extracted from the catalog links.
type DatasetVariable struct {
	Name      string
	Label     string
	DataType  string
	Role      string
	Core      string
	Codelists []string
}

// Required reports whether the catalog designates the variable as required
// or expected in the dataset.
func (v *DatasetVariable) Required() bool {
	return v.Core == "Req" || v.Core == "Exp"
}

// DatasetDefinition is the standards catalog definition of a dataset.
type DatasetDefinition struct {
	Name      string
	Label     string
	Class     string
	Structure string
	Variables []DatasetVariable
}
