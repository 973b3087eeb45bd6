package usdm

// Code is a coded value from a terminology system.
type Code struct {
	Code   string `json:"code"`
	Decode string `json:"decode"`
}

// AliasCode wraps a standard code with optional aliases.
type AliasCode struct {
	StandardCode Code `json:"standardCode"`
}

// ResponseCode is a permitted response for a biomedical concept property.
type ResponseCode struct {
	Name string `json:"name"`
	Code Code   `json:"code"`
}

// Property maps a biomedical concept onto one dataset variable. Code holds
// the data element concept id the variable is matched against; ResponseCodes
// hold the controlled terms the concept permits for it.
type Property struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Code          AliasCode      `json:"code"`
	ResponseCodes []ResponseCode `json:"responseCodes"`
}

// BiomedicalConcept is a concept reference declared in the study document.
// Reference is the catalog path of the full record.
type BiomedicalConcept struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Reference  string     `json:"reference"`
	Properties []Property `json:"properties"`
}

// Title is a study title with its typed purpose.
type Title struct {
	Text string `json:"text"`
	Type Code   `json:"type"`
}

// DocumentVersion is one version of a study definition document.
type DocumentVersion struct {
	ID string `json:"id"`
}

// StudyDefinitionDocument describes a protocol document and its language.
type StudyDefinitionDocument struct {
	ID       string            `json:"id"`
	Language Code              `json:"language"`
	Versions []DocumentVersion `json:"versions"`
}

// StudyVersion is one version of the study design.
type StudyVersion struct {
	ID                 string              `json:"id"`
	Titles             []Title             `json:"titles"`
	DocumentVersionIDs []string            `json:"documentVersionIds"`
	BiomedicalConcepts []BiomedicalConcept `json:"biomedicalConcepts"`
}

// Study is the root study design element.
type Study struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Versions     []StudyVersion            `json:"versions"`
	DocumentedBy []StudyDefinitionDocument `json:"documentedBy"`
}

// Document is the top-level USDM wrapper.
type Document struct {
	Study       Study  `json:"study"`
	USDMVersion string `json:"usdmVersion"`
}
