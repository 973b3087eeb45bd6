package define

// Output document types. The JSON keys, including the ones with embedded
// spaces, are consumed by downstream define.xml tooling and must not change.

// StudyInfo holds the study-level descriptive fields.
type StudyInfo struct {
	StudyName        string `json:"StudyName"`
	StudyDescription string `json:"StudyDescription"`
	ProtocolName     string `json:"ProtocolName"`
	Language         string `json:"Language"`
}

// Standard identifies one standard the template was resolved against.
type Standard struct {
	Name          string `json:"Name"`
	Type          string `json:"Type"`
	PublishingSet string `json:"Publishing Set,omitempty"`
	Version       string `json:"Version"`
}

// VariableRow is one variable row of a dataset table.
type VariableRow struct {
	Variable string      `json:"Variable"`
	Label    string      `json:"Label"`
	DataType string      `json:"Data Type"`
	Role     string      `json:"Role"`
	CodeList []string    `json:"CodeList,omitempty"`
	VLM      []*VLMEntry `json:"VLM,omitempty"`
}

// Dataset is the template entry for one dataset.
type Dataset struct {
	Description string        `json:"Description"`
	Class       string        `json:"Class"`
	Structure   string        `json:"Structure"`
	Variables   []VariableRow `json:"Variables"`
}

// TermEntry is one resolved codelist term.
type TermEntry struct {
	NCITermCode  string   `json:"NCI Term Code"`
	Term         string   `json:"Term"`
	DecodedValue []string `json:"Decoded Value"`
}

// CodeListEntry is one codelist with its resolved term listing.
type CodeListEntry struct {
	NCICodelistCode string      `json:"NCI Codelist Code"`
	Name            string      `json:"Name"`
	ShortName       string      `json:"Short Name"`
	Terms           []TermEntry `json:"Terms"`
}

// VariableCodeLists holds the codelists resolved for one dataset variable.
type VariableCodeLists struct {
	Dataset  string          `json:"Dataset"`
	Variable string          `json:"Variable"`
	CodeList []CodeListEntry `json:"CodeList"`
}

// Template is the assembled define template document.
type Template struct {
	Study     StudyInfo           `json:"Study"`
	Standards []Standard          `json:"Standards"`
	Datasets  map[string]*Dataset `json:"Datasets"`
	CodeLists []VariableCodeLists `json:"CodeLists"`
}
