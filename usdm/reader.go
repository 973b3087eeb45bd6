package usdm

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Title type decodes used by the define template.
const (
	TitleStudyAcronym  = "Study Acronym"
	TitleOfficialTitle = "Official Study Title"
)

// Read decodes a USDM document from the reader.
func Read(r io.Reader) (*Document, error) {
	var d Document

	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("usdm: decoding document: %w", err)
	}

	return &d, nil
}

// ReadFile decodes a USDM document from a file on disk.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	return Read(f)
}

// Version returns the study version at the given index.
func (d *Document) Version(i int) (*StudyVersion, error) {
	if i < 0 || i >= len(d.Study.Versions) {
		return nil, fmt.Errorf("usdm: study version %d out of range (%d versions)", i, len(d.Study.Versions))
	}

	return &d.Study.Versions[i], nil
}

// TitleText returns the text of the first title whose type decode matches.
// An empty string is returned when no title matches.
func (v *StudyVersion) TitleText(decode string) string {
	for _, t := range v.Titles {
		if t.Type.Decode == decode {
			return t.Text
		}
	}

	return ""
}

// Language returns the language code of the document owning the selected
// document version of the selected study version. An empty string is
// returned when the chain cannot be followed.
func (d *Document) Language(versionIdx, docIdx int) string {
	v, err := d.Version(versionIdx)

	if err != nil {
		return ""
	}

	if docIdx < 0 || docIdx >= len(v.DocumentVersionIDs) {
		return ""
	}

	docVersionID := v.DocumentVersionIDs[docIdx]

	for _, doc := range d.Study.DocumentedBy {
		for _, dv := range doc.Versions {
			if dv.ID == docVersionID {
				return doc.Language.Code
			}
		}
	}

	return ""
}
