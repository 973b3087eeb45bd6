package define

import (
	"fmt"
	"strings"

	"github.com/dostiep/360i/library"
	"github.com/dostiep/360i/usdm"
)

// assemble fetches each discovered dataset's canonical definition and builds
// the final template: study fields, standards, variable rows enriched with
// VLM blocks, and the resolved codelist term listings.
func (r *run) assemble(doc *usdm.Document, studyVersion, docVersion int) (*Template, error) {
	t := &Template{
		Datasets:  make(map[string]*Dataset),
		CodeLists: []VariableCodeLists{},
	}

	if err := r.populateStudy(t, doc, studyVersion, docVersion); err != nil {
		return nil, err
	}

	t.Standards = r.standards()

	for _, name := range r.datasetOrder {
		ds := r.datasets[name]

		def, err := r.cat.DatasetDefinition(r.ig, name)

		if err != nil {
			return nil, fmt.Errorf("fetching dataset definition %q: %w", name, err)
		}

		out := &Dataset{
			Description: def.Label,
			Class:       def.Class,
			Structure:   def.Structure,
		}

		for i := range def.Variables {
			v := &def.Variables[i]

			restrictions, touched := ds.variables[v.Name]

			// Catalog variables appear when touched by aggregation or when
			// the catalog requires or expects them regardless of data.
			if !touched && !v.Required() {
				continue
			}

			row := VariableRow{
				Variable: v.Name,
				Label:    v.Label,
				DataType: v.DataType,
				Role:     v.Role,
			}

			for _, codelistID := range v.Codelists {
				cl, err := r.cat.CodelistDefinition(r.ct, codelistID)

				if err != nil {
					return nil, fmt.Errorf("fetching codelist %q: %w", codelistID, err)
				}

				row.CodeList = append(row.CodeList, cl.SubmissionValue)
			}

			if entries, ok := r.vlm[v.Name]; ok {
				row.VLM = entries
			}

			out.Variables = append(out.Variables, row)

			if err := r.appendCodelists(t, name, v, restrictions); err != nil {
				return nil, err
			}
		}

		t.Datasets[name] = out
	}

	return t, nil
}

// appendCodelists resolves the final term listing of every codelist attached
// to a variable and appends the result to the template's CodeLists section.
func (r *run) appendCodelists(t *Template, dataset string, v *library.DatasetVariable, restrictions *variableEntry) error {
	if len(v.Codelists) == 0 {
		return nil
	}

	var entries []CodeListEntry

	for _, codelistID := range v.Codelists {
		cl, err := r.cat.CodelistDefinition(r.ct, codelistID)

		if err != nil {
			return fmt.Errorf("fetching codelist %q: %w", codelistID, err)
		}

		entries = append(entries, CodeListEntry{
			NCICodelistCode: cl.ConceptID,
			Name:            cl.Name,
			ShortName:       cl.SubmissionValue,
			Terms:           r.selectTerms(dataset, v.Name, codelistID, cl, restrictions),
		})
	}

	if len(entries) > 0 {
		t.CodeLists = append(t.CodeLists, VariableCodeLists{
			Dataset:  dataset,
			Variable: v.Name,
			CodeList: entries,
		})
	}

	return nil
}

// selectTerms picks the terms to publish for a variable's codelist.
// Restrictions are authoritative, the TEST-code pairing is the next-best
// signal, and no information defaults to the full term list rather than
// hiding valid terms.
func (r *run) selectTerms(dataset, variable, codelistID string, cl *library.Codelist, restrictions *variableEntry) []TermEntry {
	if restrictions != nil {
		if set, ok := restrictions.codelists[codelistID]; ok {
			// An empty restriction set means no filtering was derived, not
			// that nothing is permitted.
			if set.empty() {
				return termEntries(cl.Terms, nil)
			}

			return termEntries(cl.Terms, func(t *library.Term) bool {
				return set.has(t.SubmissionValue)
			})
		}
	}

	if strings.HasSuffix(variable, testLabelSuffix) {
		if ids, ok := r.testCodes[dataset][variable]; ok {
			keep := make(map[string]struct{}, len(ids))

			for _, id := range ids {
				keep[id] = struct{}{}
			}

			return termEntries(cl.Terms, func(t *library.Term) bool {
				_, ok := keep[t.ConceptID]
				return ok
			})
		}
	}

	return termEntries(cl.Terms, nil)
}

// termEntries converts codelist terms to output entries, keeping those the
// predicate accepts. A nil predicate keeps everything.
func termEntries(terms []library.Term, keep func(*library.Term) bool) []TermEntry {
	entries := make([]TermEntry, 0, len(terms))

	for i := range terms {
		t := &terms[i]

		if keep != nil && !keep(t) {
			continue
		}

		decoded := t.Synonyms

		if decoded == nil {
			decoded = []string{}
		}

		entries = append(entries, TermEntry{
			NCITermCode:  t.ConceptID,
			Term:         t.SubmissionValue,
			DecodedValue: decoded,
		})
	}

	return entries
}

// populateStudy fills the study-level descriptive fields from the document.
func (r *run) populateStudy(t *Template, doc *usdm.Document, studyVersion, docVersion int) error {
	v, err := doc.Version(studyVersion)

	if err != nil {
		return err
	}

	t.Study = StudyInfo{
		StudyName:        v.TitleText(usdm.TitleStudyAcronym),
		StudyDescription: v.TitleText(usdm.TitleOfficialTitle),
		ProtocolName:     v.TitleText(usdm.TitleStudyAcronym),
		Language:         doc.Language(studyVersion, docVersion),
	}

	return nil
}

func (r *run) standards() []Standard {
	return []Standard{
		{Name: "SDTMIG", Type: "IG", Version: r.ig},
		{Name: "CDISC/NCI", Type: "CT", PublishingSet: "SDTM", Version: r.ct},
	}
}
