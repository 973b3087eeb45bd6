package library

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var dssBody = `{
	"datasetSpecializationId": "SYSBP",
	"domain": "VS",
	"shortName": "Systolic Blood Pressure",
	"variables": [
		{
			"name": "VSTESTCD",
			"dataElementConceptId": "C25298",
			"codelist": {"conceptId": "C66741", "submissionValue": "VSTESTCD"},
			"comparator": "EQ",
			"assignedTerm": {"conceptId": "C25298", "value": "SYSBP"}
		},
		{
			"name": "VSPOS",
			"dataElementConceptId": "C71148",
			"codelist": {"conceptId": "C71148"},
			"vlmTarget": true,
			"role": "Record Qualifier",
			"dataType": "text",
			"length": 20
		}
	],
	"_links": {
		"self": {
			"href": "/mdr/specializations/sdtm/datasetspecializations/SYSBP",
			"type": "SDTM Dataset Specialization"
		}
	}
}`

var codelistBody = `{
	"conceptId": "C66741",
	"name": "Vital Signs Test Code",
	"submissionValue": "VSTESTCD",
	"terms": [
		{"conceptId": "C25298", "submissionValue": "SYSBP", "synonyms": ["Systolic Blood Pressure"]},
		{"conceptId": "C25299", "submissionValue": "DIABP", "synonyms": ["Diastolic Blood Pressure"]}
	]
}`

var datasetBody = `{
	"label": "Vital Signs",
	"datasetStructure": "One record per vital sign measurement per visit per subject",
	"datasetVariables": [
		{
			"name": "VSTESTCD",
			"label": "Vital Signs Test Short Name",
			"simpleDatatype": "Char",
			"role": "Topic",
			"core": "Req",
			"_links": {
				"codelist": [{"href": "/mdr/root/ct/sdtmct/codelists/C66741"}]
			}
		}
	],
	"_links": {
		"parentClass": {"title": "Findings"}
	}
}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "test-key")

	if err != nil {
		t.Fatal(err)
	}

	c.retryWait = time.Millisecond

	return c, srv
}

func TestConceptRecord(t *testing.T) {
	var gotKey string

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cosmos/v2/mdr/specializations/sdtm/datasetspecializations/SYSBP" {
			http.NotFound(w, r)
			return
		}

		gotKey = r.Header.Get("api-key")
		fmt.Fprint(w, dssBody)
	}))

	rec, err := c.ConceptRecord("/mdr/specializations/sdtm/datasetspecializations/SYSBP")

	if err != nil {
		t.Fatal(err)
	}

	if gotKey != "test-key" {
		t.Errorf("api-key header = %q", gotKey)
	}

	if rec.Type != TypeDatasetSpecialization {
		t.Errorf("type = %q", rec.Type)
	}

	if rec.Domain != "VS" || rec.SpecializationID != "SYSBP" {
		t.Errorf("unexpected record %+v", rec)
	}

	if len(rec.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(rec.Variables))
	}

	v := rec.Variables[0]

	if !v.HasComparator() || v.CodelistID() != "C66741" {
		t.Errorf("unexpected variable %+v", v)
	}

	if v.AssignedTerm == nil || v.AssignedTerm.Value != "SYSBP" {
		t.Errorf("assigned term = %+v", v.AssignedTerm)
	}

	pos := rec.Variables[1]

	if !pos.VLMTarget || pos.Length == nil || *pos.Length != 20 {
		t.Errorf("unexpected variable %+v", pos)
	}
}

func TestDatasetSpecializationsFor(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cosmos/v2/mdr/specializations/datasetspecializations" {
			http.NotFound(w, r)
			return
		}

		if got := r.URL.Query().Get("biomedicalconcept"); got != "C25298" {
			t.Errorf("biomedicalconcept = %q", got)
		}

		fmt.Fprint(w, `{
			"_links": {
				"datasetSpecializations": {
					"sdtm": [
						{"href": "/mdr/specializations/sdtm/datasetspecializations/SYSBP"},
						{"href": "/mdr/specializations/sdtm/datasetspecializations/DIABP"}
					]
				}
			}
		}`)
	}))

	refs, err := c.DatasetSpecializationsFor("C25298")

	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != 2 || refs[0] != "/mdr/specializations/sdtm/datasetspecializations/SYSBP" {
		t.Errorf("refs = %v", refs)
	}
}

func TestCodelistTermsCached(t *testing.T) {
	var hits int

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mdr/ct/packages/sdtmct-2025-03-28/codelists/C66741" {
			http.NotFound(w, r)
			return
		}

		hits++
		fmt.Fprint(w, codelistBody)
	}))

	for i := 0; i < 3; i++ {
		terms, err := c.CodelistTerms("2025-03-28", "C66741")

		if err != nil {
			t.Fatal(err)
		}

		if len(terms) != 2 {
			t.Fatalf("expected 2 terms, got %d", len(terms))
		}
	}

	if hits != 1 {
		t.Errorf("expected 1 request, got %d", hits)
	}
}

func TestDatasetDefinition(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mdr/sdtmig/3-4/datasets/VS" {
			http.NotFound(w, r)
			return
		}

		fmt.Fprint(w, datasetBody)
	}))

	def, err := c.DatasetDefinition("3.4", "VS")

	if err != nil {
		t.Fatal(err)
	}

	if def.Label != "Vital Signs" || def.Class != "Findings" {
		t.Errorf("unexpected definition %+v", def)
	}

	if len(def.Variables) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(def.Variables))
	}

	v := def.Variables[0]

	if !v.Required() {
		t.Error("Req variable not marked required")
	}

	// The codelist href must be reduced to its id at the boundary.
	if len(v.Codelists) != 1 || v.Codelists[0] != "C66741" {
		t.Errorf("codelists = %v", v.Codelists)
	}
}

func TestNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())

	_, err := c.ConceptRecord("/missing")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var hits int

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++

		if hits == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		fmt.Fprint(w, codelistBody)
	}))

	cl, err := c.CodelistDefinition("2025-03-28", "C66741")

	if err != nil {
		t.Fatal(err)
	}

	if cl.ConceptID != "C66741" {
		t.Errorf("concept id = %q", cl.ConceptID)
	}

	if hits != 2 {
		t.Errorf("expected 2 requests, got %d", hits)
	}
}

func TestRetriesAreBounded(t *testing.T) {
	var hits int

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.CodelistDefinition("2025-03-28", "C66741")

	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}

	if hits != int(defaultRetries)+1 {
		t.Errorf("expected %d requests, got %d", defaultRetries+1, hits)
	}
}
