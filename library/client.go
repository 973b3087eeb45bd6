package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultServiceURL is the public CDISC Library API root.
const DefaultServiceURL = "https://api.library.cdisc.org/api"

// ErrNotFound denotes a concept, dataset, or codelist the catalog does not
// know about.
var ErrNotFound = errors.New("library: not found")

// defaultRetries bounds how many times a failed catalog call is reissued
// before the run aborts.
const defaultRetries = 3

type link struct {
	Href  string `json:"href"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type conceptResponse struct {
	ConceptID               string     `json:"conceptId"`
	DatasetSpecializationID string     `json:"datasetSpecializationId"`
	Domain                  string     `json:"domain"`
	ShortName               string     `json:"shortName"`
	Variables               []Variable `json:"variables"`

	Links struct {
		Self link `json:"self"`
	} `json:"_links"`
}

type specializationsResponse struct {
	Links struct {
		DatasetSpecializations struct {
			SDTM []link `json:"sdtm"`
		} `json:"datasetSpecializations"`
	} `json:"_links"`
}

type datasetVariableResponse struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	SimpleDatatype string `json:"simpleDatatype"`
	Role           string `json:"role"`
	Core           string `json:"core"`

	Links struct {
		Codelist []link `json:"codelist"`
	} `json:"_links"`
}

type datasetResponse struct {
	Label            string                    `json:"label"`
	DatasetStructure string                    `json:"datasetStructure"`
	DatasetVariables []datasetVariableResponse `json:"datasetVariables"`

	Links struct {
		ParentClass struct {
			Title string `json:"title"`
		} `json:"parentClass"`
	} `json:"_links"`
}

// Client is an HTTP client for the CDISC Library API. Codelist term lookups
// are cached per (version, codelist) since the same codelist is resolved
// repeatedly across concepts.
type Client struct {
	base      *url.URL
	apiKey    string
	http      *http.Client
	retries   uint64
	retryWait time.Duration

	terms map[string]*Codelist
}

// New initializes a client for the catalog at the base URL.
func New(base, apiKey string) (*Client, error) {
	u, err := url.Parse(base)

	if err != nil {
		return nil, err
	}

	return &Client{
		base:      u,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: 30 * time.Second},
		retries:   defaultRetries,
		retryWait: 500 * time.Millisecond,
		terms:     make(map[string]*Codelist),
	}, nil
}

// getJSON issues a GET against the catalog and decodes the JSON response.
// Transport errors and server errors are retried with exponential backoff;
// a 404 maps to ErrNotFound without retrying.
func (c *Client) getJSON(path string, v interface{}) error {
	ref, err := url.Parse(path)

	if err != nil {
		return err
	}

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + ref.Path
	u.RawQuery = ref.RawQuery

	op := func() error {
		req, err := http.NewRequest("GET", u.String(), nil)

		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Add("Accept", "application/json")

		if c.apiKey != "" {
			req.Header.Add("api-key", c.apiKey)
		}

		resp, err := c.http.Do(req)

		if err != nil {
			return err
		}

		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, path))
		case resp.StatusCode >= 500:
			return fmt.Errorf("library: %s returned %s", path, resp.Status)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("library: %s returned %s", path, resp.Status))
		}

		if err = json.NewDecoder(resp.Body).Decode(v); err != nil {
			return backoff.Permanent(fmt.Errorf("library: decoding %s: %w", path, err))
		}

		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryWait

	return backoff.Retry(op, backoff.WithMaxRetries(bo, c.retries))
}

// ConceptRecord fetches the full record behind a study concept reference.
func (c *Client) ConceptRecord(ref string) (*ConceptRecord, error) {
	var resp conceptResponse

	if err := c.getJSON("/cosmos/v2"+ref, &resp); err != nil {
		return nil, err
	}

	return &ConceptRecord{
		Type:             resp.Links.Self.Type,
		ConceptID:        resp.ConceptID,
		SpecializationID: resp.DatasetSpecializationID,
		Domain:           resp.Domain,
		ShortName:        resp.ShortName,
		Variables:        resp.Variables,
	}, nil
}

// DatasetSpecializationsFor lists the references of every SDTM dataset
// specialization implementing a biomedical concept.
func (c *Client) DatasetSpecializationsFor(conceptID string) ([]string, error) {
	var resp specializationsResponse

	path := "/cosmos/v2/mdr/specializations/datasetspecializations?biomedicalconcept=" + url.QueryEscape(conceptID)

	if err := c.getJSON(path, &resp); err != nil {
		return nil, err
	}

	refs := make([]string, len(resp.Links.DatasetSpecializations.SDTM))

	for i, l := range resp.Links.DatasetSpecializations.SDTM {
		refs[i] = l.Href
	}

	return refs, nil
}

// CodelistDefinition fetches a controlled terminology codelist from the
// versioned SDTM CT package.
func (c *Client) CodelistDefinition(ctVersion, codelistID string) (*Codelist, error) {
	key := ctVersion + "/" + codelistID

	if cl, ok := c.terms[key]; ok {
		return cl, nil
	}

	var cl Codelist

	path := fmt.Sprintf("/mdr/ct/packages/sdtmct-%s/codelists/%s", ctVersion, codelistID)

	if err := c.getJSON(path, &cl); err != nil {
		return nil, err
	}

	c.terms[key] = &cl

	return &cl, nil
}

// CodelistTerms returns the terms of a codelist identified by its concept id.
func (c *Client) CodelistTerms(ctVersion, codelistConceptID string) ([]Term, error) {
	cl, err := c.CodelistDefinition(ctVersion, codelistConceptID)

	if err != nil {
		return nil, err
	}

	return cl.Terms, nil
}

// DatasetDefinition fetches the implementation guide definition of a dataset.
func (c *Client) DatasetDefinition(igVersion, dataset string) (*DatasetDefinition, error) {
	var resp datasetResponse

	path := fmt.Sprintf("/mdr/sdtmig/%s/datasets/%s", strings.Replace(igVersion, ".", "-", -1), dataset)

	if err := c.getJSON(path, &resp); err != nil {
		return nil, err
	}

	def := DatasetDefinition{
		Name:      dataset,
		Label:     resp.Label,
		Class:     resp.Links.ParentClass.Title,
		Structure: resp.DatasetStructure,
	}

	for _, v := range resp.DatasetVariables {
		dv := DatasetVariable{
			Name:     v.Name,
			Label:    v.Label,
			DataType: v.SimpleDatatype,
			Role:     v.Role,
			Core:     v.Core,
		}

		// Codelist links are converted to bare codelist ids here so the
		// aggregation engine never sees catalog hrefs.
		for _, l := range v.Links.Codelist {
			if l.Href == "" {
				continue
			}

			parts := strings.Split(l.Href, "/")
			dv.Codelists = append(dv.Codelists, parts[len(parts)-1])
		}

		def.Variables = append(def.Variables, dv)
	}

	return &def, nil
}
