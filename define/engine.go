// Package define aggregates a USDM study document and the CDISC Library
// catalog into a denormalized define template: datasets, variables,
// value-level metadata, and per-variable codelist term listings.
package define

import (
	"github.com/dostiep/360i/usdm"
	"go.uber.org/zap"
)

// Default standard versions the template is resolved against.
const (
	DefaultIGVersion = "3.4"
	DefaultCTVersion = "2025-03-28"
)

// Engine builds define templates. It is safe to reuse across documents;
// each Build call owns its own accumulator state.
type Engine struct {
	catalog Catalog
	ig      string
	ct      string
	log     *zap.Logger
}

// New initializes an engine resolving against the given standard versions.
// A nil logger disables logging.
func New(catalog Catalog, igVersion, ctVersion string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		catalog: catalog,
		ig:      igVersion,
		ct:      ctVersion,
		log:     log,
	}
}

// Build runs the aggregation pipeline over one study document version:
// concept resolution, the restriction merge pass, and template assembly.
// Collected warnings are returned alongside the template; an error aborts
// the run with no partial template.
func (e *Engine) Build(doc *usdm.Document, studyVersion, docVersion int) (*Template, []Warning, error) {
	r := newRun(e.catalog, e.ig, e.ct, e.log)

	v, err := doc.Version(studyVersion)

	if err != nil {
		return nil, nil, err
	}

	if err = r.resolveConcepts(v.BiomedicalConcepts); err != nil {
		return nil, r.warnings, err
	}

	r.buildVLMLookup()

	if err = r.mergeRestrictions(); err != nil {
		return nil, r.warnings, err
	}

	t, err := r.assemble(doc, studyVersion, docVersion)

	if err != nil {
		return nil, r.warnings, err
	}

	return t, r.warnings, nil
}
