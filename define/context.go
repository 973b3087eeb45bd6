package define

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// valueSet is a duplicate-free accumulator of submission values.
type valueSet struct {
	members map[string]struct{}
}

func newValueSet() *valueSet {
	return &valueSet{members: make(map[string]struct{})}
}

func (s *valueSet) add(v string) {
	s.members[v] = struct{}{}
}

func (s *valueSet) addAll(values []string) {
	for _, v := range values {
		s.add(v)
	}
}

func (s *valueSet) has(v string) bool {
	_, ok := s.members[v]
	return ok
}

func (s *valueSet) empty() bool {
	return len(s.members) == 0
}

// sorted returns the members in sorted order for stable output.
func (s *valueSet) sorted() []string {
	a := make([]string, 0, len(s.members))

	for v := range s.members {
		a = append(a, v)
	}

	sort.Strings(a)

	return a
}

// variableEntry accumulates the permitted values of one dataset variable,
// keyed by codelist id. A variable recorded without a codelist stays
// unrestricted for the rest of the run.
type variableEntry struct {
	noCodelist bool
	order      []string
	codelists  map[string]*valueSet
}

func newVariableEntry() *variableEntry {
	return &variableEntry{codelists: make(map[string]*valueSet)}
}

// ensure returns the value set for a codelist, creating it on first use.
func (e *variableEntry) ensure(codelistID string) *valueSet {
	set, ok := e.codelists[codelistID]

	if !ok {
		set = newValueSet()
		e.codelists[codelistID] = set
		e.order = append(e.order, codelistID)
	}

	return set
}

// union merges values into the codelist's set. It reports false without
// recording anything when the variable is known to have no codelist.
func (e *variableEntry) union(codelistID string, values []string) bool {
	if e.noCodelist {
		return false
	}

	e.ensure(codelistID).addAll(values)

	return true
}

// markNoCodelist records the variable as present but unrestricted. The mark
// only takes when no codelist has been recorded yet.
func (e *variableEntry) markNoCodelist() bool {
	if len(e.codelists) > 0 {
		return false
	}

	e.noCodelist = true

	return true
}

// datasetAccum tracks the variables touched within one dataset, preserving
// first-seen order.
type datasetAccum struct {
	order     []string
	variables map[string]*variableEntry
}

func newDatasetAccum() *datasetAccum {
	return &datasetAccum{variables: make(map[string]*variableEntry)}
}

func (d *datasetAccum) variable(name string) *variableEntry {
	e, ok := d.variables[name]

	if !ok {
		e = newVariableEntry()
		d.variables[name] = e
		d.order = append(d.order, name)
	}

	return e
}

// vlmVariable pairs a variable name with its value-level metadata block.
type vlmVariable struct {
	name  string
	entry *VLMEntry
}

// conceptVLM collects the VLM blocks produced by one concept, in property
// order.
type conceptVLM struct {
	id      string
	entries []vlmVariable
}

// Warning is a collected diagnostic for a skipped or inconsistent input.
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// run owns all accumulator state for a single aggregation. It is created per
// Build call and discarded after assembly; nothing is shared across runs.
type run struct {
	cat Catalog
	ig  string
	ct  string
	log *zap.Logger

	datasetOrder []string
	datasets     map[string]*datasetAccum

	concepts     []*conceptVLM
	conceptIndex map[string]*conceptVLM

	vlm map[string][]*VLMEntry

	// testCodes maps dataset -> test-label variable -> permitted term ids.
	testCodes map[string]map[string][]string

	warnings []Warning
}

func newRun(cat Catalog, ig, ct string, log *zap.Logger) *run {
	return &run{
		cat:          cat,
		ig:           ig,
		ct:           ct,
		log:          log,
		datasets:     make(map[string]*datasetAccum),
		conceptIndex: make(map[string]*conceptVLM),
		vlm:          make(map[string][]*VLMEntry),
		testCodes:    make(map[string]map[string][]string),
	}
}

// dataset returns the accumulator for a dataset, creating it on first use.
func (r *run) dataset(name string) *datasetAccum {
	d, ok := r.datasets[name]

	if !ok {
		d = newDatasetAccum()
		r.datasets[name] = d
		r.datasetOrder = append(r.datasetOrder, name)
	}

	return d
}

// concept returns the VLM collector for a concept id, creating it on first
// use so concepts without VLM targets still appear with an empty entry list.
func (r *run) concept(id string) *conceptVLM {
	c, ok := r.conceptIndex[id]

	if !ok {
		c = &conceptVLM{id: id}
		r.conceptIndex[id] = c
		r.concepts = append(r.concepts, c)
	}

	return c
}

// warnf records a structured warning and logs it.
func (r *run) warnf(stage, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	r.warnings = append(r.warnings, Warning{Stage: stage, Message: msg})
	r.log.Warn(msg, zap.String("stage", stage))
}
