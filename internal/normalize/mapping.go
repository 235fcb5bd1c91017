package normalize

import (
	"math"
	"time"
)

// Probe lists the candidate paths for one output field, highest priority first.
type Probe struct {
	Field string
	Kind  Kind
	Paths []Path
}

// Mapping is a declarative set of probes. Each field is resolved on its own.
type Mapping []Probe

// Field builds a probe that tries name under every prefix before trying any
// alias, and each alias under every prefix in turn.
func Field(name string, kind Kind, prefixes []Path, aliases ...string) Probe {
	if len(prefixes) == 0 {
		prefixes = []Path{""}
	}
	names := append([]string{name}, aliases...)
	paths := make([]Path, 0, len(names)*len(prefixes))
	for _, n := range names {
		for _, p := range prefixes {
			paths = append(paths, p.Join(n))
		}
	}
	return Probe{Field: name, Kind: kind, Paths: paths}
}

// Resolve returns the first usable value among the probe's paths and the
// path it came from.
func (p Probe) Resolve(raw any) (any, Path, bool) {
	for _, path := range p.Paths {
		v, ok := Lookup(raw, path)
		if !ok {
			continue
		}
		if cv, ok := coerce(v, p.Kind); ok {
			return cv, path, true
		}
	}
	return nil, "", false
}

// Extract resolves every probe against raw.
func (m Mapping) Extract(raw any) Record {
	rec := Record{values: make(map[string]any, len(m)), sources: make(map[string]Path, len(m))}
	for _, p := range m {
		if v, path, ok := p.Resolve(raw); ok {
			rec.values[p.Field] = v
			rec.sources[p.Field] = path
		}
	}
	return rec
}

// Record is the flat result of a Mapping. Missing fields read as zero/nil.
type Record struct {
	values  map[string]any
	sources map[string]Path
}

// Has reports whether field was found.
func (r Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Len is the number of fields found.
func (r Record) Len() int { return len(r.values) }

// Source returns the path field was read from.
func (r Record) Source(field string) (Path, bool) {
	p, ok := r.sources[field]
	return p, ok
}

func (r Record) String(field string) string {
	s, _ := r.values[field].(string)
	return s
}

func (r Record) Float(field string) *float64 {
	f, ok := r.values[field].(float64)
	if !ok {
		return nil
	}
	return &f
}

// Int returns the field rounded to the nearest integer.
func (r Record) Int(field string) *int {
	f, ok := r.values[field].(float64)
	if !ok {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

func (r Record) Bool(field string) *bool {
	b, ok := r.values[field].(bool)
	if !ok {
		return nil
	}
	return &b
}

func (r Record) Time(field string) *time.Time {
	t, ok := r.values[field].(time.Time)
	if !ok {
		return nil
	}
	return &t
}
