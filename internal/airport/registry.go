package airport

import "sort"

// Registry maps ICAO codes to airports.
type Registry struct {
	byCode map[string]Airport
}

// NewRegistry builds a registry from airports. Later duplicates replace earlier ones.
func NewRegistry(airports ...Airport) *Registry {
	r := &Registry{byCode: make(map[string]Airport, len(airports))}
	for _, a := range airports {
		r.byCode[a.Code] = a
	}
	return r
}

// Put stores a, returning true if it replaced an existing entry.
func (r *Registry) Put(a Airport) bool {
	_, existed := r.byCode[a.Code]
	r.byCode[a.Code] = a
	return existed
}

// Get returns the airport for code.
func (r *Registry) Get(code string) (Airport, bool) {
	a, ok := r.byCode[code]
	return a, ok
}

// Has reports whether code is present.
func (r *Registry) Has(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// Delete removes code, reporting whether it was present.
func (r *Registry) Delete(code string) bool {
	if _, ok := r.byCode[code]; !ok {
		return false
	}
	delete(r.byCode, code)
	return true
}

// Len returns the number of airports.
func (r *Registry) Len() int {
	return len(r.byCode)
}

// Codes returns every code in ascending order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Airports returns every airport ordered by code.
func (r *Registry) Airports() []Airport {
	out := make([]Airport, 0, len(r.byCode))
	for _, code := range r.Codes() {
		out = append(out, r.byCode[code])
	}
	return out
}

// Clone returns an independent copy, used when the same input feeds two passes that
// each delete from their working set.
func (r *Registry) Clone() *Registry {
	c := &Registry{byCode: make(map[string]Airport, len(r.byCode))}
	for k, v := range r.byCode {
		c.byCode[k] = v
	}
	return c
}

// GroupByPrefix partitions the registry by the first n letters of the code. Members
// of each group are ordered by code.
func (r *Registry) GroupByPrefix(n int) map[string][]Airport {
	groups := make(map[string][]Airport)
	for _, a := range r.Airports() {
		p := a.Prefix(n)
		groups[p] = append(groups[p], a)
	}
	return groups
}

// Prefixes returns the distinct n-letter prefixes in ascending order.
func (r *Registry) Prefixes(n int) []string {
	groups := r.GroupByPrefix(n)
	out := make([]string, 0, len(groups))
	for p := range groups {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
