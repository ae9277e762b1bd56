package geo

// Containment is the outcome of a point-in-polygon test.
type Containment int

// Containment outcomes.
const (
	NotContained Containment = iota
	Contained
	Indeterminate
)

// String returns the outcome name used in logs and reports.
func (c Containment) String() string {
	switch c {
	case Contained:
		return "contained"
	case NotContained:
		return "not_contained"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// Result carries a containment outcome. Reason is set for Indeterminate results.
type Result struct {
	Containment Containment
	Reason      string
}

// Inside reports whether the test positively placed the point in the polygon.
func (r Result) Inside() bool {
	return r.Containment == Contained
}
