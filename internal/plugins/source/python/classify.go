package python

import "strings"

// Decision is the classifier's verdict for one class declaration.
type Decision int

const (
	// Reject means the class is not API surface; its methods are not examined.
	Reject Decision = iota
	// SkipWrapper means the class is an internal raw/streaming wrapper and is
	// dropped before any other check.
	SkipWrapper
	// Accept means the class contributes its public methods.
	Accept
)

func (d Decision) String() string {
	switch d {
	case SkipWrapper:
		return "wrapper"
	case Accept:
		return "accept"
	default:
		return "reject"
	}
}

// ClassInfo is everything the classifier looks at.
type ClassInfo struct {
	Name string
	// Path is the declaring file's path as discovered by the walker.
	Path string
	// Bases holds each base-class expression rendered to text.
	Bases []string
}

// Classifier is a name/path/base-class heuristic. It never resolves types,
// so false positives and negatives are expected.
type Classifier struct {
	WrapperSuffixes []string
	NameSuffixes    []string
	// PathMarkers are matched against the lowercased, slash-normalized path.
	PathMarkers  []string
	BaseContains []string
	BaseSuffixes []string
}

// DefaultClassifier returns the classifier used for Python SDKs.
func DefaultClassifier() *Classifier {
	return &Classifier{
		WrapperSuffixes: []string{"WithRawResponse", "WithStreamingResponse", "RawResponse", "StreamingResponse"},
		NameSuffixes:    []string{"Api", "API", "Service"},
		PathMarkers:     []string{"/api/"},
		BaseContains:    []string{"apiresource"},
		BaseSuffixes:    []string{"service", "api"},
	}
}

// Classify decides what to do with a class.
func (c *Classifier) Classify(info ClassInfo) Decision {
	if c.IsWrapper(info.Name) {
		return SkipWrapper
	}
	if c.IsAPIClass(info) {
		return Accept
	}
	return Reject
}

// IsWrapper reports whether name ends with an internal-wrapper suffix.
func (c *Classifier) IsWrapper(name string) bool {
	return hasAnySuffix(name, c.WrapperSuffixes)
}

// IsAPIClass reports whether the class looks like API surface by name, by
// location, or by any of its bases.
func (c *Classifier) IsAPIClass(info ClassInfo) bool {
	if hasAnySuffix(info.Name, c.NameSuffixes) {
		return true
	}

	lowered := strings.ToLower(strings.ReplaceAll(info.Path, `\`, "/"))
	for _, marker := range c.PathMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	for _, base := range info.Bases {
		lb := strings.ToLower(base)
		for _, sub := range c.BaseContains {
			if strings.Contains(lb, sub) {
				return true
			}
		}
		if hasAnySuffix(lb, c.BaseSuffixes) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
