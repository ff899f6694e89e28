// Package variant normalizes heterogeneous genomic query parameters into
// canonical predicates: positional queries into a point/range/fuzzy-range
// taxonomy, and raw allele strings into a variant-type classification. The
// same normalization serves both ingestion and query matching.
//
// Everything in this package is pure; no synchronization is needed.
package variant

import (
	"github.com/vireolabs/beacon/errors"
)

// CoordinateKind discriminates the canonical positional query forms.
type CoordinateKind int

const (
	Point CoordinateKind = iota
	Range
	FuzzyRange
)

// String returns the canonical kind label.
func (k CoordinateKind) String() string {
	switch k {
	case Point:
		return "POINT"
	case Range:
		return "RANGE"
	case FuzzyRange:
		return "FUZZY_RANGE"
	}
	return "UNKNOWN"
}

// CoordinateParams are the raw positional query parameters. Zero means the
// parameter is absent; genomic coordinates here are 1-based so zero is never
// a legal position.
type CoordinateParams struct {
	Start    uint64
	End      uint64
	StartMin uint64
	StartMax uint64
	EndMin   uint64
	EndMax   uint64
}

// CoordinateQuery is the canonical positional predicate.
//
//	Point:      Start
//	Range:      Start, End
//	FuzzyRange: StartMin, StartMax, EndMin, EndMax
type CoordinateQuery struct {
	Kind     CoordinateKind
	Start    uint64
	End      uint64
	StartMin uint64
	StartMax uint64
	EndMin   uint64
	EndMax   uint64
}

// NormalizeCoordinates canonicalizes raw positional parameters.
//
// An exact start with an end is a range; an exact start alone is a point;
// all four fuzzy bounds together form a fuzzy range. Anything else is
// positionally underspecified and rejected. Cross-validation between exact
// and fuzzy bounds is deliberately not done here.
func NormalizeCoordinates(p CoordinateParams) (CoordinateQuery, error) {
	switch {
	case p.Start > 0 && p.End > 0:
		return CoordinateQuery{Kind: Range, Start: p.Start, End: p.End}, nil
	case p.Start > 0:
		return CoordinateQuery{Kind: Point, Start: p.Start}, nil
	case p.StartMin > 0 && p.StartMax > 0 && p.EndMin > 0 && p.EndMax > 0:
		return CoordinateQuery{
			Kind:     FuzzyRange,
			StartMin: p.StartMin,
			StartMax: p.StartMax,
			EndMin:   p.EndMin,
			EndMax:   p.EndMax,
		}, nil
	}
	return CoordinateQuery{}, errors.Wrap(errors.ErrInvalidRequest, "positionally underspecified query")
}
