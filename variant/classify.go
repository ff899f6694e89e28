package variant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vireolabs/beacon/errors"
)

// VariantType is the canonical variant-type taxonomy. Structural types with
// a recognized qualifier keep it (DUP:TANDEM); deeper qualifiers are
// stripped (INS:ME:LINE1 classifies as INS:ME).
type VariantType string

const (
	TypeSNP       VariantType = "SNP"
	TypeMNP       VariantType = "MNP"
	TypeINS       VariantType = "INS"
	TypeDEL       VariantType = "DEL"
	TypeDUP       VariantType = "DUP"
	TypeINV       VariantType = "INV"
	TypeCNV       VariantType = "CNV"
	TypeBND       VariantType = "BND"
	TypeDUPTandem VariantType = "DUP:TANDEM"
	TypeDELME     VariantType = "DEL:ME"
	TypeINSME     VariantType = "INS:ME"
)

// symbolicAliases maps symbolic allele names to canonical types. Two-part
// names are checked before their base type so DUP:TANDEM does not collapse
// into DUP.
var symbolicAliases = map[string]VariantType{
	"SNP":        TypeSNP,
	"MNP":        TypeMNP,
	"INS":        TypeINS,
	"DEL":        TypeDEL,
	"DUP":        TypeDUP,
	"INV":        TypeINV,
	"CNV":        TypeCNV,
	"BND":        TypeBND,
	"DUP:TANDEM": TypeDUPTandem,
	"DEL:ME":     TypeDELME,
	"INS:ME":     TypeINSME,
}

// BreakendMate is the distant locus of a breakend junction, parsed from
// bracketed mate notation ([CHR:POS[ or ]CHR:POS]).
type BreakendMate struct {
	Chromosome string
	Position   uint64
	Forward    bool
	Bracket    byte
}

// Classification is the outcome of allele classification: the canonical
// type, plus the parsed mate locus for breakends.
type Classification struct {
	Type VariantType
	Mate *BreakendMate
}

// breakendRe matches the bracketed mate portion of a breakend alternate
// allele. Go's regexp has no backreferences, so matching brackets are
// checked after the match.
var breakendRe = regexp.MustCompile(`([\[\]])([^\[\]:]+):([0-9]+)([\[\]])`)

// Classify classifies a reference/alternate allele pair into the canonical
// variant type.
//
// Bracketed mate notation classifies as BND with a parsed mate locus.
// Symbolic alternates (<DUP>, <INS:ME:LINE1>, ...) map through the alias
// table. Otherwise classification is by length: equal single-base is SNP,
// equal multi-base is MNP, longer alternate is INS, shorter is DEL.
func Classify(ref, alt string) (Classification, error) {
	if alt == "" {
		return Classification{}, errors.Wrap(errors.ErrInvalidRequest, "empty alternate allele")
	}

	if strings.ContainsAny(alt, "[]") {
		mate, err := parseBreakend(alt)
		if err != nil {
			return Classification{}, err
		}
		return Classification{Type: TypeBND, Mate: mate}, nil
	}

	if strings.HasPrefix(alt, "<") && strings.HasSuffix(alt, ">") {
		typ, err := ClassifySymbolic(alt)
		if err != nil {
			return Classification{}, err
		}
		return Classification{Type: typ}, nil
	}

	if ref == "" {
		return Classification{}, errors.Wrap(errors.ErrInvalidRequest, "empty reference allele")
	}

	switch {
	case len(ref) == len(alt) && len(ref) == 1:
		return Classification{Type: TypeSNP}, nil
	case len(ref) == len(alt):
		return Classification{Type: TypeMNP}, nil
	case len(alt) > len(ref):
		return Classification{Type: TypeINS}, nil
	default:
		return Classification{Type: TypeDEL}, nil
	}
}

// ClassifySymbolic maps a symbolic variant type name (with or without angle
// brackets) to its canonical type, stripping trailing qualifier suffixes
// beyond the first (INS:ME:LINE1 becomes INS:ME).
func ClassifySymbolic(symbolic string) (VariantType, error) {
	name := strings.ToUpper(strings.Trim(symbolic, "<>"))
	if name == "" {
		return "", errors.Wrap(errors.ErrInvalidRequest, "empty symbolic variant type")
	}

	parts := strings.Split(name, ":")
	if len(parts) >= 2 {
		if typ, ok := symbolicAliases[parts[0]+":"+parts[1]]; ok {
			return typ, nil
		}
	}
	if typ, ok := symbolicAliases[parts[0]]; ok {
		return typ, nil
	}
	return "", errors.Wrapf(errors.ErrInvalidRequest, "unknown symbolic variant type %q", symbolic)
}

// parseBreakend parses bracketed mate notation from a breakend alternate
// allele. The bracket orientation determines the junction direction:
// [CHR:POS[ joins to the piece extending right of POS (forward), ]CHR:POS]
// to the piece extending left of it.
func parseBreakend(alt string) (*BreakendMate, error) {
	m := breakendRe.FindStringSubmatch(alt)
	if m == nil || m[1] != m[4] {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "malformed breakend allele %q", alt)
	}

	pos, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "breakend mate position in %q out of range", alt)
	}

	bracket := m[1][0]
	return &BreakendMate{
		Chromosome: m[2],
		Position:   pos,
		Forward:    bracket == '[',
		Bracket:    bracket,
	}, nil
}

// AllelesCompatible reports whether a query allele matches a stored allele,
// treating N as a wildcard base on either side. Alleles of different
// lengths are never compatible.
func AllelesCompatible(query, stored string) bool {
	if len(query) != len(stored) {
		return false
	}
	q := strings.ToUpper(query)
	s := strings.ToUpper(stored)
	for i := 0; i < len(q); i++ {
		if q[i] != s[i] && q[i] != 'N' && s[i] != 'N' {
			return false
		}
	}
	return true
}
