package params

import (
	"fmt"
	"strings"
)

// LDLaw is a limb darkening law token understood by the modeling tool.
type LDLaw string

const (
	LawLinear      LDLaw = "lin"
	LawQuadratic   LDLaw = "quad"
	LawLogarithmic LDLaw = "log"
	LawSquareRoot  LDLaw = "sqrt"
	LawCubic       LDLaw = "cub"
	LawPower2      LDLaw = "pow2"
	LawQuadRep     LDLaw = "qrep"
	LawLogRep      LDLaw = "lrep"
	LawSqrtRep     LDLaw = "srep"
	LawCubicRep    LDLaw = "crep"
	LawH1H2        LDLaw = "h1h2"
)

// SameToken in the LDB position means star B copies star A's law and coefficients.
const SameToken = "same"

var laws = []LDLaw{
	LawLinear,
	LawQuadratic,
	LawLogarithmic,
	LawSquareRoot,
	LawCubic,
	LawPower2,
	LawQuadRep,
	LawLogRep,
	LawSqrtRep,
	LawCubicRep,
	LawH1H2,
}

// Laws returns the known laws in canonical order.
func Laws() []LDLaw {
	out := make([]LDLaw, len(laws))
	copy(out, laws)
	return out
}

// ParseLDLaw matches raw case-insensitively and returns the canonical token.
// The "same" alias is not a law and is rejected here; callers handle it.
func ParseLDLaw(raw string) (LDLaw, error) {
	v := LDLaw(strings.ToLower(strings.TrimSpace(raw)))
	if v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLaw, raw)
}

func (l LDLaw) Valid() bool {
	for _, known := range laws {
		if l == known {
			return true
		}
	}
	return false
}

// Coefficients is the number of coefficients the law reads. The second
// coefficient of a one-coefficient law is still written positionally.
func (l LDLaw) Coefficients() int {
	if l == LawLinear {
		return 1
	}
	return 2
}

func (l LDLaw) String() string {
	return string(l)
}

// LimbDarkening is one star's law and its two positional coefficients.
type LimbDarkening struct {
	Law    LDLaw
	Coeff1 float64
	Coeff2 float64
}
