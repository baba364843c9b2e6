package params

import "math"

const (
	// EccentricityOffset is added to e when the eccentricity pair carries
	// (e, omega) instead of (e cos w, e sin w).
	EccentricityOffset = 10.0

	// AutoReflection is the sentinel written for reflection coefficients the
	// modeling tool should compute itself. Any value at or below it is auto.
	AutoReflection = -100.0
)

// RadiiEncoding is the first geometry pair: either sum and ratio of the
// fractional radii, or the two radii directly (written with rA negated).
type RadiiEncoding interface {
	// Radii returns the fractional radii of star A and star B.
	Radii() (rA, rB float64)
	Mode() string
	radiiEncoding()
}

// SumRatio is the default radii pair: rA+rB and k = rB/rA.
type SumRatio struct {
	Sum   float64
	Ratio float64
}

func (s SumRatio) Radii() (float64, float64) {
	rA := s.Sum / (1 + s.Ratio)
	return rA, s.Sum - rA
}

func (SumRatio) Mode() string { return "sum_ratio" }
func (SumRatio) radiiEncoding() {}

// DirectRadii fits rA and rB directly.
type DirectRadii struct {
	RA float64
	RB float64
}

func (d DirectRadii) Radii() (float64, float64) { return d.RA, d.RB }
func (DirectRadii) Mode() string                 { return "direct" }
func (DirectRadii) radiiEncoding()               {}

// EccentricityEncoding is the orbit shape pair.
type EccentricityEncoding interface {
	// Elements returns eccentricity and periastron longitude in degrees.
	Elements() (e, omega float64)
	Mode() string
	eccentricityEncoding()
}

// EccentricityVector is (e cos w, e sin w).
type EccentricityVector struct {
	ECosW float64
	ESinW float64
}

func (v EccentricityVector) Elements() (float64, float64) {
	e := math.Hypot(v.ECosW, v.ESinW)
	if e == 0 {
		return 0, 0
	}
	omega := math.Atan2(v.ESinW, v.ECosW) * 180 / math.Pi
	if omega < 0 {
		omega += 360
	}
	return e, omega
}

func (EccentricityVector) Mode() string          { return "vector" }
func (EccentricityVector) eccentricityEncoding() {}

// EccentricityOmega is the literal (e, omega) form, written as (e+10, omega).
type EccentricityOmega struct {
	E     float64
	Omega float64
}

func (o EccentricityOmega) Elements() (float64, float64) { return o.E, o.Omega }
func (EccentricityOmega) Mode() string                   { return "literal" }
func (EccentricityOmega) eccentricityEncoding()          {}

// MassRatio is qphot. Spherical stars are written as -Q and the tool then
// ignores the ratio for deformation.
type MassRatio struct {
	Q         float64
	Spherical bool
}

// Reflection is one star's reflection coefficient or the auto sentinel.
type Reflection interface {
	Auto() bool
	reflection()
}

// ReflectionAuto asks the modeling tool to compute the coefficient. Sentinel
// keeps the exact value read from a file so it is written back unchanged.
type ReflectionAuto struct {
	Sentinel float64
}

func (ReflectionAuto) Auto() bool  { return true }
func (ReflectionAuto) reflection() {}

// ReflectionCoefficient is an explicit coefficient.
type ReflectionCoefficient struct {
	Value float64
}

func (ReflectionCoefficient) Auto() bool  { return false }
func (ReflectionCoefficient) reflection() {}

// ReflectionFromValue classifies a raw wire value.
func ReflectionFromValue(v float64) Reflection {
	if v <= AutoReflection {
		return ReflectionAuto{Sentinel: v}
	}
	return ReflectionCoefficient{Value: v}
}

// ReflectionValue is the raw wire value of r.
func ReflectionValue(r Reflection) float64 {
	switch v := r.(type) {
	case ReflectionAuto:
		return v.Sentinel
	case ReflectionCoefficient:
		return v.Value
	default:
		return 0
	}
}
