package params

import (
	"fmt"
	"math"
	"strings"
)

// Task modes of the modeling tool.
const (
	MinTask = 2
	MaxTask = 9

	TaskModel = 2
	TaskFit   = 3
)

const (
	MaxRing     = 10
	MaxRadiiSum = 0.8
)

// ParameterSet is one "in" file worth of parameters, in wire line order.
type ParameterSet struct {
	Task int
	Ring int

	Radii        RadiiEncoding
	Inclination  float64
	MassRatio    MassRatio
	Eccentricity EccentricityEncoding

	GravA float64
	GravB float64
	J     float64
	L3    float64

	LDA LimbDarkening
	LDB LimbDarkening
	// LDBSameAsA is written as the "same" token; LDB then mirrors LDA.
	LDBSameAsA bool

	ReflA Reflection
	ReflB Reflection

	PhasePrimary float64
	LightScale   float64

	// Fit is present exactly when Task uses the fitting layout.
	Fit *FitSettings

	OutFile    string
	Directives []string
}

// FitSettings is the block read by fitting tasks after the phase line.
type FitSettings struct {
	Period       float64
	PrimaryEpoch float64
	Adjust       AdjustFlags
	DataFile     string
	ParamFile    string
	FitFile      string
}

// AdjustFlags selects which parameters the tool adjusts, pair by pair in wire order.
type AdjustFlags struct {
	RadiiSum    int
	RadiiRatio  int
	Inclination int
	MassRatio   int
	ECosW       int
	ESinW       int
	GravA       int
	GravB       int
	J           int
	L3          int
	LDA1        int
	LDB1        int
	LDA2        int
	LDB2        int
	ReflA       int
	ReflB       int
	Phase       int
	LightScale  int
}

// UsesFitBlock reports whether task reads the fitting block.
func UsesFitBlock(task int) bool {
	return task >= TaskFit
}

// Validate checks every documented constraint and names the first field
// that breaks one.
func (p ParameterSet) Validate() error {
	if p.Task < MinTask || p.Task > MaxTask {
		return invalid("task", "must be in [%d,%d], got %d", MinTask, MaxTask, p.Task)
	}
	if p.Ring < 1 || p.Ring > MaxRing {
		return invalid("ring", "must be in [1,%d] degrees, got %d", MaxRing, p.Ring)
	}
	if err := validateRadii(p.Radii); err != nil {
		return err
	}
	if err := finite("inc", p.Inclination); err != nil {
		return err
	}
	if p.Inclination < 0 || p.Inclination > 180 {
		return invalid("inc", "must be in [0,180] degrees, got %g", p.Inclination)
	}
	if err := finite("qphot", p.MassRatio.Q); err != nil {
		return err
	}
	if p.MassRatio.Q < 0 {
		return invalid("qphot", "magnitude must be non-negative; use Spherical for the negative form")
	}
	if p.MassRatio.Spherical && p.MassRatio.Q == 0 {
		return invalid("qphot", "spherical mode needs a non-zero magnitude to carry the sign")
	}
	if err := validateEccentricity(p.Eccentricity); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"gravA", p.GravA},
		{"gravB", p.GravB},
		{"J", p.J},
		{"L3", p.L3},
		{"phase", p.PhasePrimary},
		{"scale", p.LightScale},
	} {
		if err := finite(f.name, f.v); err != nil {
			return err
		}
	}
	if p.J < 0 {
		return invalid("J", "must be non-negative, got %g", p.J)
	}
	if p.L3 < 0 {
		return invalid("L3", "must be non-negative, got %g", p.L3)
	}
	if err := validateLD("A", p.LDA); err != nil {
		return err
	}
	if err := validateLD("B", p.LDB); err != nil {
		return err
	}
	if p.LDBSameAsA && p.LDB != p.LDA {
		return invalid("LDB", "marked same as LDA but differs; build with New to resolve")
	}
	if err := validateReflection("reflA", p.ReflA); err != nil {
		return err
	}
	if err := validateReflection("reflB", p.ReflB); err != nil {
		return err
	}
	if UsesFitBlock(p.Task) {
		if p.Fit == nil {
			return invalid("fit", "task %d requires the fitting block", p.Task)
		}
		if err := p.Fit.validate(); err != nil {
			return err
		}
	} else if p.Fit != nil {
		return invalid("fit", "task %d does not read a fitting block", p.Task)
	}
	if err := fileName("out_file", p.OutFile); err != nil {
		return err
	}
	for i, line := range p.Directives {
		if strings.TrimSpace(line) == "" || strings.TrimSpace(line) != line {
			return invalid(fmt.Sprintf("directives[%d]", i), "must be non-empty and trimmed")
		}
	}
	return nil
}

func (f *FitSettings) validate() error {
	if err := finite("period", f.Period); err != nil {
		return err
	}
	if f.Period <= 0 {
		return invalid("period", "must be positive, got %g", f.Period)
	}
	if err := finite("primary_epoch", f.PrimaryEpoch); err != nil {
		return err
	}
	if err := f.Adjust.validate(); err != nil {
		return err
	}
	if err := fileName("data_file", f.DataFile); err != nil {
		return err
	}
	if err := fileName("param_file", f.ParamFile); err != nil {
		return err
	}
	return fileName("fit_file", f.FitFile)
}

// AdjustNames lists adjust flag names in wire order; Adjust.Values follows it.
var AdjustNames = []string{
	"rA_plus_rB", "k",
	"inc", "qphot",
	"ecosw", "esinw",
	"gravA", "gravB",
	"J", "L3",
	"LDA1", "LDB1",
	"LDA2", "LDB2",
	"reflA", "reflB",
	"phase", "scale",
}

// Values returns the flags in AdjustNames order.
func (a AdjustFlags) Values() []int {
	return []int{
		a.RadiiSum, a.RadiiRatio,
		a.Inclination, a.MassRatio,
		a.ECosW, a.ESinW,
		a.GravA, a.GravB,
		a.J, a.L3,
		a.LDA1, a.LDB1,
		a.LDA2, a.LDB2,
		a.ReflA, a.ReflB,
		a.Phase, a.LightScale,
	}
}

// Set assigns the flag called name.
func (a *AdjustFlags) Set(name string, v int) error {
	ptrs := []*int{
		&a.RadiiSum, &a.RadiiRatio,
		&a.Inclination, &a.MassRatio,
		&a.ECosW, &a.ESinW,
		&a.GravA, &a.GravB,
		&a.J, &a.L3,
		&a.LDA1, &a.LDB1,
		&a.LDA2, &a.LDB2,
		&a.ReflA, &a.ReflB,
		&a.Phase, &a.LightScale,
	}
	for i, n := range AdjustNames {
		if n == name {
			*ptrs[i] = v
			return nil
		}
	}
	return invalid("adjust", "unknown flag %q", name)
}

func (a AdjustFlags) validate() error {
	for i, v := range a.Values() {
		name := AdjustNames[i]
		lo := 0
		if name == "reflA" || name == "reflB" {
			lo = -1
		}
		if v < lo || v > 3 {
			return invalid(name+"_fit", "must be in [%d,3], got %d", lo, v)
		}
	}
	return nil
}

func validateRadii(r RadiiEncoding) error {
	switch v := r.(type) {
	case SumRatio:
		if err := finite("rA_plus_rB", v.Sum); err != nil {
			return err
		}
		if err := finite("k", v.Ratio); err != nil {
			return err
		}
		if v.Sum <= 0 || v.Sum > MaxRadiiSum {
			return invalid("rA_plus_rB", "must be in (0,%g], got %g", MaxRadiiSum, v.Sum)
		}
		if v.Ratio <= 0 {
			return invalid("k", "must be positive, got %g", v.Ratio)
		}
	case DirectRadii:
		if err := finite("rA", v.RA); err != nil {
			return err
		}
		if err := finite("rB", v.RB); err != nil {
			return err
		}
		if v.RA <= 0 {
			return invalid("rA", "must be positive, got %g", v.RA)
		}
		if v.RB <= 0 {
			return invalid("rB", "must be positive, got %g", v.RB)
		}
		if v.RA+v.RB > MaxRadiiSum {
			return invalid("rA", "rA+rB must not exceed %g, got %g", MaxRadiiSum, v.RA+v.RB)
		}
	default:
		return invalid("rA_plus_rB", "radii encoding is required")
	}
	return nil
}

func validateEccentricity(e EccentricityEncoding) error {
	switch v := e.(type) {
	case EccentricityVector:
		if err := finite("ecosw", v.ECosW); err != nil {
			return err
		}
		if err := finite("esinw", v.ESinW); err != nil {
			return err
		}
		if ecc := math.Hypot(v.ECosW, v.ESinW); ecc >= 1 {
			return invalid("ecosw", "eccentricity vector must have magnitude below 1, got %g", ecc)
		}
	case EccentricityOmega:
		if err := finite("e", v.E); err != nil {
			return err
		}
		if err := finite("omega", v.Omega); err != nil {
			return err
		}
		if v.E < 0 || v.E >= 1 {
			return invalid("e", "must be in [0,1), got %g", v.E)
		}
		if v.Omega < -360 || v.Omega > 360 {
			return invalid("omega", "must be in [-360,360] degrees, got %g", v.Omega)
		}
	default:
		return invalid("ecosw", "eccentricity encoding is required")
	}
	return nil
}

func validateLD(star string, ld LimbDarkening) error {
	if !ld.Law.Valid() {
		return invalid("LD"+star, "unknown law %q", string(ld.Law))
	}
	if err := finite("LD"+star+"1", ld.Coeff1); err != nil {
		return err
	}
	return finite("LD"+star+"2", ld.Coeff2)
}

func validateReflection(field string, r Reflection) error {
	switch v := r.(type) {
	case ReflectionAuto:
		if err := finite(field, v.Sentinel); err != nil {
			return err
		}
		if v.Sentinel > AutoReflection {
			return invalid(field, "auto sentinel must be at most %g, got %g", AutoReflection, v.Sentinel)
		}
	case ReflectionCoefficient:
		if err := finite(field, v.Value); err != nil {
			return err
		}
		if v.Value <= AutoReflection {
			return invalid(field, "explicit coefficient %g would read back as auto", v.Value)
		}
	default:
		return invalid(field, "reflection is required")
	}
	return nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be finite, got %g", v)
	}
	return nil
}

func fileName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field, "is required")
	}
	if strings.TrimSpace(v) != v {
		return invalid(field, "must not have leading or trailing whitespace")
	}
	return nil
}
