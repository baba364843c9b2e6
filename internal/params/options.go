package params

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Defaults is the task 2 parameter set used as the starting point of New.
func Defaults() ParameterSet {
	return ParameterSet{
		Task:         TaskModel,
		Ring:         2,
		Radii:        SumRatio{Sum: 0.3, Ratio: 0.5},
		Inclination:  90,
		MassRatio:    MassRatio{Q: 0.5},
		Eccentricity: EccentricityVector{},
		J:            0.8,
		LDA:          LimbDarkening{Law: LawQuadratic, Coeff1: 0.25, Coeff2: 0.22},
		LDB:          LimbDarkening{Law: LawQuadratic, Coeff1: 0.25, Coeff2: 0.22},
		ReflA:        ReflectionCoefficient{},
		ReflB:        ReflectionCoefficient{},
		OutFile:      "model.out",
	}
}

// DefaultAdjust fits the geometry and light ratio, holding the rest.
func DefaultAdjust() AdjustFlags {
	return AdjustFlags{
		RadiiSum:    1,
		RadiiRatio:  1,
		Inclination: 1,
		J:           1,
		L3:          1,
	}
}

type builder struct {
	set      ParameterSet
	autoRefl bool
}

// Option customizes a ParameterSet before it is resolved and validated.
type Option func(*builder)

// New builds a validated ParameterSet from Defaults and opts, applied in order.
func New(opts ...Option) (ParameterSet, error) {
	b := &builder{set: Defaults()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.resolve()
	if err := b.set.Validate(); err != nil {
		return ParameterSet{}, err
	}
	return b.set, nil
}

func (b *builder) resolve() {
	p := &b.set
	if b.autoRefl {
		if p.Task == TaskModel {
			p.ReflA = ReflectionAuto{Sentinel: AutoReflection}
			p.ReflB = ReflectionAuto{Sentinel: AutoReflection}
		} else {
			log.Debug().Int("task", p.Task).Msg("params.New auto reflection ignored for fitting task")
		}
	}
	if p.LDBSameAsA {
		p.LDB = p.LDA
	}
	p.OutFile = strings.TrimSpace(p.OutFile)
	if p.Fit != nil {
		fit := *p.Fit
		stem := strings.TrimSuffix(p.OutFile, filepath.Ext(p.OutFile))
		if strings.TrimSpace(fit.ParamFile) == "" && stem != "" {
			fit.ParamFile = stem + ".param"
		}
		if strings.TrimSpace(fit.FitFile) == "" && stem != "" {
			fit.FitFile = stem + ".fit"
		}
		fit.DataFile = strings.TrimSpace(fit.DataFile)
		fit.ParamFile = strings.TrimSpace(fit.ParamFile)
		fit.FitFile = strings.TrimSpace(fit.FitFile)
		p.Fit = &fit
	}
	if len(p.Directives) > 0 {
		lines := make([]string, 0, len(p.Directives))
		for _, line := range p.Directives {
			lines = append(lines, strings.TrimSpace(line))
		}
		p.Directives = lines
	} else {
		p.Directives = nil
	}
}

// From starts from an existing set instead of Defaults.
func From(p ParameterSet) Option {
	return func(b *builder) {
		b.set = p
		if p.Fit != nil {
			fit := *p.Fit
			b.set.Fit = &fit
		}
		if p.Directives != nil {
			b.set.Directives = append([]string(nil), p.Directives...)
		}
	}
}

func WithTask(task int) Option {
	return func(b *builder) { b.set.Task = task }
}

func WithRing(deg int) Option {
	return func(b *builder) { b.set.Ring = deg }
}

func WithSumRatio(sum, ratio float64) Option {
	return func(b *builder) { b.set.Radii = SumRatio{Sum: sum, Ratio: ratio} }
}

// WithDirectRadii switches the radii pair to rA and rB.
func WithDirectRadii(rA, rB float64) Option {
	return func(b *builder) { b.set.Radii = DirectRadii{RA: rA, RB: rB} }
}

func WithInclination(deg float64) Option {
	return func(b *builder) { b.set.Inclination = deg }
}

func WithMassRatio(q float64) Option {
	return func(b *builder) { b.set.MassRatio = MassRatio{Q: q} }
}

// WithSphericalStars writes q negated so the tool models both stars as spheres.
func WithSphericalStars(q float64) Option {
	return func(b *builder) { b.set.MassRatio = MassRatio{Q: q, Spherical: true} }
}

func WithEccentricityVector(ecosw, esinw float64) Option {
	return func(b *builder) { b.set.Eccentricity = EccentricityVector{ECosW: ecosw, ESinW: esinw} }
}

// WithEccentricityOmega switches the eccentricity pair to e and omega (degrees).
func WithEccentricityOmega(e, omega float64) Option {
	return func(b *builder) { b.set.Eccentricity = EccentricityOmega{E: e, Omega: omega} }
}

func WithGravityDarkening(a, bExp float64) Option {
	return func(b *builder) {
		b.set.GravA = a
		b.set.GravB = bExp
	}
}

func WithSurfaceBrightnessRatio(j float64) Option {
	return func(b *builder) { b.set.J = j }
}

func WithThirdLight(l3 float64) Option {
	return func(b *builder) { b.set.L3 = l3 }
}

func WithLimbDarkeningA(law LDLaw, c1, c2 float64) Option {
	return func(b *builder) { b.set.LDA = LimbDarkening{Law: law, Coeff1: c1, Coeff2: c2} }
}

func WithLimbDarkeningB(law LDLaw, c1, c2 float64) Option {
	return func(b *builder) {
		b.set.LDB = LimbDarkening{Law: law, Coeff1: c1, Coeff2: c2}
		b.set.LDBSameAsA = false
	}
}

// WithLimbDarkeningBSameAsA writes "same" for LDB; LDB is copied from the final LDA.
func WithLimbDarkeningBSameAsA() Option {
	return func(b *builder) { b.set.LDBSameAsA = true }
}

// WithReflection sets raw reflection values; values at or below
// AutoReflection select automatic computation.
func WithReflection(a, bCoeff float64) Option {
	return func(b *builder) {
		b.set.ReflA = ReflectionFromValue(a)
		b.set.ReflB = ReflectionFromValue(bCoeff)
		b.autoRefl = false
	}
}

// WithAutoReflection asks the tool to compute both reflection coefficients.
// Only the model task honors it; fitting tasks keep their values.
func WithAutoReflection() Option {
	return func(b *builder) { b.autoRefl = true }
}

func WithPhase(phase float64) Option {
	return func(b *builder) { b.set.PhasePrimary = phase }
}

func WithLightScale(mag float64) Option {
	return func(b *builder) { b.set.LightScale = mag }
}

// WithFit attaches the fitting block. Empty param/fit file names are
// derived from the output file stem.
func WithFit(fit FitSettings) Option {
	return func(b *builder) { b.set.Fit = &fit }
}

// WithoutFit drops the fitting block, e.g. when turning a fit into a model run.
func WithoutFit() Option {
	return func(b *builder) { b.set.Fit = nil }
}

func WithOutFile(name string) Option {
	return func(b *builder) { b.set.OutFile = name }
}

// WithDirectives appends free-form lines written after the last parameter line.
func WithDirectives(lines ...string) Option {
	return func(b *builder) { b.set.Directives = append(b.set.Directives, lines...) }
}
