package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/ebopctl/internal/params"
	gotoml "github.com/pelletier/go-toml/v2"
)

// Build turns a job into a validated ParameterSet.
func Build(job JobFile) (params.ParameterSet, error) {
	opts, err := job.Options()
	if err != nil {
		return params.ParameterSet{}, err
	}
	return params.New(opts...)
}

// Options maps the job onto params options. Pairs that are only partly set
// keep the default for the missing half.
func (j JobFile) Options() ([]params.Option, error) {
	def := params.Defaults()
	var opts []params.Option

	if j.Task != nil {
		opts = append(opts, params.WithTask(*j.Task))
	}
	if j.Ring != nil {
		opts = append(opts, params.WithRing(*j.Ring))
	}

	if !j.FitRAAndRB && (j.RA != nil || j.RB != nil) {
		return nil, fmt.Errorf("rA and rB need fit_rA_and_rB = true")
	}
	if !j.FitEAndOmega && (j.E != nil || j.Omega != nil) {
		return nil, fmt.Errorf("e and omega need fit_e_and_omega = true")
	}

	switch {
	case j.FitRAAndRB:
		if j.RA == nil || j.RB == nil {
			return nil, fmt.Errorf("fit_rA_and_rB requires rA and rB")
		}
		opts = append(opts, params.WithDirectRadii(*j.RA, *j.RB))
	case j.RAPlusRB != nil || j.K != nil:
		sr := def.Radii.(params.SumRatio)
		opts = append(opts, params.WithSumRatio(orFloat(j.RAPlusRB, sr.Sum), orFloat(j.K, sr.Ratio)))
	}

	if j.Inc != nil {
		opts = append(opts, params.WithInclination(*j.Inc))
	}
	if j.QPhot != nil || j.Spherical {
		q := orFloat(j.QPhot, def.MassRatio.Q)
		if q < 0 {
			return nil, fmt.Errorf("qphot must be non-negative; set spherical = true for spherical stars")
		}
		if j.Spherical {
			opts = append(opts, params.WithSphericalStars(q))
		} else {
			opts = append(opts, params.WithMassRatio(q))
		}
	}

	switch {
	case j.FitEAndOmega:
		if j.E == nil || j.Omega == nil {
			return nil, fmt.Errorf("fit_e_and_omega requires e and omega")
		}
		opts = append(opts, params.WithEccentricityOmega(*j.E, *j.Omega))
	case j.ECosW != nil || j.ESinW != nil:
		opts = append(opts, params.WithEccentricityVector(orFloat(j.ECosW, 0), orFloat(j.ESinW, 0)))
	}

	if j.GravA != nil || j.GravB != nil {
		opts = append(opts, params.WithGravityDarkening(orFloat(j.GravA, def.GravA), orFloat(j.GravB, def.GravB)))
	}
	if j.J != nil {
		opts = append(opts, params.WithSurfaceBrightnessRatio(*j.J))
	}
	if j.L3 != nil {
		opts = append(opts, params.WithThirdLight(*j.L3))
	}

	ldOpts, err := j.limbDarkening(def)
	if err != nil {
		return nil, err
	}
	opts = append(opts, ldOpts...)

	if j.ReflA != nil || j.ReflB != nil {
		opts = append(opts, params.WithReflection(
			orFloat(j.ReflA, params.ReflectionValue(def.ReflA)),
			orFloat(j.ReflB, params.ReflectionValue(def.ReflB)),
		))
	}
	if j.CalcReflCoeffs {
		opts = append(opts, params.WithAutoReflection())
	}
	if j.Phase != nil {
		opts = append(opts, params.WithPhase(*j.Phase))
	}
	if j.LightScale != nil {
		opts = append(opts, params.WithLightScale(*j.LightScale))
	}
	if j.OutFile != nil {
		opts = append(opts, params.WithOutFile(*j.OutFile))
	}
	if j.Fit != nil {
		fit, err := j.Fit.settings()
		if err != nil {
			return nil, err
		}
		opts = append(opts, params.WithFit(fit))
	}
	if len(j.Directives) > 0 {
		opts = append(opts, params.WithDirectives(j.Directives...))
	}
	return opts, nil
}

func (j JobFile) limbDarkening(def params.ParameterSet) ([]params.Option, error) {
	var opts []params.Option
	if j.LDA != nil || j.LDA1 != nil || j.LDA2 != nil {
		law := def.LDA.Law
		if j.LDA != nil {
			if strings.EqualFold(strings.TrimSpace(*j.LDA), params.SameToken) {
				return nil, fmt.Errorf("LDA: %q is only valid for LDB", params.SameToken)
			}
			parsed, err := params.ParseLDLaw(*j.LDA)
			if err != nil {
				return nil, fmt.Errorf("LDA: %w", err)
			}
			law = parsed
		}
		opts = append(opts, params.WithLimbDarkeningA(law, orFloat(j.LDA1, def.LDA.Coeff1), orFloat(j.LDA2, def.LDA.Coeff2)))
	}
	if j.LDB != nil && strings.EqualFold(strings.TrimSpace(*j.LDB), params.SameToken) {
		return append(opts, params.WithLimbDarkeningBSameAsA()), nil
	}
	if j.LDB != nil || j.LDB1 != nil || j.LDB2 != nil {
		law := def.LDB.Law
		if j.LDB != nil {
			parsed, err := params.ParseLDLaw(*j.LDB)
			if err != nil {
				return nil, fmt.Errorf("LDB: %w", err)
			}
			law = parsed
		}
		opts = append(opts, params.WithLimbDarkeningB(law, orFloat(j.LDB1, def.LDB.Coeff1), orFloat(j.LDB2, def.LDB.Coeff2)))
	}
	return opts, nil
}

func (f FitJob) settings() (params.FitSettings, error) {
	if f.Period == nil {
		return params.FitSettings{}, fmt.Errorf("fit.period is required")
	}
	fit := params.FitSettings{
		Period:       *f.Period,
		PrimaryEpoch: orFloat(f.PrimaryEpoch, 0),
		Adjust:       params.DefaultAdjust(),
		DataFile:     orString(f.DataFile, ""),
		ParamFile:    orString(f.ParamFile, ""),
		FitFile:      orString(f.FitFile, ""),
	}
	for name, v := range f.Adjust {
		if err := fit.Adjust.Set(name, v); err != nil {
			return params.FitSettings{}, fmt.Errorf("fit.adjust: %w", err)
		}
	}
	return fit, nil
}

// FromParameterSet is the inverse of Build: every field is written explicitly
// so the job does not depend on future default changes.
func FromParameterSet(p params.ParameterSet) JobFile {
	job := JobFile{
		Task:       ptr(p.Task),
		Ring:       ptr(p.Ring),
		Inc:        ptr(p.Inclination),
		QPhot:      ptr(p.MassRatio.Q),
		Spherical:  p.MassRatio.Spherical,
		GravA:      ptr(p.GravA),
		GravB:      ptr(p.GravB),
		J:          ptr(p.J),
		L3:         ptr(p.L3),
		LDA:        ptr(string(p.LDA.Law)),
		LDA1:       ptr(p.LDA.Coeff1),
		LDA2:       ptr(p.LDA.Coeff2),
		ReflA:      ptr(params.ReflectionValue(p.ReflA)),
		ReflB:      ptr(params.ReflectionValue(p.ReflB)),
		Phase:      ptr(p.PhasePrimary),
		LightScale: ptr(p.LightScale),
		OutFile:    ptr(p.OutFile),
		Directives: append([]string(nil), p.Directives...),
	}
	switch r := p.Radii.(type) {
	case params.DirectRadii:
		job.FitRAAndRB = true
		job.RA, job.RB = ptr(r.RA), ptr(r.RB)
	case params.SumRatio:
		job.RAPlusRB, job.K = ptr(r.Sum), ptr(r.Ratio)
	}
	switch e := p.Eccentricity.(type) {
	case params.EccentricityOmega:
		job.FitEAndOmega = true
		job.E, job.Omega = ptr(e.E), ptr(e.Omega)
	case params.EccentricityVector:
		job.ECosW, job.ESinW = ptr(e.ECosW), ptr(e.ESinW)
	}
	if p.LDBSameAsA {
		job.LDB = ptr(params.SameToken)
	} else {
		job.LDB = ptr(string(p.LDB.Law))
		job.LDB1, job.LDB2 = ptr(p.LDB.Coeff1), ptr(p.LDB.Coeff2)
	}
	if p.Fit != nil {
		adjust := make(map[string]int, len(params.AdjustNames))
		for i, v := range p.Fit.Adjust.Values() {
			adjust[params.AdjustNames[i]] = v
		}
		job.Fit = &FitJob{
			Period:       ptr(p.Fit.Period),
			PrimaryEpoch: ptr(p.Fit.PrimaryEpoch),
			DataFile:     ptr(p.Fit.DataFile),
			ParamFile:    ptr(p.Fit.ParamFile),
			FitFile:      ptr(p.Fit.FitFile),
			Adjust:       adjust,
		}
	}
	return job
}

// Export renders p as a TOML job file.
func Export(p params.ParameterSet) ([]byte, error) {
	data, err := gotoml.Marshal(FromParameterSet(p))
	if err != nil {
		return nil, fmt.Errorf("job export failed: %w", err)
	}
	return data, nil
}

func ptr[T any](v T) *T {
	return &v
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orString(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
