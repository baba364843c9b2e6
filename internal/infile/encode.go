package infile

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/ebopctl/internal/params"
	"github.com/rs/zerolog/log"
)

// Encode lays p out as an "in" file. File names are trimmed, then string
// fields are checked for layout safety (EncodingError) and p is validated
// (params.ValidationError).
func Encode(p params.ParameterSet) ([]byte, error) {
	p = trimFileNames(p)
	if err := checkStrings(p); err != nil {
		log.Debug().Err(err).Msg("infile.Encode rejected string field")
		return nil, err
	}
	if err := p.Validate(); err != nil {
		log.Debug().Err(err).Msg("infile.Encode validation failed")
		return nil, err
	}
	desc, err := descriptions()
	if err != nil {
		return nil, err
	}

	values := lineValues(p)
	var buf bytes.Buffer
	for _, spec := range layoutFor(p.Task) {
		writeLine(&buf, values[spec.key], desc[spec.key])
	}
	for _, line := range p.Directives {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	log.Debug().
		Int("task", p.Task).
		Str("radii", p.Radii.Mode()).
		Str("eccentricity", p.Eccentricity.Mode()).
		Int("bytes", buf.Len()).
		Msg("infile.Encode")
	return buf.Bytes(), nil
}

// Write encodes p and writes it with a single call; nothing is written on error.
func Write(w io.Writer, p params.ParameterSet) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("infile: write: %w", err)
	}
	return nil
}

// trimFileNames returns p with surrounding whitespace removed from its file
// names. The fit block is copied so the caller's set is not modified.
func trimFileNames(p params.ParameterSet) params.ParameterSet {
	p.OutFile = strings.TrimSpace(p.OutFile)
	if p.Fit != nil {
		fit := *p.Fit
		fit.DataFile = strings.TrimSpace(fit.DataFile)
		fit.ParamFile = strings.TrimSpace(fit.ParamFile)
		fit.FitFile = strings.TrimSpace(fit.FitFile)
		p.Fit = &fit
	}
	return p
}

func checkStrings(p params.ParameterSet) error {
	if err := checkToken("out_file", p.OutFile, MaxFileNameLen); err != nil {
		return err
	}
	if p.Fit != nil {
		for _, f := range []struct {
			field string
			v     string
		}{
			{"data_file", p.Fit.DataFile},
			{"param_file", p.Fit.ParamFile},
			{"fit_file", p.Fit.FitFile},
		} {
			if err := checkToken(f.field, f.v, MaxFileNameLen); err != nil {
				return err
			}
		}
	}
	for i, line := range p.Directives {
		field := fmt.Sprintf("directives[%d]", i)
		if strings.ContainsAny(line, "\r\n") {
			return &EncodingError{Field: field, Err: ErrLineBreak}
		}
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			return &EncodingError{Field: field, Err: ErrCommentLike}
		}
	}
	return nil
}

func lineValues(p params.ParameterSet) map[string][]string {
	ldb := lawToken(p.LDB.Law)
	if p.LDBSameAsA {
		ldb = params.SameToken
	}
	rA, rB := radiiTokens(p.Radii)
	e1, e2 := eccentricityTokens(p.Eccentricity)

	values := map[string][]string{
		lineTaskRing:   {formatInt(p.Task), formatInt(p.Ring)},
		lineRadii:      {rA, rB},
		lineIncQ:       {formatFloat(p.Inclination), massRatioToken(p.MassRatio)},
		lineEcc:        {e1, e2},
		lineGrav:       {formatFloat(p.GravA), formatFloat(p.GravB)},
		lineJL3:        {formatFloat(p.J), formatFloat(p.L3)},
		lineLDLaw:      {lawToken(p.LDA.Law), ldb},
		lineLDCoeff1:   {formatFloat(p.LDA.Coeff1), formatFloat(p.LDB.Coeff1)},
		lineLDCoeff2:   {formatFloat(p.LDA.Coeff2), formatFloat(p.LDB.Coeff2)},
		lineRefl:       {reflectionToken(p.ReflA), reflectionToken(p.ReflB)},
		linePhaseScale: {formatFloat(p.PhasePrimary), formatFloat(p.LightScale)},
		lineOutFile:    {p.OutFile},
	}
	if p.Fit != nil {
		values[linePeriod] = []string{formatFloat(p.Fit.Period)}
		values[lineEpoch] = []string{formatFloat(p.Fit.PrimaryEpoch)}
		flags := p.Fit.Adjust.Values()
		for i, key := range adjustLineKeys {
			values[key] = []string{formatInt(flags[2*i]), formatInt(flags[2*i+1])}
		}
		values[lineDataFile] = []string{p.Fit.DataFile}
		values[lineParamFile] = []string{p.Fit.ParamFile}
		values[lineFitFile] = []string{p.Fit.FitFile}
	}
	return values
}

func writeLine(buf *bytes.Buffer, values []string, d description) {
	line := fmt.Sprintf(" %-*s %-*s %s", valueWidth, strings.Join(values, "  "), leftWidth, d.Left, d.Right)
	buf.WriteString(strings.TrimRight(line, " "))
	buf.WriteByte('\n')
}
