package infile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/ebopctl/internal/params"
	"github.com/rs/zerolog/log"
)

const maxLineBytes = 1 << 20

// record is one significant (non-blank, non-comment) source line.
type record struct {
	line   int
	text   string
	tokens []string
}

// Read decodes a whole "in" file from r.
func Read(r io.Reader) (params.ParameterSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return params.ParameterSet{}, fmt.Errorf("infile: read: %w", err)
	}
	return Decode(data)
}

// Decode parses data into a validated ParameterSet. It returns either a
// complete set or a *ParseError; never a partial set.
func Decode(data []byte) (params.ParameterSet, error) {
	records, err := significantLines(data)
	if err != nil {
		return params.ParameterSet{}, err
	}
	if len(records) == 0 {
		return params.ParameterSet{}, &ParseError{Field: "task", Err: ErrTooFewLines}
	}

	first := records[0]
	task, err := parseInt(first.tokens[0])
	if err != nil {
		return params.ParameterSet{}, &ParseError{Line: first.line, Field: "task", Err: err}
	}
	if task < params.MinTask || task > params.MaxTask {
		return params.ParameterSet{}, &ParseError{
			Line:  first.line,
			Field: "task",
			Err: params.ValidationError{
				Field: "task",
				Rule:  fmt.Sprintf("must be in [%d,%d], got %d", params.MinTask, params.MaxTask, task),
			},
		}
	}

	layout := layoutFor(task)
	if len(records) < len(layout) {
		return params.ParameterSet{}, &ParseError{
			Line:  records[len(records)-1].line,
			Field: layout[len(records)].fields[0],
			Err:   fmt.Errorf("%w: need %d, got %d", ErrTooFewLines, len(layout), len(records)),
		}
	}

	d := &decoder{
		set:       params.ParameterSet{Task: task},
		fieldLine: make(map[string]int),
	}
	if params.UsesFitBlock(task) {
		d.set.Fit = &params.FitSettings{}
	}
	for i, spec := range layout {
		rec := records[i]
		if len(rec.tokens) < spec.tokens() {
			return params.ParameterSet{}, &ParseError{
				Line:  rec.line,
				Field: spec.fields[len(rec.tokens)],
				Err:   ErrTooFewTokens,
			}
		}
		for _, f := range spec.fields {
			if f != "" {
				d.fieldLine[f] = rec.line
			}
		}
		if err := d.decodeLine(spec, rec); err != nil {
			return params.ParameterSet{}, err
		}
	}
	for i, rec := range records[len(layout):] {
		d.fieldLine[fmt.Sprintf("directives[%d]", i)] = rec.line
		d.set.Directives = append(d.set.Directives, rec.text)
	}

	if d.set.LDBSameAsA {
		d.set.LDB = d.set.LDA
	}
	if err := checkStrings(d.set); err != nil {
		var ee *EncodingError
		if errors.As(err, &ee) {
			return params.ParameterSet{}, &ParseError{Line: d.lineOf(ee.Field), Field: ee.Field, Err: ee.Err}
		}
		return params.ParameterSet{}, err
	}
	if err := d.set.Validate(); err != nil {
		var ve params.ValidationError
		if errors.As(err, &ve) {
			return params.ParameterSet{}, &ParseError{Line: d.lineOf(ve.Field), Field: ve.Field, Err: err}
		}
		return params.ParameterSet{}, err
	}

	log.Debug().
		Int("task", task).
		Int("lines", len(records)).
		Int("directives", len(d.set.Directives)).
		Str("radii", d.set.Radii.Mode()).
		Str("eccentricity", d.set.Eccentricity.Mode()).
		Msg("infile.Decode")
	return d.set, nil
}

func significantLines(data []byte) ([]record, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	var out []record
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, record{line: n, text: text, tokens: strings.Fields(text)})
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Line: n + 1, Field: "line", Err: err}
	}
	return out, nil
}

type decoder struct {
	set       params.ParameterSet
	fieldLine map[string]int
}

// Validation names some fields by their variant (rA, e, ...); map them back
// to the wire field that carried them.
var fieldAliases = map[string]string{
	"rA":    "rA_plus_rB",
	"rB":    "k",
	"e":     "ecosw",
	"omega": "esinw",
	"fit":   "period",
}

func (d *decoder) lineOf(field string) int {
	if line, ok := d.fieldLine[field]; ok {
		return line
	}
	if alias, ok := fieldAliases[field]; ok {
		return d.fieldLine[alias]
	}
	return 0
}

func (d *decoder) number(rec record, idx int, field string) (float64, error) {
	v, err := parseFloat(rec.tokens[idx])
	if err != nil {
		return 0, &ParseError{Line: rec.line, Field: field, Err: err}
	}
	return v, nil
}

func (d *decoder) floats(rec record, spec lineSpec) (float64, float64, error) {
	a, err := d.number(rec, 0, spec.fields[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := d.number(rec, 1, spec.fields[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (d *decoder) integer(rec record, idx int, field string) (int, error) {
	v, err := parseInt(rec.tokens[idx])
	if err != nil {
		return 0, &ParseError{Line: rec.line, Field: field, Err: err}
	}
	return v, nil
}

func (d *decoder) law(rec record, idx int, field string) (params.LDLaw, error) {
	law, err := params.ParseLDLaw(rec.tokens[idx])
	if err != nil {
		return "", &ParseError{Line: rec.line, Field: field, Err: err}
	}
	return law, nil
}

func (d *decoder) decodeLine(spec lineSpec, rec record) error {
	p := &d.set
	switch spec.key {
	case lineTaskRing:
		ring, err := d.integer(rec, 1, "ring")
		if err != nil {
			return err
		}
		p.Ring = ring
	case lineRadii:
		a, b, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		p.Radii = decodeRadii(a, b)
	case lineIncQ:
		inc, q, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		p.Inclination = inc
		p.MassRatio = decodeMassRatio(q)
	case lineEcc:
		a, b, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		ecc, err := decodeEccentricity(rec.tokens[0], a, b)
		if err != nil {
			return &ParseError{Line: rec.line, Field: "ecosw", Err: err}
		}
		p.Eccentricity = ecc
	case lineGrav:
		a, b, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		p.GravA, p.GravB = a, b
	case lineJL3:
		a, b, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		p.J, p.L3 = a, b
	case lineLDLaw:
		if strings.EqualFold(rec.tokens[0], params.SameToken) {
			return &ParseError{Line: rec.line, Field: "LDA", Err: ErrSameOnLDA}
		}
		lawA, err := d.law(rec, 0, "LDA")
		if err != nil {
			return err
		}
		p.LDA.Law = lawA
		if strings.EqualFold(rec.tokens[1], params.SameToken) {
			p.LDBSameAsA = true
			return nil
		}
		lawB, err := d.law(rec, 1, "LDB")
		if err != nil {
			return err
		}
		p.LDB.Law = lawB
	case lineLDCoeff1, lineLDCoeff2:
		a, err := d.number(rec, 0, spec.fields[0])
		if err != nil {
			return err
		}
		// Coefficients after "same" are ignored; LDB is copied from LDA later.
		var b float64
		if !p.LDBSameAsA {
			if b, err = d.number(rec, 1, spec.fields[1]); err != nil {
				return err
			}
		}
		if spec.key == lineLDCoeff1 {
			p.LDA.Coeff1, p.LDB.Coeff1 = a, b
		} else {
			p.LDA.Coeff2, p.LDB.Coeff2 = a, b
		}
	case lineRefl:
		a, b, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		p.ReflA = params.ReflectionFromValue(a)
		p.ReflB = params.ReflectionFromValue(b)
	case linePhaseScale:
		a, b, err := d.floats(rec, spec)
		if err != nil {
			return err
		}
		p.PhasePrimary, p.LightScale = a, b
	case linePeriod:
		v, err := d.number(rec, 0, "period")
		if err != nil {
			return err
		}
		p.Fit.Period = v
	case lineEpoch:
		v, err := d.number(rec, 0, "primary_epoch")
		if err != nil {
			return err
		}
		p.Fit.PrimaryEpoch = v
	case lineDataFile:
		p.Fit.DataFile = rec.tokens[0]
	case lineParamFile:
		p.Fit.ParamFile = rec.tokens[0]
	case lineFitFile:
		p.Fit.FitFile = rec.tokens[0]
	case lineOutFile:
		p.OutFile = rec.tokens[0]
	default:
		return d.decodeAdjust(spec, rec)
	}
	return nil
}

func (d *decoder) decodeAdjust(spec lineSpec, rec record) error {
	for i, key := range adjustLineKeys {
		if key != spec.key {
			continue
		}
		for j := 0; j < 2; j++ {
			v, err := d.integer(rec, j, spec.fields[j])
			if err != nil {
				return err
			}
			if err := d.set.Fit.Adjust.Set(params.AdjustNames[2*i+j], v); err != nil {
				return &ParseError{Line: rec.line, Field: spec.fields[j], Err: err}
			}
		}
		return nil
	}
	return &ParseError{Line: rec.line, Field: spec.key, Err: fmt.Errorf("infile: no decoder for line %q", spec.key)}
}
