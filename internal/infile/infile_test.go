package infile

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/danmuck/ebopctl/internal/params"
	"github.com/danmuck/ebopctl/internal/testutil/testlog"
)

const sample = `# JKTEBOP task 2 example
 2  2                 Task to do (from 2 to 9)   Integ. ring size (deg)
 0.3  0.5             Sum of the radii           Ratio of the radii

 90.0  0.5            Orbital inclination (deg)  Mass ratio of the system
 0.0  0.0             ecosw or eccentricity      esinw or periastron long
   # comments are allowed anywhere
 0.0  0.0             Gravity darkening (star A) Grav darkening (star B)
 0.8  0.0             Surface brightness ratio   Amount of third light
 QUAD  quad           LD law type for star A     LD law type for star B
 0.25  0.25           LD star A (coefficient 1)  LD star B (coefficient 1)
 0.22  0.22           LD star A (coefficient 2)  LD star B (coefficient 2)
 0.0  0.0             Reflection effect star A   Reflection effect star B
 0.0  0.0             Phase of primary eclipse   Light scale factor (mag)
 test.out             Output file name (continuous character string)
`

// sampleLine replaces the sample line containing key with line.
func sampleLine(key, line string) []byte {
	lines := strings.Split(sample, "\n")
	for i, l := range lines {
		if strings.Contains(l, key) {
			lines[i] = line
			break
		}
	}
	return []byte(strings.Join(lines, "\n"))
}

func mustNew(t *testing.T, opts ...params.Option) params.ParameterSet {
	t.Helper()
	p, err := params.New(opts...)
	if err != nil {
		t.Fatalf("build params: %v", err)
	}
	return p
}

func TestDecodeSampleMatchesDefaults(t *testing.T) {
	testlog.Start(t)
	got, err := Decode([]byte(sample))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := params.Defaults()
	want.OutFile = "test.out"
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode mismatch:\n got=%#v\nwant=%#v", got, want)
	}
}

func TestRoundTripEncodeDecode(t *testing.T) {
	testlog.Start(t)
	sets := map[string]params.ParameterSet{
		"defaults": mustNew(t),
		"overloaded": mustNew(t,
			params.WithDirectRadii(0.15, 0.08),
			params.WithSphericalStars(0.7),
			params.WithEccentricityOmega(0.123456789012345, 271.25),
			params.WithLimbDarkeningA(params.LawPower2, 0.61, 0.53),
			params.WithLimbDarkeningBSameAsA(),
			params.WithAutoReflection(),
			params.WithPhase(0.0012),
			params.WithLightScale(-0.25),
			params.WithDirectives("chif", "sine 1 1 2.5"),
			params.WithOutFile("overloaded.out"),
		),
		"fit": mustNew(t,
			params.WithTask(params.TaskFit),
			params.WithRing(3),
			params.WithEccentricityVector(0.0051, -0.0125),
			params.WithLimbDarkeningB(params.LawLinear, 0.4, 0),
			params.WithReflection(-100, 0.05),
			params.WithOutFile("cw_eri.out"),
			params.WithFit(params.FitSettings{
				Period:       2.7283707,
				PrimaryEpoch: 59876.54321,
				Adjust:       params.AdjustFlags{ECosW: 1, ESinW: 1, L3: 1, LDA1: 1, LDB1: 1, ReflA: -1},
				DataFile:     "cw_eri_s0004.dat",
			}),
		),
	}
	for name, p := range sets {
		text, err := Encode(p)
		if err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		got, err := Decode(text)
		if err != nil {
			t.Fatalf("%s: decode: %v\n%s", name, err, text)
		}
		if !reflect.DeepEqual(got, p) {
			t.Fatalf("%s: round-trip mismatch:\n got=%#v\nwant=%#v", name, got, p)
		}
		again, err := Encode(got)
		if err != nil {
			t.Fatalf("%s: re-encode: %v", name, err)
		}
		if !bytes.Equal(text, again) {
			t.Fatalf("%s: re-encode not stable:\n%s\n---\n%s", name, text, again)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	testlog.Start(t)
	text, err := Encode(mustNew(t, params.WithOutFile("layout.out")))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	if len(lines) != len(baseLines)+1 {
		t.Fatalf("expected %d lines, got %d", len(baseLines)+1, len(lines))
	}
	if f := strings.Fields(lines[0]); f[0] != "2" || f[1] != "2" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "Task to do (from 2 to 9)") || !strings.HasSuffix(lines[0], "Integ. ring size (deg)") {
		t.Fatalf("description columns missing: %q", lines[0])
	}
	if f := strings.Fields(lines[6]); f[0] != "quad" || f[1] != "quad" {
		t.Fatalf("unexpected law line: %q", lines[6])
	}
	if f := strings.Fields(lines[len(lines)-1]); f[0] != "layout.out" {
		t.Fatalf("unexpected out file line: %q", lines[len(lines)-1])
	}
}

func TestEncodeFitLayout(t *testing.T) {
	testlog.Start(t)
	p := mustNew(t,
		params.WithTask(params.TaskFit),
		params.WithOutFile("fit.out"),
		params.WithFit(params.FitSettings{Period: 2.5, PrimaryEpoch: 59876.54321, DataFile: "lc.dat", Adjust: params.DefaultAdjust()}),
	)
	text, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(text), "\n"), "\n")
	if len(lines) != len(layoutFor(params.TaskFit)) {
		t.Fatalf("expected %d lines, got %d", len(layoutFor(params.TaskFit)), len(lines))
	}
	want := []string{"lc.dat", "fit.param", "fit.out", "fit.fit"}
	for i, name := range want {
		line := lines[len(lines)-len(want)+i]
		if strings.Fields(line)[0] != name {
			t.Fatalf("line %q: expected %s", line, name)
		}
	}
	if strings.Fields(lines[11])[0] != "2.5" || strings.Fields(lines[12])[0] != "59876.54321" {
		t.Fatalf("unexpected period/epoch lines: %q %q", lines[11], lines[12])
	}
}

func TestDecodeEccentricityVector(t *testing.T) {
	testlog.Start(t)
	p, err := Decode(sampleLine("ecosw or eccentricity", " 0.3  0.1   ecosw or eccentricity"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := p.Eccentricity.(params.EccentricityVector)
	if !ok || v.ECosW != 0.3 || v.ESinW != 0.1 {
		t.Fatalf("unexpected eccentricity: %#v", p.Eccentricity)
	}
}

func TestDecodeEccentricityLiteral(t *testing.T) {
	testlog.Start(t)
	p, err := Decode(sampleLine("ecosw or eccentricity", " 10.2  45.0   ecosw or eccentricity"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := p.Eccentricity.(params.EccentricityOmega)
	if !ok || v.E != 0.2 || v.Omega != 45 {
		t.Fatalf("unexpected eccentricity: %#v", p.Eccentricity)
	}
	text, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(text), " 10.2  45.0 ") {
		t.Fatalf("literal form not preserved:\n%s", text)
	}
}

func TestDecodeNegativeLiteralEccentricity(t *testing.T) {
	testlog.Start(t)
	_, err := Decode(sampleLine("ecosw or eccentricity", " -10.2  45.0"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Field != "ecosw" || pe.Line != 6 {
		t.Fatalf("expected ecosw ParseError on line 6, got %v", err)
	}
	if !errors.Is(err, ErrNegativeE) {
		t.Fatalf("expected ErrNegativeE, got %v", err)
	}
}

func TestDecodeDirectRadii(t *testing.T) {
	testlog.Start(t)
	p, err := Decode(sampleLine("Sum of the radii", " -0.15  0.08   Sum of the radii"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, ok := p.Radii.(params.DirectRadii)
	if !ok || r.RA != 0.15 || r.RB != 0.08 {
		t.Fatalf("unexpected radii: %#v", p.Radii)
	}
	text, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(text), " -0.15  0.08 ") {
		t.Fatalf("direct radii sign not preserved:\n%s", text)
	}
}

func TestDecodeSphericalStarsKeepsSign(t *testing.T) {
	testlog.Start(t)
	p, err := Decode(sampleLine("Orbital inclination", " 90.0  -0.5   Orbital inclination (deg)"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.MassRatio.Spherical || p.MassRatio.Q != 0.5 {
		t.Fatalf("unexpected mass ratio: %+v", p.MassRatio)
	}
	text, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(text), " 90.0  -0.5 ") {
		t.Fatalf("spherical sign not preserved:\n%s", text)
	}
}

func TestDecodeReflectionClassification(t *testing.T) {
	testlog.Start(t)
	p, err := Decode(sampleLine("Reflection effect", " -100  0.05"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.ReflA.Auto() {
		t.Fatalf("reflA should be auto: %#v", p.ReflA)
	}
	if c, ok := p.ReflB.(params.ReflectionCoefficient); !ok || c.Value != 0.05 {
		t.Fatalf("reflB should be explicit 0.05: %#v", p.ReflB)
	}

	p, err = Decode(sampleLine("Reflection effect", " -250.5  -99.9"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a, ok := p.ReflA.(params.ReflectionAuto); !ok || a.Sentinel != -250.5 {
		t.Fatalf("reflA sentinel not kept: %#v", p.ReflA)
	}
	if p.ReflB.Auto() {
		t.Fatalf("-99.9 should be explicit: %#v", p.ReflB)
	}
}

func TestDecodeSameIgnoresLiteralCoefficients(t *testing.T) {
	testlog.Start(t)
	data := sampleLine("LD law type", " sqrt  SAME   LD law type for star A")
	data = bytes.Replace(data, []byte(" 0.25  0.25 "), []byte(" 0.31  0.99 "), 1)
	data = bytes.Replace(data, []byte(" 0.22  0.22 "), []byte(" 0.42  junk "), 1)
	if !bytes.Contains(data, []byte(" 0.42  junk ")) {
		t.Fatalf("fixture not rewritten")
	}
	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.LDBSameAsA {
		t.Fatalf("expected LDB same as LDA")
	}
	want := params.LimbDarkening{Law: params.LawSquareRoot, Coeff1: 0.31, Coeff2: 0.42}
	if p.LDA != want || p.LDB != want {
		t.Fatalf("unexpected LD: A=%+v B=%+v", p.LDA, p.LDB)
	}
}

func TestDecodeUnknownLaw(t *testing.T) {
	testlog.Start(t)
	_, err := Decode(sampleLine("LD law type", " quadd  quad   LD law type for star A"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Field != "LDA" || pe.Line != 10 {
		t.Fatalf("unexpected parse error: %+v", pe)
	}
	if !errors.Is(err, params.ErrUnknownLaw) {
		t.Fatalf("expected ErrUnknownLaw, got %v", err)
	}
	if !strings.Contains(err.Error(), "quadd") {
		t.Fatalf("error does not name token: %v", err)
	}
}

func TestDecodeSameOnLDA(t *testing.T) {
	testlog.Start(t)
	_, err := Decode(sampleLine("LD law type", " same  quad"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Field != "LDA" || !errors.Is(err, ErrSameOnLDA) {
		t.Fatalf("expected LDA same error, got %v", err)
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		data  []byte
		field string
		line  int
		want  error
	}{
		{"empty", []byte("# nothing\n\n"), "task", 0, ErrTooFewLines},
		{"truncated", []byte(strings.Join(strings.Split(sample, "\n")[:9], "\n")), "LDA", 9, ErrTooFewLines},
		{"bad task", sampleLine("Task to do", " two  2"), "task", 2, ErrBadInteger},
		{"one token", sampleLine("Sum of the radii", " 0.3"), "k", 3, ErrTooFewTokens},
		{"bad number", sampleLine("Surface brightness", " 0.8  x0.0"), "L3", 9, ErrBadNumber},
		{"nan", sampleLine("Orbital inclination", " NaN  0.5"), "inc", 5, ErrBadNumber},
	}
	for _, tc := range cases {
		_, err := Decode(tc.data)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected ParseError, got %v", tc.name, err)
		}
		if pe.Field != tc.field || pe.Line != tc.line {
			t.Fatalf("%s: unexpected location: %+v", tc.name, pe)
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDecodeSemanticViolationCarriesLine(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		data  []byte
		field string
		line  int
	}{
		{"task range", sampleLine("Task to do", " 12  2"), "task", 2},
		{"third light", sampleLine("Surface brightness", " 0.8  -0.1"), "L3", 9},
		{"radii sum", sampleLine("Sum of the radii", " 0.9  0.5"), "rA_plus_rB", 3},
		{"literal e", sampleLine("ecosw or eccentricity", " 11.5  45.0"), "e", 6},
	}
	for _, tc := range cases {
		_, err := Decode(tc.data)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected ParseError, got %v", tc.name, err)
		}
		var ve params.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected wrapped ValidationError, got %v", tc.name, err)
		}
		if pe.Field != tc.field || pe.Line != tc.line {
			t.Fatalf("%s: unexpected location: %+v", tc.name, pe)
		}
	}
}

func TestDecodeKeepsDirectives(t *testing.T) {
	testlog.Start(t)
	data := []byte(sample + "\n# appended\n  chif  \nsine  1 1 2.5\n")
	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(p.Directives, []string{"chif", "sine  1 1 2.5"}) {
		t.Fatalf("unexpected directives: %q", p.Directives)
	}
}

func TestEncodeRejectsUnsafeStrings(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name  string
		mod   func(p *params.ParameterSet)
		field string
		want  error
	}{
		{"newline", func(p *params.ParameterSet) { p.OutFile = "run\n1.out" }, "out_file", ErrLineBreak},
		{"space", func(p *params.ParameterSet) { p.OutFile = "run 1.out" }, "out_file", ErrWhitespace},
		{"long", func(p *params.ParameterSet) { p.OutFile = strings.Repeat("a", MaxFileNameLen+1) }, "out_file", ErrTooLong},
		{"comment out file", func(p *params.ParameterSet) { p.OutFile = "#run.out" }, "out_file", ErrCommentLike},
		{"comment data file", func(p *params.ParameterSet) {
			p.Task = params.TaskFit
			p.Fit = &params.FitSettings{Period: 1, DataFile: "#lc.dat", ParamFile: "a.param", FitFile: "a.fit"}
		}, "data_file", ErrCommentLike},
		{"directive newline", func(p *params.ParameterSet) { p.Directives = []string{"a\nb"} }, "directives[0]", ErrLineBreak},
		{"directive comment", func(p *params.ParameterSet) { p.Directives = []string{"#chif"} }, "directives[0]", ErrCommentLike},
	}
	for _, tc := range cases {
		p := params.Defaults()
		tc.mod(&p)
		_, err := Encode(p)
		var ee *EncodingError
		if !errors.As(err, &ee) || ee.Field != tc.field || !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected EncodingError(%s, %v), got %v", tc.name, tc.field, tc.want, err)
		}
	}
}

func TestEncodeTrimsFileNames(t *testing.T) {
	testlog.Start(t)
	p := params.Defaults()
	p.OutFile = "  run.out \t"
	text, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if p.OutFile != "  run.out \t" {
		t.Fatalf("caller's set modified: %q", p.OutFile)
	}
	got, err := Decode(text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OutFile != "run.out" {
		t.Fatalf("expected trimmed out file, got %q", got.OutFile)
	}
}

func TestDecodeRejectsOverlongFileName(t *testing.T) {
	testlog.Start(t)
	name := strings.Repeat("a", MaxFileNameLen+1)
	_, err := Decode(sampleLine("Output file name", " "+name+"  Output file name"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Field != "out_file" || pe.Line != 15 || !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected out_file ParseError at line 15 wrapping ErrTooLong, got %v", err)
	}

	name = strings.Repeat("a", MaxFileNameLen)
	p, err := Decode(sampleLine("Output file name", " "+name+"  Output file name"))
	if err != nil {
		t.Fatalf("decode %d-character name: %v", MaxFileNameLen, err)
	}
	if _, err := Encode(p); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
}

func TestEncodeValidationError(t *testing.T) {
	testlog.Start(t)
	p := params.Defaults()
	p.LDA.Law = "QUAD"
	_, err := Encode(p)
	var ve params.ValidationError
	if !errors.As(err, &ve) || ve.Field != "LDA" {
		t.Fatalf("expected LDA ValidationError, got %v", err)
	}
}

func TestWriteEmitsNothingOnError(t *testing.T) {
	testlog.Start(t)
	p := params.Defaults()
	p.Task = 11
	var buf bytes.Buffer
	if err := Write(&buf, p); err == nil {
		t.Fatalf("expected error")
	}
	if buf.Len() != 0 {
		t.Fatalf("partial output written: %q", buf.String())
	}
}

func TestReadDecodesStream(t *testing.T) {
	testlog.Start(t)
	p, err := Read(strings.NewReader(strings.ReplaceAll(sample, "\n", "\r\n")))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if p.OutFile != "test.out" {
		t.Fatalf("unexpected out file: %q", p.OutFile)
	}
}

func TestConcurrentCodec(t *testing.T) {
	testlog.Start(t)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(ring int) {
			defer wg.Done()
			p, err := params.New(params.WithRing(ring%params.MaxRing + 1))
			if err != nil {
				errs <- err
				return
			}
			text, err := Encode(p)
			if err != nil {
				errs <- err
				return
			}
			if _, err := Decode(text); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent codec: %v", err)
	}
}
