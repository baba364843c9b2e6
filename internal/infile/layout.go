package infile

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/ebopctl/internal/params"
)

// MaxFileNameLen is the width of the tool's file name fields.
const MaxFileNameLen = 50

const (
	valueWidth = 18
	leftWidth  = 27
)

// Line keys, in wire order.
const (
	lineTaskRing   = "task_ring"
	lineRadii      = "radii"
	lineIncQ       = "inc_qphot"
	lineEcc        = "ecc"
	lineGrav       = "grav"
	lineJL3        = "j_l3"
	lineLDLaw      = "ld_law"
	lineLDCoeff1   = "ld_coeff1"
	lineLDCoeff2   = "ld_coeff2"
	lineRefl       = "refl"
	linePhaseScale = "phase_scale"
	linePeriod     = "period"
	lineEpoch      = "epoch"
	lineDataFile   = "data_file"
	lineParamFile  = "param_file"
	lineOutFile    = "out_file"
	lineFitFile    = "fit_file"
)

// lineSpec is one required line. Single-token lines leave fields[1] empty.
type lineSpec struct {
	key    string
	fields [2]string
}

func (s lineSpec) tokens() int {
	if s.fields[1] == "" {
		return 1
	}
	return 2
}

var baseLines = []lineSpec{
	{lineTaskRing, [2]string{"task", "ring"}},
	{lineRadii, [2]string{"rA_plus_rB", "k"}},
	{lineIncQ, [2]string{"inc", "qphot"}},
	{lineEcc, [2]string{"ecosw", "esinw"}},
	{lineGrav, [2]string{"gravA", "gravB"}},
	{lineJL3, [2]string{"J", "L3"}},
	{lineLDLaw, [2]string{"LDA", "LDB"}},
	{lineLDCoeff1, [2]string{"LDA1", "LDB1"}},
	{lineLDCoeff2, [2]string{"LDA2", "LDB2"}},
	{lineRefl, [2]string{"reflA", "reflB"}},
	{linePhaseScale, [2]string{"phase", "scale"}},
}

var adjustLineKeys = []string{
	"adj_radii",
	"adj_inc_qphot",
	"adj_ecc",
	"adj_grav",
	"adj_j_l3",
	"adj_ld1",
	"adj_ld2",
	"adj_refl",
	"adj_phase_scale",
}

// layoutFor returns the required lines for task, in wire order.
func layoutFor(task int) []lineSpec {
	out := make([]lineSpec, 0, len(baseLines)+16)
	out = append(out, baseLines...)
	if !params.UsesFitBlock(task) {
		return append(out, lineSpec{lineOutFile, [2]string{"out_file"}})
	}
	out = append(out,
		lineSpec{linePeriod, [2]string{"period"}},
		lineSpec{lineEpoch, [2]string{"primary_epoch"}},
	)
	for i, key := range adjustLineKeys {
		out = append(out, lineSpec{key, [2]string{
			params.AdjustNames[2*i] + "_fit",
			params.AdjustNames[2*i+1] + "_fit",
		}})
	}
	return append(out,
		lineSpec{lineDataFile, [2]string{"data_file"}},
		lineSpec{lineParamFile, [2]string{"param_file"}},
		lineSpec{lineOutFile, [2]string{"out_file"}},
		lineSpec{lineFitFile, [2]string{"fit_file"}},
	)
}

//go:embed descriptions.toml
var descriptionsTOML string

type description struct {
	Left  string `toml:"left"`
	Right string `toml:"right"`
}

var (
	descOnce  sync.Once
	descTable map[string]description
	descErr   error
)

// descriptions returns the read-only description table, loaded once.
func descriptions() (map[string]description, error) {
	descOnce.Do(func() {
		table := make(map[string]description)
		if _, err := toml.Decode(descriptionsTOML, &table); err != nil {
			descErr = fmt.Errorf("%w: %v", ErrBadDescription, err)
			return
		}
		for _, task := range []int{params.TaskModel, params.TaskFit} {
			for _, spec := range layoutFor(task) {
				if _, ok := table[spec.key]; !ok {
					descErr = fmt.Errorf("%w: missing line %q", ErrBadDescription, spec.key)
					return
				}
			}
		}
		descTable = table
	})
	return descTable, descErr
}
