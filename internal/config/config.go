package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// JobFile is a parameter job: overrides on top of params.Defaults, keyed by
// the names used in the "in" file. Pointer fields distinguish "unset" from zero.
type JobFile struct {
	Task *int `toml:"task,omitempty" yaml:"task,omitempty"`
	Ring *int `toml:"ring,omitempty" yaml:"ring,omitempty"`

	RAPlusRB   *float64 `toml:"rA_plus_rB,omitempty" yaml:"rA_plus_rB,omitempty"`
	K          *float64 `toml:"k,omitempty" yaml:"k,omitempty"`
	RA         *float64 `toml:"rA,omitempty" yaml:"rA,omitempty"`
	RB         *float64 `toml:"rB,omitempty" yaml:"rB,omitempty"`
	FitRAAndRB bool     `toml:"fit_rA_and_rB,omitempty" yaml:"fit_rA_and_rB,omitempty"`

	Inc       *float64 `toml:"inc,omitempty" yaml:"inc,omitempty"`
	QPhot     *float64 `toml:"qphot,omitempty" yaml:"qphot,omitempty"`
	Spherical bool     `toml:"spherical,omitempty" yaml:"spherical,omitempty"`

	ECosW        *float64 `toml:"ecosw,omitempty" yaml:"ecosw,omitempty"`
	ESinW        *float64 `toml:"esinw,omitempty" yaml:"esinw,omitempty"`
	E            *float64 `toml:"e,omitempty" yaml:"e,omitempty"`
	Omega        *float64 `toml:"omega,omitempty" yaml:"omega,omitempty"`
	FitEAndOmega bool     `toml:"fit_e_and_omega,omitempty" yaml:"fit_e_and_omega,omitempty"`

	GravA *float64 `toml:"gravA,omitempty" yaml:"gravA,omitempty"`
	GravB *float64 `toml:"gravB,omitempty" yaml:"gravB,omitempty"`
	J     *float64 `toml:"J,omitempty" yaml:"J,omitempty"`
	L3    *float64 `toml:"L3,omitempty" yaml:"L3,omitempty"`

	LDA  *string  `toml:"LDA,omitempty" yaml:"LDA,omitempty"`
	LDB  *string  `toml:"LDB,omitempty" yaml:"LDB,omitempty"`
	LDA1 *float64 `toml:"LDA1,omitempty" yaml:"LDA1,omitempty"`
	LDB1 *float64 `toml:"LDB1,omitempty" yaml:"LDB1,omitempty"`
	LDA2 *float64 `toml:"LDA2,omitempty" yaml:"LDA2,omitempty"`
	LDB2 *float64 `toml:"LDB2,omitempty" yaml:"LDB2,omitempty"`

	ReflA          *float64 `toml:"reflA,omitempty" yaml:"reflA,omitempty"`
	ReflB          *float64 `toml:"reflB,omitempty" yaml:"reflB,omitempty"`
	CalcReflCoeffs bool     `toml:"calc_refl_coeffs,omitempty" yaml:"calc_refl_coeffs,omitempty"`

	Phase      *float64 `toml:"phase,omitempty" yaml:"phase,omitempty"`
	LightScale *float64 `toml:"light_scale,omitempty" yaml:"light_scale,omitempty"`

	OutFile    *string  `toml:"out_file,omitempty" yaml:"out_file,omitempty"`
	Fit        *FitJob  `toml:"fit,omitempty" yaml:"fit,omitempty"`
	Directives []string `toml:"directives,omitempty" yaml:"directives,omitempty"`
}

// FitJob is the [fit] table used by fitting tasks.
type FitJob struct {
	Period       *float64       `toml:"period,omitempty" yaml:"period,omitempty"`
	PrimaryEpoch *float64       `toml:"primary_epoch,omitempty" yaml:"primary_epoch,omitempty"`
	DataFile     *string        `toml:"data_file,omitempty" yaml:"data_file,omitempty"`
	ParamFile    *string        `toml:"param_file,omitempty" yaml:"param_file,omitempty"`
	FitFile      *string        `toml:"fit_file,omitempty" yaml:"fit_file,omitempty"`
	Adjust       map[string]int `toml:"adjust,omitempty" yaml:"adjust,omitempty"`
}

// LoadJob reads a job file; the format follows the extension (.toml, .yaml, .yml).
func LoadJob(path string) (JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return JobFile{}, fmt.Errorf("job load failed (%s): %w", path, err)
	}
	job, err := ParseJob(data, formatOf(path))
	if err != nil {
		return JobFile{}, fmt.Errorf("job parse failed (%s): %w", path, err)
	}
	return job, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// ParseJob decodes data as "toml" or "yaml". Unknown keys are rejected so a
// misspelled parameter never silently falls back to its default.
func ParseJob(data []byte, format string) (JobFile, error) {
	var job JobFile
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "toml":
		meta, err := toml.Decode(string(data), &job)
		if err != nil {
			return JobFile{}, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return JobFile{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
			return JobFile{}, err
		}
	default:
		return JobFile{}, fmt.Errorf("unknown job format: %s", format)
	}
	return job, nil
}
