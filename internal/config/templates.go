package config

import (
	"fmt"
	"os"
	"strings"
)

// Template returns a starter job file in the given format ("toml" or "yaml").
func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "toml":
		return tomlTemplate, nil
	case "yaml", "yml":
		return yamlTemplate, nil
	default:
		return "", fmt.Errorf("unknown job format: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("job file already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const tomlTemplate = `# ebopctl job: unset keys keep their defaults.
task = 2
ring = 2

rA_plus_rB = 0.3
k = 0.5
inc = 89.5
qphot = 0.5

ecosw = 0.0
esinw = 0.0

gravA = 0.0
gravB = 0.0
J = 0.8
L3 = 0.0

LDA = "quad"
LDB = "same"
LDA1 = 0.25
LDA2 = 0.22

calc_refl_coeffs = true
out_file = "model.out"

# For fitting tasks (3-9), add:
# [fit]
# period = 2.7
# primary_epoch = 55000.0
# data_file = "lc.dat"
# [fit.adjust]
# L3 = 0
`

const yamlTemplate = `# ebopctl job: unset keys keep their defaults.
task: 2
ring: 2

rA_plus_rB: 0.3
k: 0.5
inc: 89.5
qphot: 0.5

ecosw: 0.0
esinw: 0.0

gravA: 0.0
gravB: 0.0
J: 0.8
L3: 0.0

LDA: quad
LDB: same
LDA1: 0.25
LDA2: 0.22

calc_refl_coeffs: true
out_file: model.out

# For fitting tasks (3-9), add:
# fit:
#   period: 2.7
#   primary_epoch: 55000.0
#   data_file: lc.dat
#   adjust:
#     L3: 0
`
