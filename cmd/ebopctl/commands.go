package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/danmuck/ebopctl/internal/config"
	"github.com/danmuck/ebopctl/internal/infile"
	"github.com/danmuck/ebopctl/internal/observability"
	"github.com/danmuck/ebopctl/internal/params"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var jobPath, outPath string
	var force bool
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a parameter file from a TOML or YAML job",
		Long: `
Load a job file, apply it on top of the task 2 defaults, validate the result and
write the fixed-layout parameter file.

Examples:
  ebopctl template --kind toml --out job.toml
  ebopctl encode --job job.toml --out model.in
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.LoadJob(jobPath)
			if err != nil {
				return err
			}
			set, err := config.Build(job)
			if err != nil {
				return fmt.Errorf("job %s: %w", jobPath, err)
			}
			start := time.Now()
			data, err := infile.Encode(set)
			observability.RecordCodec("encode", set.Task, len(data), err, time.Since(start))
			if err != nil {
				return err
			}
			if err := writeFile(outPath, data, force); err != nil {
				return err
			}
			log.Info().Str("job", jobPath).Str("out", outPath).Int("task", set.Task).Msg("ebopctl encode")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (task %d, %d bytes)\n", outPath, set.Task, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "job file (.toml, .yaml, .yml)")
	cmd.Flags().StringVar(&outPath, "out", "", "parameter file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing parameter file")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var inPath, jobOut string
	var force bool
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Read a parameter file and print its contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := decodeFile(inPath)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), set)
			if jobOut == "" {
				return nil
			}
			data, err := config.Export(set)
			if err != nil {
				return err
			}
			if err := writeFile(jobOut, data, force); err != nil {
				return err
			}
			log.Info().Str("in", inPath).Str("job", jobOut).Msg("ebopctl decode exported job")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "parameter file to read")
	cmd.Flags().StringVar(&jobOut, "job-out", "", "export the decoded set as a TOML job")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing job file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a parameter file decodes and validates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := decodeFile(inPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (task %d)\n", inPath, set.Task)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "parameter file to check")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var kind, outPath string
	var force bool
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a starter job file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				tmpl, err := config.Template(kind)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), tmpl)
				return err
			}
			if err := config.WriteTemplate(outPath, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s job template to %s\n", kind, outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "toml", "template format: toml|yaml")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (stdout when empty)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func decodeFile(path string) (params.ParameterSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return params.ParameterSet{}, err
	}
	defer f.Close()

	start := time.Now()
	set, err := infile.Read(f)
	size := 0
	if info, statErr := f.Stat(); statErr == nil {
		size = int(info.Size())
	}
	observability.RecordCodec("decode", set.Task, size, err, time.Since(start))
	if err != nil {
		return params.ParameterSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// writeFile replaces path through a temp file in the same directory.
func writeFile(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s (use --force)", path)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ebopctl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func printSummary(w io.Writer, p params.ParameterSet) {
	r1, r2 := p.Radii.Radii()
	e1, e2 := p.Eccentricity.Elements()
	fmt.Fprintf(w, "task:          %d (ring %d)\n", p.Task, p.Ring)
	fmt.Fprintf(w, "radii:         %s %g %g\n", p.Radii.Mode(), r1, r2)
	fmt.Fprintf(w, "inclination:   %g\n", p.Inclination)
	fmt.Fprintf(w, "mass ratio:    %g (spherical %t)\n", p.MassRatio.Q, p.MassRatio.Spherical)
	fmt.Fprintf(w, "eccentricity:  %s %g %g\n", p.Eccentricity.Mode(), e1, e2)
	fmt.Fprintf(w, "grav dark:     %g %g\n", p.GravA, p.GravB)
	fmt.Fprintf(w, "J / L3:        %g %g\n", p.J, p.L3)
	ldb := string(p.LDB.Law)
	if p.LDBSameAsA {
		ldb = params.SameToken
	}
	fmt.Fprintf(w, "limb dark:     %s %g %g / %s %g %g\n", p.LDA.Law, p.LDA.Coeff1, p.LDA.Coeff2, ldb, p.LDB.Coeff1, p.LDB.Coeff2)
	fmt.Fprintf(w, "reflection:    %s %s\n", reflectionString(p.ReflA), reflectionString(p.ReflB))
	fmt.Fprintf(w, "phase / scale: %g %g\n", p.PhasePrimary, p.LightScale)
	if p.Fit != nil {
		fmt.Fprintf(w, "period:        %g\n", p.Fit.Period)
		fmt.Fprintf(w, "epoch:         %g\n", p.Fit.PrimaryEpoch)
		fmt.Fprintf(w, "adjust:        %v\n", p.Fit.Adjust.Values())
		fmt.Fprintf(w, "files:         %s -> %s %s\n", p.Fit.DataFile, p.Fit.ParamFile, p.Fit.FitFile)
	}
	fmt.Fprintf(w, "out file:      %s\n", p.OutFile)
	for _, line := range p.Directives {
		fmt.Fprintf(w, "directive:     %s\n", line)
	}
}

func reflectionString(r params.Reflection) string {
	if r.Auto() {
		return fmt.Sprintf("auto(%g)", params.ReflectionValue(r))
	}
	return fmt.Sprintf("%g", params.ReflectionValue(r))
}
