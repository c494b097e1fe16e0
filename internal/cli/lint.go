package cli

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
	"github.com/envcheck/envcheck/internal/rules"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	lintCmd = &cobra.Command{
		Use:   "lint FILE...",
		Short: "Lint .env files",
		Long: `Run the rule pipeline (E001 duplicate keys, E002 syntax, W001 empty values,
W002 trailing whitespace, W003 unsorted keys) over every file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLint,
	}

	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Lint every .env file in the current directory",
		Long:  "Find .env and .env.* in the current directory and lint them.",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
)

func init() {
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	diags, err := lintFiles(filterPaths(cfg, args), cfg)
	if err != nil {
		return err
	}
	return report(cmd, diags)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	files, err := envfile.Discover(".")
	if err != nil {
		return err
	}
	files = filterPaths(cfg, files)
	if len(files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No .env files found in current directory.")
		return nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Running doctor on %d files...\n", len(files))
	diags, err := lintFiles(files, cfg)
	if err != nil {
		return err
	}
	return report(cmd, diags)
}

// lintFiles checks each file on its own worker. The first unreadable file
// aborts the run. Diagnostics are merged and sorted by path then line.
func lintFiles(paths []string, cfg config.Config) ([]diag.Diagnostic, error) {
	var errorCount, warningCount atomic.Int64
	results := make([][]diag.Diagnostic, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			file, err := envfile.Parse(path)
			if err != nil {
				return err
			}
			diags := rules.Check(file, cfg)
			for _, d := range diags {
				switch d.Severity {
				case diag.Error:
					errorCount.Add(1)
				case diag.Warning:
					warningCount.Add(1)
				}
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []diag.Diagnostic
	for _, r := range results {
		all = append(all, r...)
	}
	diag.SortByLocation(all)
	debugf("linted %d files: %d error(s), %d warning(s)", len(paths), errorCount.Load(), warningCount.Load())
	return all, nil
}

// filterPaths drops paths matched by the config's ignore globs
func filterPaths(cfg config.Config, paths []string) []string {
	kept := paths[:0:0]
	for _, p := range paths {
		if cfg.ShouldIgnorePath(p) {
			debugf("skipping ignored file %s", p)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
