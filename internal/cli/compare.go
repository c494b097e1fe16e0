package cli

import (
	"github.com/envcheck/envcheck/internal/analyzer"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/envfile"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare REFERENCE OTHER...",
	Short: "Compare .env files against a reference",
	Long: `Report every key of the reference file (e.g. .env.example) that is missing
from each of the other files.`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return diag.UsageError("compare requires at least two files, got %d", len(args))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files := make([]*envfile.EnvFile, 0, len(args))
	for _, path := range args {
		f, err := envfile.Parse(path)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	diags, err := analyzer.Compare(files, cfg)
	if err != nil {
		return err
	}
	return report(cmd, diags)
}
