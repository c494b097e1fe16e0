package cli

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/fixer"
	"github.com/spf13/cobra"
)

// commitMessage is used by fix --commit
const commitMessage = "chore: normalize .env files with envcheck"

var (
	fixCmd = &cobra.Command{
		Use:   "fix FILE...",
		Short: "Sort keys and normalize .env files in place",
		Long: `Rewrite each file into canonical form: header comments first, key lines
sorted with their comments, footer comments last, blank lines removed.
Running fix twice produces the same bytes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFix,
	}

	fixCheck  bool
	fixCommit bool
)

func init() {
	fixCmd.Flags().BoolVar(&fixCheck, "check", false, "Report files that would change without writing them")
	fixCmd.Flags().BoolVar(&fixCommit, "commit", false, "Stage and commit the fixed files with git")

	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	if fixCheck && fixCommit {
		return diag.UsageError("--check and --commit cannot be combined")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	files := filterPaths(cfg, args)

	out := cmd.OutOrStdout()
	if fixCheck {
		var pending []string
		for _, path := range files {
			needs, err := fixer.NeedsRewrite(path)
			if err != nil {
				return err
			}
			if needs {
				fmt.Fprintf(out, "would fix %s\n", path)
				pending = append(pending, path)
			}
		}
		if len(pending) > 0 {
			return fmt.Errorf("%w: %d file(s) need fixing", diag.ErrLintFailed, len(pending))
		}
		return nil
	}

	var changed []string
	for _, path := range files {
		ok, err := fixer.Rewrite(path)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(out, "fixed %s\n", path)
			changed = append(changed, path)
		}
	}

	if fixCommit && len(changed) > 0 {
		if err := gitCommit(changed); err != nil {
			return err
		}
		fmt.Fprintf(out, "committed %d file(s)\n", len(changed))
	}
	return nil
}

// gitCommit stages files and records a commit in the enclosing repository
func gitCommit(files []string) error {
	if err := git(append([]string{"add", "--"}, files...)...); err != nil {
		return err
	}
	return git(append([]string{"commit", "-m", commitMessage, "--"}, files...)...)
}

func git(args ...string) error {
	var stderr bytes.Buffer
	c := exec.Command("git", args...)
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("failed to run git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
