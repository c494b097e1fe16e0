// Package cli wires the envcheck commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	// adapters register themselves with the extractor registry
	_ "github.com/envcheck/envcheck/internal/extractor/actions"
	_ "github.com/envcheck/envcheck/internal/extractor/ansible"
	_ "github.com/envcheck/envcheck/internal/extractor/argocd"
	_ "github.com/envcheck/envcheck/internal/extractor/helm"
	_ "github.com/envcheck/envcheck/internal/extractor/k8s"
	_ "github.com/envcheck/envcheck/internal/extractor/source"
	_ "github.com/envcheck/envcheck/internal/extractor/terraform"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "envcheck",
		Short: "Lint .env files and reconcile them with infrastructure",
		Long: `envcheck lints .env files for structural problems and checks that the keys
they declare match what Kubernetes, Terraform, Ansible, Helm, Argo CD,
GitHub Actions and application code expect.

Registered extractors: ` + strings.Join(extractor.Names(), ", "),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: validateSettings,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "Print the version number of envcheck",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.envcheckrc.yaml)")
	rootCmd.PersistentFlags().String("format", "", "Output format: text, json, github, sarif or pr-comment")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Do not print errors to stderr")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

// initConfig layers CLI settings: flag > ENVCHECK_* environment > config
// file > default
func initConfig() {
	viper.Reset()
	viper.SetEnvPrefix("ENVCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("format", string(output.FormatText))

	for _, name := range []string{"format", "quiet", "debug"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	extractor.SetDebug(nil)
}

// validateSettings rejects bad global settings before any input is read,
// and routes debug notes to the command's stderr
func validateSettings(cmd *cobra.Command, args []string) error {
	if _, err := output.ParseFormat(viper.GetString("format")); err != nil {
		return diag.UsageError("%v", err)
	}
	if viper.GetBool("debug") {
		extractor.SetDebug(cmd.ErrOrStderr())
	}
	return nil
}

// loadConfig reads the --config file, or the config files in the working
// directory. The config file's format becomes the fallback output format.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Format() != "" {
		viper.SetDefault("format", cfg.Format())
		if _, err := output.ParseFormat(viper.GetString("format")); err != nil {
			return config.Config{}, diag.UsageError("%s: %v", cfg.Source(), err)
		}
	}
	debugf("using config %q", cfg.Source())
	return cfg, nil
}

func debugf(format string, args ...interface{}) {
	extractor.Debugf(format, args...)
}

// report renders diags in the configured format and turns Error
// diagnostics into diag.ErrLintFailed
func report(cmd *cobra.Command, diags []diag.Diagnostic) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return diag.UsageError("%v", err)
	}

	out := cmd.OutOrStdout()
	opts := output.Options{Version: Version}
	if f, ok := out.(*os.File); ok && f == os.Stdout {
		opts.Color = output.ColorSupported()
	}
	if err := output.Write(out, format, diags, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	s := diag.Summarize(diags)
	if s.Errors > 0 {
		return fmt.Errorf("%w: %d error(s), %d warning(s)", diag.ErrLintFailed, s.Errors, s.Warnings)
	}
	return nil
}

// resetFlags restores every flag to its default so that commands can be
// executed more than once in a process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// Run executes envcheck with args and returns the process exit status.
// Errors are printed to stderr unless --quiet is set.
func Run(args []string, stdout, stderr io.Writer) int {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err != nil && !viper.GetBool("quiet") {
		if errors.Is(err, diag.ErrLintFailed) {
			fmt.Fprintf(stderr, "%v\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
	return diag.ExitCode(err)
}

// Execute runs the CLI against the process arguments
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
