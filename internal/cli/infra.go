package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/envcheck/envcheck/internal/analyzer"
	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/envfile"
	"github.com/envcheck/envcheck/internal/extractor"
	"github.com/envcheck/envcheck/internal/extractor/actions"
	"github.com/envcheck/envcheck/internal/extractor/k8s"
	"github.com/spf13/cobra"
)

var (
	k8sSyncCmd = &cobra.Command{
		Use:   "k8s-sync PATTERN...",
		Short: "Detect mismatches between Kubernetes manifests and a .env file",
		Long: `Expand the manifest globs ("**" is supported), collect env references from
workloads, ConfigMaps and Secrets, and compare them with the .env file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runK8sSync,
	}

	terraformCmd = newInfraCmd("terraform", "terraform [DIR]",
		"Check that every Terraform variable has a TF_VAR_ key in .env")
	ansibleCmd = newInfraCmd("ansible", "ansible [DIR]",
		"Check Ansible env lookups against .env")
	helmCmd = newInfraCmd("helm", "helm [DIR]",
		"Check environment keys in Helm values files against .env")
	argoCmd = newInfraCmd("argocd", "argo [DIR]",
		"Check Argo CD Application plugin and kustomize env against .env")
	actionsCmd = newInfraCmd("actions", "actions [DIR]",
		"Check GitHub Actions workflow env blocks against .env")
	sourceCmd = newInfraCmd("source", "source [DIR]",
		"Check environment lookups in application code against .env")

	envPath    string
	skipUnused bool
)

func init() {
	for _, c := range []*cobra.Command{k8sSyncCmd, terraformCmd, ansibleCmd, helmCmd, argoCmd, actionsCmd, sourceCmd} {
		c.Flags().StringVarP(&envPath, "env", "e", ".env", "Path to the .env file")
		c.Flags().BoolVar(&skipUnused, "skip-unused", false, "Skip reporting .env keys that nothing references")
		rootCmd.AddCommand(c)
	}
}

// newInfraCmd builds a command that scans a directory with the named
// extractor and reconciles the result with the .env file
func newInfraCmd(extractorName, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := extractor.Lookup(extractorName)
			if err != nil {
				return err
			}
			dir := defaultScanDir(extractorName)
			if len(args) > 0 {
				dir = args[0]
			}
			debugf("scanning %s with %s extractor", dir, e.Name())
			return reconcile(cmd, e.Source(), func(opts extractor.ScanOptions) ([]extractor.Reference, error) {
				return e.Scan(dir, opts)
			})
		},
	}
}

// defaultScanDir is "." except for actions, which prefers the workflow
// directory when it exists
func defaultScanDir(extractorName string) string {
	if extractorName == "actions" {
		if _, err := os.Stat(actions.DefaultDir); !errors.Is(err, fs.ErrNotExist) {
			return actions.DefaultDir
		}
	}
	return "."
}

func runK8sSync(cmd *cobra.Command, args []string) error {
	e, err := extractor.Lookup("k8s")
	if err != nil {
		return err
	}
	return reconcile(cmd, e.Source(), func(opts extractor.ScanOptions) ([]extractor.Reference, error) {
		return k8s.ScanPatterns(args, opts)
	})
}

// reconcile loads config and the .env file, collects references with the
// config's scan bounds and reports the reconciliation diagnostics
func reconcile(cmd *cobra.Command, source string, scan func(extractor.ScanOptions) ([]extractor.Reference, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	env, err := envfile.Parse(envPath)
	if err != nil {
		return err
	}
	refs, err := scan(scanOptions(cfg))
	if err != nil {
		return err
	}
	debugf("found %d references", len(refs))

	diags := analyzer.Reconcile(env, refs, cfg, analyzer.Options{
		Source:     source,
		SkipUnused: skipUnused,
	})
	return report(cmd, diags)
}

// scanOptions keeps files listed in .envcheckignore out of the walk, so
// they are never read or parsed
func scanOptions(cfg config.Config) extractor.ScanOptions {
	return extractor.ScanOptions{
		Exclude:     cfg.IgnorePaths(),
		ExcludeDirs: cfg.ExcludeDirs(),
		MaxDepth:    cfg.MaxDepth(),
	}
}
