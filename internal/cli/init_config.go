package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/envcheck/envcheck/internal/config"
	"github.com/envcheck/envcheck/internal/diag"
	"github.com/spf13/cobra"
)

const configFileName = ".envcheckrc.yaml"

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Create a .envcheckrc.yaml file in the current directory",
	Long:  "Creates a .envcheckrc.yaml file with default configuration in the current directory.",
	Args:  cobra.NoArgs,
	RunE:  runInitConfig,
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFileName); err == nil {
		return diag.UsageError("%s already exists in the current directory", configFileName)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return diag.IOError("stat", configFileName, err)
	}

	if err := os.WriteFile(configFileName, []byte(config.Template), 0644); err != nil {
		return diag.IOError("create", configFileName, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s in the current directory\n", configFileName)
	return nil
}
