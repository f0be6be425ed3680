package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Print the effective configuration as YAML",
	Long: `Config resolves defaults, the config file and CODESCOPE_* environment
variables for the project and prints the result as YAML. The output can be
saved as codescope.yaml and edited.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
