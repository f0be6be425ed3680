package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/codescope/internal/checksum"
	"github.com/spf13/cobra"
)

var cleanQuietFlag bool
var cleanAllFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Delete the checksum cache to force a full gather",
	Long: `Clean removes the checksum cache file for the project.
The next run processes every file again.

With --all the output folder is removed as well.

The configuration file is preserved.

Examples:
  # Clean the cache for the current directory
  codescope clean

  # Clean cache and generated artifacts
  codescope clean --all
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
	cleanCmd.Flags().BoolVarP(&cleanAllFlag, "all", "a", false, "Also delete the output folder")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	paths, err := cfg.Paths(root)
	if err != nil {
		return err
	}

	removed, err := cleanPaths(paths.ChecksumCache, paths.OutputDir, cleanAllFlag)
	if err != nil {
		return err
	}

	if !cleanQuietFlag {
		if len(removed) == 0 {
			fmt.Println("Nothing to clean")
			return nil
		}
		for _, p := range removed {
			fmt.Printf("✓ Removed %s\n", p)
		}
		fmt.Println("Next 'codescope' run will process every file")
	}
	return nil
}

// cleanPaths deletes the cache file and, when all is set, the output
// directory. It returns the paths that existed and were removed.
func cleanPaths(cachePath, outputDir string, all bool) ([]string, error) {
	var removed []string

	if _, err := os.Stat(cachePath); err == nil {
		if err := checksum.Remove(cachePath); err != nil {
			return removed, err
		}
		removed = append(removed, cachePath)
	}

	if all {
		if _, err := os.Stat(outputDir); err == nil {
			if err := os.RemoveAll(outputDir); err != nil {
				return removed, fmt.Errorf("failed to remove output folder: %w", err)
			}
			removed = append(removed, outputDir)
		}
	}

	return removed, nil
}
