package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/mvp-joe/codescope/internal/checksum"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command group
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the checksum cache",
	Long: `Inspect the checksum cache used to skip unchanged files.

Available commands:
  info   - Show cache location and stats`,
}

// cacheInfoCmd shows cache location and basic stats
var cacheInfoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Show cache location and stats",
	Long: `Display the checksum cache location and basic statistics.

Shows:
  - Cache file location and size
  - Fingerprint algorithm
  - Number of cached files and stored summaries
  - Run that last wrote the cache`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheInfo,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	paths, err := cfg.Paths(root)
	if err != nil {
		return err
	}

	info, err := checksum.Stat(paths.ChecksumCache)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("No checksum cache at %s\n", paths.ChecksumCache)
			return nil
		}
		return err
	}

	printCacheInfo(info)
	return nil
}

func printCacheInfo(info *checksum.Info) {
	fmt.Printf("Cache file:   %s\n", info.Path)
	fmt.Printf("Size:         %.1f KB\n", float64(info.SizeBytes)/1024)
	fmt.Printf("Format:       %s\n", info.Version)
	fmt.Printf("Algorithm:    %s\n", info.Algorithm)
	fmt.Printf("Files:        %s\n", formatNumber(info.Entries))
	fmt.Printf("Summaries:    %s\n", formatNumber(info.Summaries))
	if info.RunID != "" {
		fmt.Printf("Last run:     %s\n", info.RunID)
	}
	if !info.GeneratedAt.IsZero() {
		fmt.Printf("Written:      %s (%s ago)\n",
			info.GeneratedAt.Local().Format(time.RFC3339),
			time.Since(info.GeneratedAt).Round(time.Second))
	}
}
