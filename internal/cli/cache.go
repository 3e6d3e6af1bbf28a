package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/scribedesk/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the transcript and draft cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached transcript and draft",
	Long: `Clear empties the configured cache backend. With the disk or layered backend
only scribedesk's own cache files are removed from the cache directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := cache.New(cfg.Cache)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		if c == nil {
			fmt.Println("Cache is disabled; nothing to clear")
			return nil
		}

		if err := c.Clear(context.Background()); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Printf("✓ Cleared %s cache\n", cfg.Cache.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
