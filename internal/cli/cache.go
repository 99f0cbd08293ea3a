package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lirov/claim-checker/internal/logging"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the evidence lookup cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached evidence lookups",
	Long: `Remove every cached evidence lookup written by ClaimCheck.

With cache.redis_addr set, all keys under the claimcheck prefix are deleted
from the shared Redis cache. The in-process cache only lives as long as a
single command, so without Redis there is nothing persistent to clear.`,
	RunE: runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, logger: logger}
	defer a.Close()

	shared, err := a.clearCache(context.Background())
	if err != nil {
		return err
	}

	if shared {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared shared cache at %s\n", cfg.Cache.RedisAddr)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No shared cache configured (cache.redis_addr is empty)")
	}
	return nil
}

// clearCache empties every configured cache layer and reports whether a
// shared Redis layer was cleared
func (a *app) clearCache(ctx context.Context) (bool, error) {
	c, err := a.buildCache(ctx)
	if err != nil {
		return false, err
	}
	if err := c.Clear(ctx); err != nil {
		return false, fmt.Errorf("clear cache: %w", err)
	}
	return a.redis != nil, nil
}
