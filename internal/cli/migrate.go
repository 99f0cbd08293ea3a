package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lirov/claim-checker/internal/store"
)

var migrateDirection string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
	Long: `Apply the embedded schema migrations to the configured database.

Example:
  claimcheck migrate
  CLAIMCHECK_DATABASE_DRIVER=postgres CLAIMCHECK_DATABASE_DSN=postgres://... claimcheck migrate
  claimcheck migrate --direction down`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		if err := store.Migrate(cfg.Database.Driver, cfg.Database.DSN, migrateDirection); err != nil {
			return err
		}

		fmt.Printf("✓ Migrations applied (%s) on %s\n", migrateDirection, cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrateDirection, "direction", store.MigrateUp, "migration direction (up or down)")
}
