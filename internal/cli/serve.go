package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lirov/claim-checker/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP API",
	Long: `Serve the verifier over HTTP:
  POST /verify        verify a claim
  GET  /claims/:id    read a stored claim with its verdict and evidence
  GET  /health        liveness
  GET  /metrics       Prometheus metrics

Example:
  claimcheck serve --addr :8002`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8002", "listen address")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := api.NewServer(a.pipeline, a.metrics.Handler(), a.cfg.Server.RequestTimeout, a.logger)
	return srv.Run(ctx, a.cfg.Server.Addr, a.cfg.Server.ShutdownTimeout)
}
