package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lirov/claim-checker/internal/worker"
)

var (
	concurrency  int
	batchUser    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify multiple claims from a file in parallel",
	Long: `Batch verifies one claim per line:
- Lines starting with http:// or https:// are URL claims, others are text
- Blank lines and lines starting with # are skipped
- Claims are verified concurrently with a bounded worker pool
- A summary table is printed when all claims are done

Example:
  claimcheck batch claims.txt
  claimcheck batch claims.txt --concurrency 8 --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&batchUser, "user", "batch", "user id recorded with each claim")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ClaimCheck Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(a.pipeline, workers, a.cfg.RateLimiting.RequestsPerSecond, a.cfg.RateLimiting.BurstSize)

	results, err := processor.ProcessFile(ctx, file, batchUser)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failures := printBatchSummary(cmd.OutOrStdout(), results)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(results)-failures)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "\n")

	return batchError(failures, len(results))
}

// batchError reports a non-zero failure count so the command exits non-zero
func batchError(failures, total int) error {
	if failures == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d claims failed", failures, total)
}

// printBatchSummary writes one row per claim and returns the failure count
func printBatchSummary(w io.Writer, results []*worker.ClaimResult) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCLAIM\tVERDICT\tCONFIDENCE\tCLAIM ID\tTIME")

	failures := 0
	for _, r := range results {
		input := truncate(r.Request.RawInput, 48)
		if r.Error != nil {
			failures++
			fmt.Fprintf(tw, "%d\t%s\terror\t-\t-\t%s\n", r.Index+1, input, r.Duration.Round(time.Millisecond))
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", input, r.Error)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%s\n", r.Index+1, input,
			r.Result.Verdict.Label, r.Result.Verdict.Confidence, r.Result.ClaimID, r.Duration.Round(time.Millisecond))
	}

	_ = tw.Flush()
	return failures
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
