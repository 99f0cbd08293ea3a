package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lirov/claim-checker/internal/model"
	"github.com/Lirov/claim-checker/internal/store"
)

var claimJSON bool

var claimCmd = &cobra.Command{
	Use:   "claim <id>",
	Short: "Show a stored claim with its verdict and evidence",
	Args:  cobra.ExactArgs(1),
	RunE:  runClaim,
}

func init() {
	rootCmd.AddCommand(claimCmd)

	claimCmd.Flags().BoolVar(&claimJSON, "json", false, "print the claim as JSON")
}

func runClaim(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	details, err := a.pipeline.GetClaim(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("claim not found: %s", args[0])
	}
	if err != nil {
		return err
	}

	if claimJSON {
		return writeJSON(cmd.OutOrStdout(), details)
	}
	printClaim(cmd.OutOrStdout(), details)
	return nil
}

func printClaim(w io.Writer, d *model.ClaimDetails) {
	fmt.Fprintf(w, "Claim:       %s\n", d.ClaimID)
	fmt.Fprintf(w, "Input:       %s (%s)\n", d.RawInput, d.InputType)
	fmt.Fprintf(w, "Status:      %s\n", d.Status)
	if d.Verdict == nil {
		fmt.Fprintf(w, "Verdict:     none\n")
	} else {
		fmt.Fprintf(w, "Verdict:     %s (confidence %.2f)\n", d.Verdict.Label, d.Verdict.Confidence)
		fmt.Fprintf(w, "Explanation: %s\n", d.Verdict.Explanation)
	}
	printEvidence(w, d.Evidence)
}
