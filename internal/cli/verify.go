package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lirov/claim-checker/internal/model"
)

var (
	verifyURL     bool
	verifyUser    string
	verifyJSON    bool
	verifyTimeout time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify <claim>",
	Short: "Verify a single claim",
	Long: `Verify extracts keywords from the claim, looks up evidence, scores it and
prints the verdict. The claim, evidence and verdict are stored.

Example:
  claimcheck verify "The Eiffel Tower is located in Paris"
  claimcheck verify --url https://example.com/article
  claimcheck verify "Water boils at 100 degrees" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyURL, "url", false, "treat the argument as a URL")
	verifyCmd.Flags().StringVar(&verifyUser, "user", "cli", "user id recorded with the claim")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the result as JSON")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	raw := strings.TrimSpace(strings.Join(args, " "))
	if raw == "" {
		return fmt.Errorf("claim must not be blank")
	}

	inputType := model.InputTypeText
	if verifyURL {
		inputType = model.InputTypeURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying (%s): %s\n\n", inputType, raw)
	}

	result, err := a.pipeline.Verify(ctx, model.VerifyRequest{
		InputType: inputType,
		RawInput:  raw,
		UserID:    verifyUser,
	})
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if verifyJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

// printResult renders a verification result for a terminal
func printResult(w io.Writer, r *model.VerifyResult) {
	fmt.Fprintf(w, "Claim:       %s\n", r.ClaimID)
	fmt.Fprintf(w, "Verdict:     %s (confidence %.2f)\n", r.Verdict.Label, r.Verdict.Confidence)
	fmt.Fprintf(w, "Explanation: %s\n", r.Verdict.Explanation)
	printEvidence(w, r.TopEvidence)
}

func printEvidence(w io.Writer, items []model.EvidenceItem) {
	if len(items) == 0 {
		fmt.Fprintf(w, "\nNo evidence found.\n")
		return
	}
	fmt.Fprintf(w, "\nEvidence:\n")
	for i, e := range items {
		fmt.Fprintf(w, "  %d. [%.3f] %s (%s)\n", i+1, e.Score, e.Title, e.Source)
		if e.URL != "" {
			fmt.Fprintf(w, "     %s\n", e.URL)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
