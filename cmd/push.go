package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish every static file selected by the include and exclude rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.service.Push(context.Background())
		if err != nil {
			return fmt.Errorf("push: %w", err)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
		} else {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "uploaded: %d\n", summary.Uploaded)
			fmt.Fprintf(w, "skipped:  %d\n", summary.Skipped)
			fmt.Fprintf(w, "failed:   %d\n", summary.Failed)
			for _, e := range summary.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d files failed to upload", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().Bool("json", false, "output as JSON")
}
