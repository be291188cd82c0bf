package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url <name>",
	Short: "Print the public URL of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		out := a.service.ResolveAssetURL(args[0])
		if useManifest, _ := cmd.Flags().GetBool("manifest"); useManifest {
			if out, err = a.service.ManifestURL(args[0]); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
	urlCmd.Flags().Bool("manifest", false, "resolve through the revision manifest")
}
