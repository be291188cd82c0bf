package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path> [remote]",
	Short: "Publish a file below the public directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		remote := ""
		if len(args) == 2 {
			remote = args[1]
		}
		if !a.service.Upload(context.Background(), args[0], remote) {
			return fmt.Errorf("upload %s failed", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.service.ResolveAssetURL(remoteOrPath(remote, args[0])))
		return nil
	},
}

func remoteOrPath(remote, path string) string {
	if remote != "" {
		return remote
	}
	return path
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
