package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yi-nology/asset_bridge/pkg/transform"
)

var imageFlags = map[string]string{
	transform.ParamSize:       "target box as WxH",
	transform.ParamMode:       "resize, scaleResize, forceResize, zoomCrop, crop, cropResize, resizeCanvas, cropAuto",
	transform.ParamBackground: "white, black, a color name, #rrggbb or transparent",
	transform.ParamPosition:   "anchor as x;y (left/center/right;top/center/bottom) or XxY",
	transform.ParamQuality:    "encoder quality",
	transform.ParamType:       "output format: png, jpg, jpeg, gif",
	transform.ParamName:       "custom output path below the public directory",
	transform.ParamThreshold:  "trim threshold for cropAuto",
	transform.ParamCropMode:   "cropAuto mode: auto, white, black, threshold, sides, transparent",
}

var imageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Derive an image and print its reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		params := transform.Params{}
		for name := range imageFlags {
			if f := cmd.Flags().Lookup(flagName(name)); f != nil && f.Changed {
				params[name] = f.Value.String()
			}
		}
		ref := a.service.DeriveAndPublish(context.Background(), args[0], params)
		fmt.Fprintln(cmd.OutOrStdout(), ref)
		return nil
	},
}

// flagName maps a transform parameter to its command line flag.
func flagName(param string) string {
	if param == transform.ParamCropMode {
		return "crop-mode"
	}
	return param
}

func init() {
	rootCmd.AddCommand(imageCmd)
	for name, usage := range imageFlags {
		imageCmd.Flags().String(flagName(name), "", usage)
	}
}
