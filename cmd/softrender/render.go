package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taigrr/softrender/pkg/batch"
	"github.com/taigrr/softrender/pkg/config"
)

func newRenderCmd() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:   "render [config]",
		Short: "Render a scene to image files",
		Long: `Render a scene described by a TOML, YAML or JSON config file.
Without a config file, the meshes given with --model (or a cube) are
rendered with default camera and lighting. With --frames > 1 the camera
orbits its target and one image per frame is written.`,
		Example: `  softrender render scene.toml
  softrender render -m teapot.obj -o teapot.webp --scale 2
  softrender render scene.yaml --frames 36 -o spin/frame_%03d.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if len(args) == 1 {
				var err error
				if cfg, err = config.Load(args[0]); err != nil {
					return err
				}
			}
			cfg.Resolve(flags)
			if err := cfg.Validate(); err != nil {
				return err
			}

			objs, err := cfg.LoadObjects()
			if err != nil {
				return fmt.Errorf("load scene: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results, err := batch.Run(ctx, cfg, objs)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.Path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.Width, "width", 0, "Image width in pixels (default 320)")
	f.IntVar(&flags.Height, "height", 0, "Image height in pixels (default 180)")
	f.IntVarP(&flags.Workers, "workers", "j", 0, "Parallel workers (default number of CPUs)")
	f.IntVarP(&flags.Frames, "frames", "n", 0, "Turntable frame count (default 1)")
	f.StringVarP(&flags.Output, "output", "o", "", "Output path; %d receives the frame index")
	f.StringVar(&flags.Format, "format", "", "Image format: png, webp or tga (default from output extension)")
	f.IntVar(&flags.Scale, "scale", 0, "Integer upscale factor for the written image")
	f.StringSliceVarP(&flags.Models, "model", "m", nil, "Model file to add to the scene (repeatable)")
	f.BoolVar(&flags.Wireframe, "wireframe", false, "Draw --model meshes as wireframes")
	f.BoolVar(&flags.Stats, "stats", false, "Print render statistics onto each image")
	return cmd
}
