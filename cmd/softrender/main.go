// softrender - CPU 3D renderer
// Render OBJ, glTF and built-in meshes to image files or view them live in
// the terminal, without a GPU.
//
// Usage:
//
//	softrender render [scene.toml|scene.yaml|scene.json] [flags]
//	softrender view <model.obj|model.glb|cube|quad> [flags]
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/softrender/pkg/render"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "softrender",
		Short:         "Software 3D renderer",
		Long:          "softrender rasterizes triangle meshes on the CPU into image files or the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			render.SetLogger(logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newRenderCmd(), newViewCmd())
	return root
}
