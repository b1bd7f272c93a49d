// Package batch renders the frames of a config to image files with a pool
// of workers.
package batch

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softrender/pkg/config"
	"github.com/taigrr/softrender/pkg/imageio"
	"github.com/taigrr/softrender/pkg/math3d"
	"github.com/taigrr/softrender/pkg/render"
	"github.com/taigrr/softrender/pkg/scene"
)

// Result holds the outcome of one frame.
type Result struct {
	Frame int
	Path  string
	Stats render.Stats
}

// Frame renders turntable frame i of cfg. bands > 1 rasterizes the frame
// in parallel horizontal bands. Objects are only read, so several frames
// may share them.
func Frame(ctx context.Context, cfg config.Config, objs []*scene.Object, i, bands int) (*image.RGBA, render.Stats, error) {
	res, err := cfg.Resolution()
	if err != nil {
		return nil, render.Stats{}, err
	}

	fb := render.NewFramebuffer(res)
	fb.Clear(cfg.BackgroundColor())
	dev := render.NewDevice(res, fb,
		render.WithShader(cfg.Shader()),
		render.WithWorkers(bands),
	)

	s := scene.New(cfg.CameraAt(i))
	s.Add(objs...)

	dev.Clear()
	if cfg.Grid {
		dev.RenderGrid(0, 10, 1, render.ColorGray, s.Camera)
	}
	if cfg.Axes {
		dev.RenderAxes(math3d.Vec3{}, 1.5, s.Camera)
	}
	dev.RenderScene(s)
	if err := dev.Flush(ctx); err != nil {
		return nil, render.Stats{}, fmt.Errorf("frame %d: %w", i, err)
	}
	return fb.ToImage(), dev.Stats(), nil
}

// Run renders every frame of cfg and writes it to cfg.FramePath. Frames run
// cfg.Workers at a time; a single frame gets the workers as raster bands
// instead. The first error cancels the remaining frames.
func Run(ctx context.Context, cfg config.Config, objs []*scene.Object) ([]Result, error) {
	format, err := imageio.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	bands, limit := 1, cfg.Workers
	if cfg.Frames == 1 {
		bands, limit = cfg.Workers, 1
	}

	results := make([]Result, cfg.Frames)
	var done atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i := range cfg.Frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			img, stats, err := Frame(ctx, cfg, objs, i, bands)
			if err != nil {
				return err
			}
			if cfg.Output.Scale > 1 {
				img = imageio.Scale(img, cfg.Output.Scale)
			}
			if cfg.Output.Stats {
				imageio.Overlay(img, 2, 2, render.ColorWhite, statsLines(i, stats)...)
			}

			path := cfg.FramePath(i)
			if err := imageio.Save(path, img, format); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			results[i] = Result{Frame: i, Path: path, Stats: stats}

			n := done.Add(1)
			slog.Info("frame written", "path", path, "done", n, "total", cfg.Frames)
			slog.Debug("frame stats", "frame", i, "stats", stats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	slog.Info("render complete",
		"frames", cfg.Frames,
		"elapsed", elapsed.Round(time.Millisecond),
		"fps", float64(cfg.Frames)/elapsed.Seconds(),
	)
	return results, nil
}

func statsLines(frame int, s render.Stats) []string {
	return []string{
		fmt.Sprintf("frame %d", frame),
		fmt.Sprintf("tris %d drawn %d", s.Triangles, s.Drawn),
		fmt.Sprintf("culled %d/%d px %d", s.Backfaces, s.ObjectsCulled, s.Pixels),
	}
}
