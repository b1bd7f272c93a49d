package render

import "log/slog"

// Stats counts what happened to the geometry submitted since the last
// Clear.
type Stats struct {
	Objects       int // objects submitted
	ObjectsCulled int // objects rejected by their bounding box
	Triangles     int // source triangles examined
	Backfaces     int // triangles facing away from the camera
	Rejected      int // triangles behind the eye or trivially outside
	Clipped       int // triangles clipped away entirely
	Degenerate    int // clip intersections that fell back to a vertex
	Drawn         int // screen triangles sent to the rasterizer
	Pixels        int // pixels that passed the depth test
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("objects", s.Objects),
		slog.Int("objects_culled", s.ObjectsCulled),
		slog.Int("triangles", s.Triangles),
		slog.Int("backfaces", s.Backfaces),
		slog.Int("rejected", s.Rejected),
		slog.Int("clipped", s.Clipped),
		slog.Int("degenerate", s.Degenerate),
		slog.Int("drawn", s.Drawn),
		slog.Int("pixels", s.Pixels),
	)
}
