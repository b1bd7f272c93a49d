package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/softrender/pkg/math3d"
)

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.toml")
	err := os.WriteFile(scenePath, []byte(`
width = 40
height = 30
frames = 2

[[objects]]
primitive = "cube"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out", "f%d.tga")
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"render", scenePath, "-o", out, "-j", "2"})

	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v (stderr: %s)", err, stderr.String())
	}

	lines := strings.Fields(stdout.String())
	if len(lines) != 2 {
		t.Fatalf("printed %q, want two frame paths", stdout.String())
	}
	for i, want := range []string{"f0.tga", "f1.tga"} {
		if filepath.Base(lines[i]) != want {
			t.Errorf("frame %d path = %s, want %s", i, lines[i], want)
		}
		if _, err := os.Stat(lines[i]); err != nil {
			t.Errorf("frame %d not written: %v", i, err)
		}
	}
}

func TestRenderCommandInvalidConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"render", "--format", "gif", "-o", filepath.Join(t.TempDir(), "x.gif")})

	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestRotationAxisDecays(t *testing.T) {
	axis := NewRotationAxis(60)
	axis.Velocity = 1

	for range 600 {
		axis.Update()
	}
	if math.Abs(axis.Velocity) > 1e-3 {
		t.Errorf("velocity after 10s = %v, want ~0", axis.Velocity)
	}
	if axis.Position <= 0 {
		t.Errorf("position = %v, want positive drift", axis.Position)
	}
}

func TestScreenToLightDir(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want math3d.Vec3
	}{
		{"center faces the viewer", 50, 50, math3d.V3(0, 0, -1)},
		{"top edge points up", 50, 0, math3d.V3(0, 1, 0)},
		{"right edge points right", 100, 50, math3d.V3(1, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScreenToLightDir(tc.x, tc.y, 100, 100)
			if !got.AlmostEqual(tc.want, 1e-9) {
				t.Errorf("ScreenToLightDir(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestLoadViewMesh(t *testing.T) {
	mesh, err := loadViewMesh("cube")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("cube triangles = %d, want 12", mesh.TriangleCount())
	}

	if _, err := loadViewMesh(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected an error for a missing model")
	}
}
