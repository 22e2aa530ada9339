package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/boxcloud/pkg/kernel"
)

const eps = 1e-9

func approx(a, b [3]float64, tol float64) bool {
	for i := range 3 {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// meshBounds returns the per-axis extremes of m's vertices.
func meshBounds(m *kernel.Mesh) (min, max [3]float64) {
	for a := range 3 {
		min[a], max[a] = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for a := range 3 {
			v := float64(m.Vertices[i+a])
			min[a] = math.Min(min[a], v)
			max[a] = math.Max(max[a], v)
		}
	}
	return min, max
}

func TestNewDefaults(t *testing.T) {
	if got := New(0).MeshCells(); got != DefaultMeshCells {
		t.Errorf("MeshCells() = %d, want %d", got, DefaultMeshCells)
	}
	if got := New(12).MeshCells(); got != 12 {
		t.Errorf("MeshCells() = %d, want 12", got)
	}
}

func TestBoxAtOrigin(t *testing.T) {
	k := New(16)
	min, max := k.Box(4, 2, 1).BoundingBox()
	if !approx(min, [3]float64{0, 0, 0}, eps) || !approx(max, [3]float64{4, 2, 1}, eps) {
		t.Errorf("BoundingBox() = %v, %v", min, max)
	}
}

func TestTranslate(t *testing.T) {
	k := New(16)
	s := k.Translate(k.Box(1, 1, 1), 2, -3, 0.5)
	min, max := s.BoundingBox()
	if !approx(min, [3]float64{2, -3, 0.5}, eps) || !approx(max, [3]float64{3, -2, 1.5}, eps) {
		t.Errorf("BoundingBox() = %v, %v", min, max)
	}
}

func TestUnion(t *testing.T) {
	k := New(16)
	a := k.Box(1, 1, 1)
	if k.Union(a) != a {
		t.Error("Union of one solid should return it unchanged")
	}
	u := k.Union(a, k.Translate(k.Box(1, 2, 1), 1, 0, 0), k.Translate(k.Box(1, 1, 3), 0, 0, 1))
	min, max := u.BoundingBox()
	if !approx(min, [3]float64{0, 0, 0}, eps) || !approx(max, [3]float64{2, 2, 4}, eps) {
		t.Errorf("BoundingBox() = %v, %v", min, max)
	}
}

func TestToMesh(t *testing.T) {
	k := New(16)
	mesh, err := k.ToMesh(k.Box(4, 2, 2))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() || mesh.TriangleCount() == 0 {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triangles*3", len(mesh.Indices))
	}

	// Marching cubes places vertices on the surface to within a cell.
	min, max := meshBounds(mesh)
	if !approx(min, [3]float64{0, 0, 0}, 0.5) || !approx(max, [3]float64{4, 2, 2}, 0.5) {
		t.Errorf("mesh bounds %v..%v stray from the box", min, max)
	}
}

func TestSaveSTL(t *testing.T) {
	k := New(8)
	path := filepath.Join(t.TempDir(), "box.stl")
	if err := k.SaveSTL(k.Box(1, 1, 1), path); err != nil {
		t.Fatalf("SaveSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	// Binary STL: 80-byte header, 4-byte count, 50 bytes per triangle.
	if info.Size() <= 84 || (info.Size()-84)%50 != 0 {
		t.Errorf("unexpected STL size %d", info.Size())
	}
}

func TestSaveSTLBadPath(t *testing.T) {
	k := New(8)
	err := k.SaveSTL(k.Box(1, 1, 1), filepath.Join(t.TempDir(), "missing", "box.stl"))
	if err == nil {
		t.Error("expected error writing into a missing directory")
	}
}

var _ kernel.Kernel = New(1)
