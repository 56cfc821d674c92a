package animation

import (
	"testing"

	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

// translatedRoots builds a system of root bones, each displaced from the
// origin by the given offset.
func translatedRoots(t *testing.T, offsets []math.Vec3) *System {
	t.Helper()

	mdx := &formats.MDX{}
	for i, off := range offsets {
		node := testNode("Bone", uint32(i), -1)
		node.TranslationTrack = int32(len(mdx.Tracks))
		mdx.Tracks = append(mdx.Tracks, constTrack(false, []float32{off.X, off.Y, off.Z}))
		mdx.Bones = append(mdx.Bones, node)
		mdx.Pivots = append(mdx.Pivots, [3]float32{})
	}

	s := NewSystem()
	s.InitFromModel(mdx)
	s.Update(0)
	return s
}

func TestTransformVerticesAveragesBones(t *testing.T) {
	s := translatedRoots(t, []math.Vec3{
		{X: 1, Y: 0, Z: 0},
		{X: 3, Y: 0, Z: 0},
	})

	vertices := []math.Vec3{{X: 0, Y: 0, Z: 0}}
	groups := []uint8{0}
	matrixGroups := [][]uint32{{0, 1}}

	out := s.TransformVertices(vertices, groups, matrixGroups, s.Pivots)
	if len(out) != 1 {
		t.Fatalf("expected 1 output vertex, got %d", len(out))
	}
	if !vecAlmostEqual(out[0], math.Vec3{X: 2, Y: 0, Z: 0}) {
		t.Errorf("two-bone skin should average to (2,0,0), got %+v", out[0])
	}
}

func TestTransformVerticesStaticPoseIsIdentity(t *testing.T) {
	mdx := &formats.MDX{
		Bones:  []formats.MDXNode{testNode("Root", 0, -1)},
		Pivots: [][3]float32{{2, 5, -1}},
	}
	s := NewSystem()
	s.InitFromModel(mdx)
	s.Update(0)

	vertices := []math.Vec3{{X: 3, Y: 5, Z: 0}, {X: -2, Y: 1, Z: 7}}
	groups := []uint8{0, 0}
	matrixGroups := [][]uint32{{0}}

	// The skin pivot cancels the bone's rest position, so an unanimated
	// bone leaves its vertices where they are.
	out := s.TransformVertices(vertices, groups, matrixGroups, s.Pivots)
	for i := range vertices {
		if !vecAlmostEqual(out[i], vertices[i]) {
			t.Errorf("vertex %d moved in the rest pose: %+v -> %+v", i, vertices[i], out[i])
		}
	}
}

func TestTransformVerticesPassThrough(t *testing.T) {
	s := translatedRoots(t, []math.Vec3{{X: 1, Y: 0, Z: 0}})

	vertices := []math.Vec3{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 6},
		{X: 7, Y: 8, Z: 9},
	}
	groups := []uint8{
		5, // Out-of-range group index
		0, // Empty bone list
		1, // Only unknown bone ids
	}
	matrixGroups := [][]uint32{
		{},
		{99, 100},
	}

	out := s.TransformVertices(vertices, groups, matrixGroups, s.Pivots)
	for i := range vertices {
		if !vecAlmostEqual(out[i], vertices[i]) {
			t.Errorf("degenerate vertex %d should pass through, got %+v", i, out[i])
		}
	}
}

func TestTransformVerticesSkipsUnknownBonesInMixedList(t *testing.T) {
	s := translatedRoots(t, []math.Vec3{{X: 1, Y: 0, Z: 0}})

	vertices := []math.Vec3{{X: 0, Y: 0, Z: 0}}
	groups := []uint8{0}
	matrixGroups := [][]uint32{{0, 99}} // One real bone, one unknown id

	out := s.TransformVertices(vertices, groups, matrixGroups, s.Pivots)
	if !vecAlmostEqual(out[0], math.Vec3{X: 1, Y: 0, Z: 0}) {
		t.Errorf("unknown ids should be dropped from the average, got %+v", out[0])
	}
}

func TestTransformVerticesGroupsShorterThanVertices(t *testing.T) {
	s := translatedRoots(t, []math.Vec3{{X: 1, Y: 0, Z: 0}})

	vertices := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 9, Y: 9, Z: 9}}
	groups := []uint8{0} // Second vertex has no group entry
	matrixGroups := [][]uint32{{0}}

	out := s.TransformVertices(vertices, groups, matrixGroups, s.Pivots)
	if !vecAlmostEqual(out[1], vertices[1]) {
		t.Errorf("ungrouped vertex should pass through, got %+v", out[1])
	}
}

func TestTransformNormalsRotates(t *testing.T) {
	// Root bone rotated 90 degrees about Z
	sin45 := float32(0.70710678)
	root := testNode("Root", 0, -1)
	root.RotationTrack = 0
	mdx := &formats.MDX{
		Bones:  []formats.MDXNode{root},
		Tracks: []formats.MDXTrack{constTrack(true, []float32{0, 0, sin45, sin45})},
		Pivots: [][3]float32{{0, 0, 0}},
	}
	s := NewSystem()
	s.InitFromModel(mdx)
	s.Update(0)

	normals := []math.Vec3{{X: 1, Y: 0, Z: 0}}
	out := s.TransformNormals(normals, []uint8{0}, [][]uint32{{0}})

	if !vecAlmostEqual(out[0], math.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("rotated normal should be (0,1,0), got %+v", out[0])
	}
}

func TestTransformNormalsPassThrough(t *testing.T) {
	s := translatedRoots(t, []math.Vec3{{X: 1, Y: 0, Z: 0}})

	normals := []math.Vec3{{X: 0, Y: 0, Z: 1}}
	out := s.TransformNormals(normals, []uint8{7}, [][]uint32{{0}})

	if !vecAlmostEqual(out[0], normals[0]) {
		t.Errorf("out-of-range group should leave the normal alone, got %+v", out[0])
	}
}
