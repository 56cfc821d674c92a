package animation

import (
	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

// System owns the flat bone-state collection for one loaded model and
// drives the per-frame evaluation: reset readiness, interpolate every
// bone locally, then resolve absolute transforms parent-before-child.
//
// Bones and helpers are folded into one flat slice (bones first), so
// skinning matrix-group indices and the pivot table address it directly.
type System struct {
	Bones  []BoneState
	Tracks []Track

	// Skinning pivot table in flat node order. Supplied separately from
	// the per-bone pivots: skinning resolves pivots through this table,
	// not through BoneState.Pivot.
	Pivots []math.Vec3

	currentFrame float32
}

// NewSystem returns an empty animation system.
func NewSystem() *System {
	return &System{}
}

// InitFromModel clears the system and rebuilds one BoneState per node
// declared by the model, preserving declaration order. Parent object ids
// are resolved to flat indices once here; a parent id that matches no
// node leaves the bone a root.
func (s *System) InitFromModel(mdx *formats.MDX) {
	nodeCount := mdx.NodeCount()
	s.Bones = make([]BoneState, 0, nodeCount)
	s.Pivots = make([]math.Vec3, 0, nodeCount)
	s.currentFrame = 0

	s.Tracks = make([]Track, len(mdx.Tracks))
	for i := range mdx.Tracks {
		s.Tracks[i] = TrackFromMDX(&mdx.Tracks[i])
	}

	flat := make([]*formats.MDXNode, 0, nodeCount)
	for i := range mdx.Bones {
		flat = append(flat, &mdx.Bones[i])
	}
	for i := range mdx.Helpers {
		flat = append(flat, &mdx.Helpers[i])
	}

	// Parent references are object ids, not flat indices
	indexByID := make(map[int32]int32, nodeCount)
	for i, node := range flat {
		indexByID[int32(node.ObjectID)] = int32(i)
	}

	for i, node := range flat {
		pivot := mdx.PivotFor(i)
		state := newBoneState(node, pivot)
		if node.ParentID >= 0 {
			if idx, ok := indexByID[node.ParentID]; ok {
				state.Parent = idx
			}
			// Unknown parent id: keep -1, bone behaves as a root
		}
		s.Bones = append(s.Bones, state)
		s.Pivots = append(s.Pivots, math.Vec3{X: pivot[0], Y: pivot[1], Z: pivot[2]})
	}
}

// Update recomputes every bone's absolute transform for the given frame.
// Resolution order over the flat slice does not affect the result: ready
// bones short-circuit, so any traversal of the same acyclic parent graph
// produces identical transforms.
func (s *System) Update(frame float32) {
	s.currentFrame = frame
	fi := int32(frame)

	for i := range s.Bones {
		s.Bones[i].Ready = false
	}
	for i := range s.Bones {
		s.Bones[i].Interpolate(fi, s.Tracks)
	}

	visiting := make([]bool, len(s.Bones))
	for i := range s.Bones {
		s.resolve(i, visiting)
	}
}

// resolve finishes bone idx by recursively resolving its parent first.
// The visiting set breaks parent cycles: a bone reached twice in one
// descent is treated as a root for the frame instead of recursing
// forever.
func (s *System) resolve(idx int, visiting []bool) {
	b := &s.Bones[idx]
	if b.Ready {
		return
	}

	parent := int(b.Parent)
	if parent < 0 || parent >= len(s.Bones) {
		b.Ready = true
		return
	}

	if visiting[idx] {
		b.Ready = true
		return
	}
	visiting[idx] = true
	s.resolve(parent, visiting)
	visiting[idx] = false

	b.CalculateAbsolute(&s.Bones[parent])
}

// ResetToBasePose evaluates frame 0 (the base pose).
func (s *System) ResetToBasePose() {
	s.Update(0)
}

// CurrentFrame returns the frame passed to the last Update call.
func (s *System) CurrentFrame() float32 {
	return s.currentFrame
}

// BoneCount returns the number of bone states (bones + helpers).
func (s *System) BoneCount() int {
	return len(s.Bones)
}

// Bone returns the bone state at a flat index, or nil.
func (s *System) Bone(index int) *BoneState {
	if index < 0 || index >= len(s.Bones) {
		return nil
	}
	return &s.Bones[index]
}

// BoneByObjectID returns the bone state with the given object id, or
// nil. Linear search: bone counts are tens to low hundreds.
func (s *System) BoneByObjectID(id int32) *BoneState {
	for i := range s.Bones {
		if s.Bones[i].ObjectID == id {
			return &s.Bones[i]
		}
	}
	return nil
}
