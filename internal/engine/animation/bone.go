package animation

import (
	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

// visibilityThreshold: visibility track samples above this count as visible.
const visibilityThreshold = 0.2

// BoneState is the per-frame pose of one skeletal node (bone or helper).
// AbsMatrix/AbsVector/Visible are valid only while Ready is true; Ready
// is cleared at the start of every System.Update and set exactly once
// per frame, either in Interpolate (roots) or in CalculateAbsolute.
type BoneState struct {
	Name     string
	ObjectID int32
	Parent   int32 // Flat index of the parent state, -1 for roots
	Pivot    math.Vec3

	// Indices into the owning System's track pool, -1 for static channels
	TranslationTrack int32
	RotationTrack    int32
	ScalingTrack     int32
	VisibilityTrack  int32

	Ready      bool
	AbsQuat    math.Quat
	AbsMatrix  math.Mat3 // World rotation with scale baked per column
	AbsVector  math.Vec3 // World position of the pivot
	AbsScaling math.Vec3
	Visible    bool
}

// newBoneState builds the load-time state for a parsed node.
func newBoneState(node *formats.MDXNode, pivot [3]float32) BoneState {
	return BoneState{
		Name:             node.Name,
		ObjectID:         int32(node.ObjectID),
		Parent:           -1,
		Pivot:            math.Vec3{X: pivot[0], Y: pivot[1], Z: pivot[2]},
		TranslationTrack: node.TranslationTrack,
		RotationTrack:    node.RotationTrack,
		ScalingTrack:     node.ScalingTrack,
		VisibilityTrack:  node.VisibilityTrack,
		AbsQuat:          math.QuatIdentity(),
		AbsMatrix:        math.Mat3Identity(),
		AbsScaling:       math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:          true,
	}
}

// Interpolate computes the bone's local pose for a frame from its tracks.
// Static channels fall back to the identity transform at the pivot.
// After this call AbsMatrix/AbsVector hold the pre-parent pose; roots are
// marked Ready immediately, children wait for CalculateAbsolute.
func (b *BoneState) Interpolate(frame int32, tracks []Track) {
	b.Ready = b.Parent < 0

	if data := sampleTrack(tracks, b.TranslationTrack, frame); len(data) >= 3 {
		b.AbsVector = math.Vec3{
			X: data[0] + b.Pivot.X,
			Y: data[1] + b.Pivot.Y,
			Z: data[2] + b.Pivot.Z,
		}
	} else {
		b.AbsVector = b.Pivot
	}

	if data := sampleTrack(tracks, b.RotationTrack, frame); len(data) >= 4 {
		b.AbsQuat = math.Quat{X: data[0], Y: data[1], Z: data[2], W: data[3]}
	} else {
		b.AbsQuat = math.QuatIdentity()
	}

	if data := sampleTrack(tracks, b.ScalingTrack, frame); len(data) >= 3 {
		b.AbsScaling = math.Vec3{X: data[0], Y: data[1], Z: data[2]}
	} else {
		b.AbsScaling = math.Vec3{X: 1, Y: 1, Z: 1}
	}

	if data := sampleTrack(tracks, b.VisibilityTrack, frame); len(data) >= 1 {
		b.Visible = data[0] > visibilityThreshold
	} else {
		b.Visible = true
	}

	b.AbsMatrix = b.AbsQuat.ToMat3().ScaleColumns(b.AbsScaling)
}

// CalculateAbsolute composes this bone's pose with its resolved parent:
// the parent's orientation carries the bone's offset from the parent
// pivot into world space. Idempotent: once Ready, calling again must not
// re-apply the parent transform.
func (b *BoneState) CalculateAbsolute(parent *BoneState) {
	if b.Ready {
		return
	}

	b.AbsMatrix = parent.AbsMatrix.Mul(b.AbsMatrix)

	rel := b.AbsVector.Sub(parent.Pivot)
	b.AbsVector = parent.AbsVector.Add(parent.AbsMatrix.MulVec3(rel))

	b.Visible = b.Visible && parent.Visible
	b.Ready = true
}
