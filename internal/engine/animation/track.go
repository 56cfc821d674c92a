// Package animation evaluates the skeletal pose of an MDX model:
// keyframe track sampling, hierarchical bone composition and CPU vertex
// skinning. A System owns one model's bone states and is updated once
// per rendered frame; it is not safe for concurrent use.
package animation

import (
	"github.com/Faultbox/mdxview/pkg/formats"
	"github.com/Faultbox/mdxview/pkg/math"
)

// InterpType selects how a track interpolates between keys.
type InterpType uint32

const (
	InterpNone InterpType = iota // Use the earlier key unchanged
	InterpLinear
	InterpHermite
	InterpBezier
)

// Key is a single keyframe. Data width depends on the channel: 3 for
// translation/scaling, 4 for rotation quaternions, 1 for visibility.
type Key struct {
	Frame  int32
	Data   []float32
	InTan  []float32
	OutTan []float32
}

// Track is the keyframe channel for one animated bone property.
type Track struct {
	Interp      InterpType
	Rotation    bool // Quaternion data: linear sampling uses slerp
	GlobalSeqID int32
	Keys        []Key
}

// TrackFromMDX converts a parsed file track into an evaluator track.
func TrackFromMDX(t *formats.MDXTrack) Track {
	track := Track{
		Interp:      InterpType(t.InterpType),
		Rotation:    t.Rotation,
		GlobalSeqID: t.GlobalSeqID,
		Keys:        make([]Key, len(t.Keys)),
	}
	for i, k := range t.Keys {
		track.Keys[i] = Key{
			Frame:  k.Frame,
			Data:   k.Data,
			InTan:  k.InTan,
			OutTan: k.OutTan,
		}
	}
	return track
}

// Sample returns the track value at the given frame. Frames before the
// first key clamp to the first key (base pose), frames past the last key
// clamp to the last key.
func (t *Track) Sample(frame int32) []float32 {
	if len(t.Keys) == 0 {
		return nil
	}

	// Bracket the frame, assuming keys sorted ascending
	before, after := -1, -1
	for i := range t.Keys {
		if t.Keys[i].Frame <= frame {
			before = i
		}
		if t.Keys[i].Frame >= frame {
			after = i
			break
		}
	}

	if before < 0 {
		return t.Keys[0].Data
	}
	if after < 0 {
		return t.Keys[len(t.Keys)-1].Data
	}
	if before == after {
		return t.Keys[before].Data
	}

	k0 := &t.Keys[before]
	k1 := &t.Keys[after]
	tt := float32(frame-k0.Frame) / float32(k1.Frame-k0.Frame)

	switch t.Interp {
	case InterpNone:
		return k0.Data
	case InterpHermite, InterpBezier:
		return hermite(k0, k1, tt)
	default:
		if t.Rotation && len(k0.Data) >= 4 && len(k1.Data) >= 4 {
			q0 := math.Quat{X: k0.Data[0], Y: k0.Data[1], Z: k0.Data[2], W: k0.Data[3]}
			q1 := math.Quat{X: k1.Data[0], Y: k1.Data[1], Z: k1.Data[2], W: k1.Data[3]}
			q := q0.Slerp(q1, tt)
			return []float32{q.X, q.Y, q.Z, q.W}
		}
		out := make([]float32, len(k0.Data))
		for i, b := range k0.Data {
			a := b
			if i < len(k1.Data) {
				a = k1.Data[i]
			}
			out[i] = b + (a-b)*tt
		}
		return out
	}
}

// hermite evaluates the cubic Hermite basis between two keys using their
// stored tangents. Bezier tracks share this path: the stored tangents
// already encode the control points.
func hermite(k0, k1 *Key, t float32) []float32 {
	t2 := t * t
	t3 := t2 * t
	h1 := 2*t3 - 3*t2 + 1
	h2 := -2*t3 + 3*t2
	h3 := t3 - 2*t2 + t
	h4 := t3 - t2

	out := make([]float32, len(k0.Data))
	for i, b := range k0.Data {
		var a, outTan, inTan float32
		if i < len(k1.Data) {
			a = k1.Data[i]
		}
		if i < len(k0.OutTan) {
			outTan = k0.OutTan[i]
		}
		if i < len(k1.InTan) {
			inTan = k1.InTan[i]
		}
		out[i] = h1*b + h2*a + h3*outTan + h4*inTan
	}
	return out
}

// sampleTrack samples a track from the pool by index; a negative or
// out-of-range index means the channel is static and yields nil.
func sampleTrack(tracks []Track, idx int32, frame int32) []float32 {
	if idx < 0 || int(idx) >= len(tracks) {
		return nil
	}
	return tracks[idx].Sample(frame)
}
