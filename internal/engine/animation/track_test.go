package animation

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestTrackSampleEmpty(t *testing.T) {
	track := Track{Interp: InterpLinear}
	if got := track.Sample(100); got != nil {
		t.Errorf("empty track should sample nil, got %v", got)
	}
}

func TestTrackSampleClamping(t *testing.T) {
	track := Track{
		Interp: InterpLinear,
		Keys: []Key{
			{Frame: 100, Data: []float32{1, 2, 3}},
			{Frame: 200, Data: []float32{5, 6, 7}},
		},
	}

	before := track.Sample(50)
	if before[0] != 1 || before[1] != 2 || before[2] != 3 {
		t.Errorf("frame before first key should clamp to first key, got %v", before)
	}

	after := track.Sample(300)
	if after[0] != 5 || after[1] != 6 || after[2] != 7 {
		t.Errorf("frame past last key should clamp to last key, got %v", after)
	}

	exact := track.Sample(200)
	if exact[0] != 5 {
		t.Errorf("exact frame should return key data, got %v", exact)
	}
}

func TestTrackSampleLinear(t *testing.T) {
	track := Track{
		Interp: InterpLinear,
		Keys: []Key{
			{Frame: 0, Data: []float32{0, 10, -4}},
			{Frame: 100, Data: []float32{10, 20, 4}},
		},
	}

	mid := track.Sample(50)
	if !almostEqual(mid[0], 5) || !almostEqual(mid[1], 15) || !almostEqual(mid[2], 0) {
		t.Errorf("linear midpoint mismatch: %v", mid)
	}

	quarter := track.Sample(25)
	if !almostEqual(quarter[0], 2.5) {
		t.Errorf("linear quarter mismatch: %v", quarter)
	}
}

func TestTrackSampleDontInterp(t *testing.T) {
	track := Track{
		Interp: InterpNone,
		Keys: []Key{
			{Frame: 0, Data: []float32{1}},
			{Frame: 100, Data: []float32{2}},
		},
	}

	if got := track.Sample(99); got[0] != 1 {
		t.Errorf("InterpNone should hold the earlier key, got %v", got)
	}
	if got := track.Sample(100); got[0] != 2 {
		t.Errorf("InterpNone at key frame should return that key, got %v", got)
	}
}

func TestTrackSampleHermite(t *testing.T) {
	track := Track{
		Interp: InterpHermite,
		Keys: []Key{
			{Frame: 0, Data: []float32{0}, InTan: []float32{0}, OutTan: []float32{0}},
			{Frame: 100, Data: []float32{10}, InTan: []float32{0}, OutTan: []float32{0}},
		},
	}

	// Endpoints pass through the keys
	if got := track.Sample(0); !almostEqual(got[0], 0) {
		t.Errorf("hermite at first key should be 0, got %v", got)
	}
	if got := track.Sample(100); !almostEqual(got[0], 10) {
		t.Errorf("hermite at last key should be 10, got %v", got)
	}

	// Zero tangents: h1(0.5)=0.5, h2(0.5)=0.5 gives the midpoint
	if got := track.Sample(50); !almostEqual(got[0], 5) {
		t.Errorf("hermite midpoint with zero tangents should be 5, got %v", got)
	}
}

func TestTrackSampleRotationSlerp(t *testing.T) {
	// Identity to 90 degrees about Z
	track := Track{
		Interp:   InterpLinear,
		Rotation: true,
		Keys: []Key{
			{Frame: 0, Data: []float32{0, 0, 0, 1}},
			{Frame: 100, Data: []float32{0, 0, 0.70710678, 0.70710678}},
		},
	}

	mid := track.Sample(50)
	// Halfway is 45 degrees: q = (0, 0, sin(22.5), cos(22.5))
	wantZ := float32(math.Sin(math.Pi / 8))
	wantW := float32(math.Cos(math.Pi / 8))
	if !almostEqual(mid[2], wantZ) || !almostEqual(mid[3], wantW) {
		t.Errorf("rotation midpoint should be 45 degree quat, got %v", mid)
	}
}

func TestSampleTrackStaticChannel(t *testing.T) {
	tracks := []Track{{Interp: InterpLinear, Keys: []Key{{Frame: 0, Data: []float32{7}}}}}

	if got := sampleTrack(tracks, -1, 0); got != nil {
		t.Errorf("negative index should sample nil, got %v", got)
	}
	if got := sampleTrack(tracks, 5, 0); got != nil {
		t.Errorf("out-of-range index should sample nil, got %v", got)
	}
	if got := sampleTrack(tracks, 0, 0); got == nil || got[0] != 7 {
		t.Errorf("valid index should sample the track, got %v", got)
	}
}
