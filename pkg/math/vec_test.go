package math

import "testing"

func TestVec3Cross(t *testing.T) {
	x := Vec3{X: 1, Y: 0, Z: 0}
	y := Vec3{X: 0, Y: 1, Z: 0}
	z := x.Cross(y)
	if z.X != 0 || z.Y != 0 || z.Z != 1 {
		t.Errorf("X cross Y should be Z, got (%v,%v,%v)", z.X, z.Y, z.Z)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{X: 3, Y: 0, Z: 4}
	n := v.Normalize()
	if abs32(n.Length()-1.0) > 0.0001 {
		t.Errorf("normalized length should be 1, got %v", n.Length())
	}

	zero := Vec3{}.Normalize()
	if zero.X != 0 || zero.Y != 0 || zero.Z != 0 {
		t.Errorf("normalizing zero vector should return zero, got %+v", zero)
	}
}

func TestVec3Distance(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}
	if d := a.Distance(b); abs32(d-5) > 0.0001 {
		t.Errorf("distance should be 5, got %v", d)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{X: 0, Y: 0, Z: 0}
	b := Vec3{X: 2, Y: 4, Z: -6}
	mid := a.Lerp(b, 0.5)
	if mid.X != 1 || mid.Y != 2 || mid.Z != -3 {
		t.Errorf("lerp at 0.5 should be midpoint, got %+v", mid)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("lerp at 0 should be start, got %+v", got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("lerp at 1 should be end, got %+v", got)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
