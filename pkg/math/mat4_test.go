package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	v := m.TransformVec3(Vec3{X: 1, Y: 2, Z: 3})
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("identity should preserve point, got %+v", v)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(10, 20, 30)
	v := m.TransformVec3(Vec3{X: 1, Y: 1, Z: 1})
	if v.X != 11 || v.Y != 21 || v.Z != 31 {
		t.Errorf("translate failed, got %+v", v)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	v := m.TransformVec3(Vec3{X: 1})
	if math.Abs(float64(v.X)) > 0.0001 || math.Abs(float64(v.Z+1)) > 0.0001 {
		t.Errorf("rotating +X by 90 about Y should give -Z, got %+v", v)
	}
}

func TestLookAt(t *testing.T) {
	// Camera at +Z looking at origin: origin projects in front of the camera
	m := LookAt(Vec3{Z: 10}, Vec3{}, Vec3{Y: 1})
	v := m.TransformVec3(Vec3{})
	if math.Abs(float64(v.Z+10)) > 0.001 {
		t.Errorf("origin should be 10 units in front of camera, got %+v", v)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(float32(math.Pi/4), 1.0, 1.0, 100.0)

	near := p.TransformVec3(Vec3{Z: -1})
	far := p.TransformVec3(Vec3{Z: -100})
	if math.Abs(float64(near.Z+1)) > 0.001 {
		t.Errorf("near plane should map to -1, got %v", near.Z)
	}
	if math.Abs(float64(far.Z-1)) > 0.001 {
		t.Errorf("far plane should map to +1, got %v", far.Z)
	}
}
