package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	result0 := q1.Slerp(q2, 0)
	if math.Abs(float64(result0.W-q1.W)) > 0.001 {
		t.Errorf("slerp at t=0 should equal q1")
	}

	result1 := q1.Slerp(q2, 1)
	if math.Abs(float64(result1.W-q2.W)) > 0.001 {
		t.Errorf("slerp at t=1 should equal q2")
	}

	// For a 90 degree rotation, halfway is 45 degrees
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(result5.W-expectedW)) > 0.01 {
		t.Errorf("slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatSlerpShortestPath(t *testing.T) {
	// q and -q are the same rotation; slerp must not take the long way around
	q1 := QuatFromAxisAngle(Vec3{Y: 1}, 0.1)
	q2 := QuatFromAxisAngle(Vec3{Y: 1}, 0.3)
	neg := Quat{X: -q2.X, Y: -q2.Y, Z: -q2.Z, W: -q2.W}

	a := q1.Slerp(q2, 0.5)
	b := q1.Slerp(neg, 0.5)
	if math.Abs(math.Abs(float64(a.Dot(b)))-1.0) > 0.001 {
		t.Errorf("slerp with negated target should give the same rotation: dot=%v", a.Dot(b))
	}
}

func TestQuatToMat3Identity(t *testing.T) {
	m := QuatIdentity().ToMat3()
	identity := Mat3Identity()
	for i := 0; i < 9; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("identity quat should produce identity matrix, element %d: got %v", i, m[i])
		}
	}
}

func TestQuatToMat3RotateZ90(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2))
	m := q.ToMat3()

	// Rotating +X by 90 degrees about Z gives +Y
	v := m.MulVec3(Vec3{X: 1})
	if math.Abs(float64(v.X)) > 0.001 || math.Abs(float64(v.Y-1)) > 0.001 || math.Abs(float64(v.Z)) > 0.001 {
		t.Errorf("90 degree Z rotation of +X should be +Y, got (%v,%v,%v)", v.X, v.Y, v.Z)
	}
}

func TestQuatMul(t *testing.T) {
	// Two 45 degree rotations about Y compose to 90 degrees
	half := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/4))
	full := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))

	composed := half.Mul(half)
	if math.Abs(float64(composed.Dot(full))-1.0) > 0.001 {
		t.Errorf("composed rotation should equal 90 degree rotation: dot=%v", composed.Dot(full))
	}
}
