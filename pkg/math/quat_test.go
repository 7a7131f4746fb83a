package math

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tol float64) bool {
	return a.DistanceSq(b) <= tol*tol
}

func TestQuatIdentity(t *testing.T) {
	v := V3(1, 2, 3)
	if got := QuatIdentity().Rotate(v); !vecNear(got, v, 1e-12) {
		t.Errorf("identity rotation changed vector: %v", got)
	}
	if got := (Quat{}).Rotate(v); got != v {
		t.Errorf("zero quaternion should act as identity, got %v", got)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Z maps +X to +Y
	q := QuatFromAxisAngle(V3(0, 0, 1), math.Pi/2)
	got := q.Rotate(V3(1, 0, 0))
	if !vecNear(got, V3(0, 1, 0), 1e-9) {
		t.Errorf("Rotate(+X) = %v, want +Y", got)
	}
}

func TestQuatInverse(t *testing.T) {
	q := Rotator{Pitch: 10, Yaw: 35, Roll: -20}.Quat()
	v := V3(100, -40, 7)
	back := q.Inverse().Rotate(q.Rotate(v))
	if !vecNear(back, v, 1e-9) {
		t.Errorf("inverse did not undo rotation: %v != %v", back, v)
	}
}

func TestRotatorYaw(t *testing.T) {
	q := Rotator{Yaw: 90}.Quat()
	got := q.Rotate(V3(1, 0, 0))
	if !vecNear(got, V3(0, 1, 0), 1e-9) {
		t.Errorf("yaw 90 Rotate(+X) = %v, want +Y", got)
	}
}

func TestRotatorOrder(t *testing.T) {
	// roll first, then pitch, then yaw
	r := Rotator{Pitch: 30, Yaw: 60, Roll: 45}
	want := QuatFromAxisAngle(V3(0, 0, 1), 60*math.Pi/180).
		Mul(QuatFromAxisAngle(V3(0, 1, 0), 30*math.Pi/180)).
		Mul(QuatFromAxisAngle(V3(1, 0, 0), 45*math.Pi/180))
	if !r.Quat().ApproxEqual(want, 1e-9) {
		t.Errorf("Rotator.Quat() = %v, want %v", r.Quat(), want)
	}
}

func TestQuatApproxEqualSign(t *testing.T) {
	q := Rotator{Yaw: 20}.Quat()
	neg := Quat{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
	if !q.ApproxEqual(neg, 1e-12) {
		t.Error("q and -q should be the same rotation")
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := NewTransform(V3(500, -200, 30), Rotator{Yaw: 33, Pitch: 5}.Quat())
	p := V3(12, 34, 56)
	w := tr.TransformPosition(p)
	if back := tr.InverseTransformPosition(w); !vecNear(back, p, 1e-9) {
		t.Errorf("InverseTransformPosition = %v, want %v", back, p)
	}
	if back := tr.Inverse().TransformPosition(w); !vecNear(back, p, 1e-9) {
		t.Errorf("Inverse().TransformPosition = %v, want %v", back, p)
	}
}

func TestTransformBox(t *testing.T) {
	tr := NewTransform(V3(0, 0, 0), Rotator{Yaw: 90}.Quat())
	b := TransformBox(tr, BoxFromCenter(Vec3{}, V3(200, 100, 50)))
	if !vecNear(b.Max, V3(100, 200, 50), 1e-9) || !vecNear(b.Min, V3(-100, -200, -50), 1e-9) {
		t.Errorf("TransformBox = %+v", b)
	}
}

func TestBoxContains(t *testing.T) {
	b := BoxFromCenter(V3(0, 0, 0), V3(1, 1, 1))
	if !b.Contains(V3(1, 0, -1)) {
		t.Error("faces should be inclusive")
	}
	if b.Contains(V3(1.01, 0, 0)) {
		t.Error("point outside should not be contained")
	}
	if !EmptyBox().IsEmpty() {
		t.Error("EmptyBox should be empty")
	}
}
