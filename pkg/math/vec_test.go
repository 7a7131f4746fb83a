package math

import (
	"math"
	"testing"
)

func TestVec3Add(t *testing.T) {
	got := V3(1, 2, 3).Add(V3(4, 5, 6))
	want := V3(5, 7, 9)
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	got := V3(1, 0, 0).Cross(V3(0, 1, 0))
	want := V3(0, 0, 1)
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := V3(2, 3, 6)
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
	if got := v.LengthSq(); got != 49 {
		t.Errorf("Vec3.LengthSq() = %v, want 49", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 4, 12).Normalize()
	if l := n.Length(); math.Abs(l-1) > 1e-12 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", z)
	}
}

func TestVec3DistanceSq(t *testing.T) {
	a, b := V3(1, 1, 1), V3(4, 5, 1)
	if got := a.DistanceSq(b); got != 25 {
		t.Errorf("DistanceSq = %v, want 25", got)
	}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance = %v, want 5", got)
	}
}

func TestVec3Div(t *testing.T) {
	if got := V3(2, 4, 6).Div(2); got != V3(1, 2, 3) {
		t.Errorf("Div = %v", got)
	}
	if got := V3(2, 4, 6).Div(0); got != (Vec3{}) {
		t.Errorf("Div by zero = %v, want zero vector", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0.25, 0.25},
		{3, 1},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.25); got != 12.5 {
		t.Errorf("Lerp = %v, want 12.5", got)
	}
}
