package types

import (
	"testing"

	"github.com/chewxy/math32"
)

func approxVec3(a, b Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if math32.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestNormalizeZeroVector(t *testing.T) {
	if got := (Vec3{}).Normalize(); !got.IsZero() {
		t.Fatalf("expected zero vector to stay zero; got %v", got)
	}

	got := XYZ(3, 0, 4).Normalize()
	if !approxVec3(got, XYZ(0.6, 0, 0.8), 1e-6) {
		t.Fatalf("expected (0.6, 0, 0.8); got %v", got)
	}
}

func TestMinMaxVec3(t *testing.T) {
	a := XYZ(1, -2, 3)
	b := XYZ(-1, 5, 3)

	if got := MinVec3(a, b); got != XYZ(-1, -2, 3) {
		t.Fatalf("expected min (-1, -2, 3); got %v", got)
	}
	if got := MaxVec3(a, b); got != XYZ(1, 5, 3) {
		t.Fatalf("expected max (1, 5, 3); got %v", got)
	}
	if got := a.MaxComponent(); got != 3 {
		t.Fatalf("expected max component 3; got %f", got)
	}
}

func TestLerp(t *testing.T) {
	a := XYZ(0, 0, 4)
	b := XYZ(4, 0, 0)

	if got := a.Lerp(b, 0); got != a {
		t.Fatalf("expected %v; got %v", a, got)
	}
	if got := a.Lerp(b, 0.25); got != XYZ(1, 0, 3) {
		t.Fatalf("expected (1, 0, 3); got %v", got)
	}
}

func TestOctahedralRoundTrip(t *testing.T) {
	dirs := []Vec3{
		XYZ(1, 0, 0),
		XYZ(-1, 0, 0),
		XYZ(0, 1, 0),
		XYZ(0, -1, 0),
		XYZ(0, 0, 1),
		XYZ(0, 0, -1),
		XYZ(1, 1, 1).Normalize(),
		XYZ(-1, 2, -3).Normalize(),
		XYZ(0.3, -0.2, -0.9).Normalize(),
	}

	for index, dir := range dirs {
		enc := EncodeOctahedral(dir)
		if math32.Abs(enc[0]) > 1 || math32.Abs(enc[1]) > 1 {
			t.Fatalf("[dir %d] expected encoding inside [-1, 1]^2; got %v", index, enc)
		}
		if got := DecodeOctahedral(enc); !approxVec3(got, dir, 1e-5) {
			t.Fatalf("[dir %d] expected decoded direction %v; got %v", index, dir, got)
		}
	}

	if enc := EncodeOctahedral(Vec3{}); enc != (Vec2{}) {
		t.Fatalf("expected zero vector to encode to origin; got %v", enc)
	}
}

func TestAxisAngleRotation(t *testing.T) {
	rot := AxisAngle4(XYZ(0, 0, 2), math32.Pi/2)
	if got := rot.TransformDir(XYZ(1, 0, 0)); !approxVec3(got, XYZ(0, 1, 0), 1e-6) {
		t.Fatalf("expected +X to rotate onto +Y; got %v", got)
	}
}

func TestTRS(t *testing.T) {
	m := TRS(XYZ(1, 2, 3), Vec3{}, XYZ(2, 2, 2))
	if got := m.TransformPoint(XYZ(1, 1, 1)); !approxVec3(got, XYZ(3, 4, 5), 1e-6) {
		t.Fatalf("expected (3, 4, 5); got %v", got)
	}
	if got := m.TransformDir(XYZ(1, 0, 0)); !approxVec3(got, XYZ(2, 0, 0), 1e-6) {
		t.Fatalf("expected translation to be ignored for directions; got %v", got)
	}
	if got := m.Inv().TransformPoint(XYZ(3, 4, 5)); !approxVec3(got, XYZ(1, 1, 1), 1e-5) {
		t.Fatalf("expected inverse transform to restore (1, 1, 1); got %v", got)
	}

	yaw := TRS(Vec3{}, XYZ(math32.Pi/2, 0, 0), XYZ(1, 1, 1))
	if got := yaw.TransformDir(XYZ(0, 1, 0)); !approxVec3(got, XYZ(0, 0, 1), 1e-6) {
		t.Fatalf("expected yaw to rotate +Y onto +Z; got %v", got)
	}
}
