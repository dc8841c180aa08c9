package lightbvh

import (
	"testing"

	"github.com/achilleasa/lightbvh/types"
	"github.com/chewxy/math32"
)

func approxVec3(a, b types.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestTriangleLightBound(t *testing.T) {
	opts := DefaultOptions()
	light := NewTriangleLight(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0), types.XYZ(0, 0, 1), 2)

	got := light.Bound(&opts)
	if got.Box.Min != types.XYZ(0, 0, -1e-4) || got.Box.Max != types.XYZ(1, 1, 1e-4) {
		t.Fatalf("expected box inflated along Z only; got %v", got.Box)
	}
	if got.Axis != types.XYZ(0, 0, -1) {
		t.Fatalf("expected cone axis to be the negated normal; got %v", got.Axis)
	}
	if got.CosThetaO != 1 || got.CosThetaE != math32.Cos(math32.Pi/2) {
		t.Fatalf("expected cos(0) normal cone and cos(pi/2) emission; got %f, %f", got.CosThetaO, got.CosThetaE)
	}
	if got.Power != 1 || got.Count != 1 {
		t.Fatalf("expected power 1 and count 1; got %f and %d", got.Power, got.Count)
	}
}

func TestTriangleLightLobe(t *testing.T) {
	opts := DefaultOptions()
	light := NewTriangleLight(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0), types.XYZ(0, 0, 2), 2)

	got := light.Lobe(&opts)
	if got.Axis != types.XYZ(0, 0, -1) {
		t.Fatalf("expected unit length negated normal axis; got %v", got.Axis)
	}
	if !approxVec3(got.Center, types.XYZ(1.0/3, 1.0/3, 0), 1e-6) {
		t.Fatalf("expected centroid center; got %v", got.Center)
	}
	if math32.Abs(got.Variance-1.0/9) > 1e-6 {
		t.Fatalf("expected variance 1/9; got %f", got.Variance)
	}
	if math32.Abs(got.Radius-math32.Sqrt(5)/3) > 1e-6 {
		t.Fatalf("expected radius sqrt(5)/3; got %f", got.Radius)
	}
	if got.Intensity != 1 {
		t.Fatalf("expected intensity 1; got %f", got.Intensity)
	}
	if got.Sharpness != lobeSharpness(1, opts.MaxLobeAxisLength) {
		t.Fatalf("expected clamped sharpness; got %f", got.Sharpness)
	}

	opts.LeafAxisScale = 0.5
	if got := light.Lobe(&opts); got.Axis != types.XYZ(0, 0, -0.5) || got.Sharpness != lobeSharpness(0.5, opts.MaxLobeAxisLength) {
		t.Fatalf("expected scaled leaf axis; got %v", got.Axis)
	}
}

func TestInstancedClusterLobe(t *testing.T) {
	template := Lobe{
		Axis:      types.XYZ(0, 0.5, 0),
		Variance:  0.25,
		Center:    types.XYZ(1, 0, 0),
		Radius:    2,
		Intensity: 3,
		Sharpness: 1.5,
	}

	ident := InstancedCluster{Transform: types.Ident4(), Template: template}
	if got := ident.Lobe(nil); got != template {
		t.Fatalf("expected identity transform to keep the template; got %+v", got)
	}

	m := types.TRS(types.XYZ(0, 0, 10), types.XYZ(math32.Pi/2, 0, 0), types.XYZ(3, 3, 3))
	got := InstancedCluster{Transform: m, Template: template}.Lobe(nil)

	if !approxVec3(got.Center, types.XYZ(3, 0, 10), 1e-5) {
		t.Fatalf("expected transformed center (3, 0, 10); got %v", got.Center)
	}
	if !approxVec3(got.Axis, types.XYZ(0, 0, 0.5), 1e-5) {
		t.Fatalf("expected rotated axis with preserved length; got %v", got.Axis)
	}
	if math32.Abs(got.Radius-6) > 1e-4 || math32.Abs(got.Variance-0.75) > 1e-5 || math32.Abs(got.Intensity-9) > 1e-4 {
		t.Fatalf("expected radius, variance and intensity scaled by 3; got %+v", got)
	}
	if got.Sharpness != template.Sharpness {
		t.Fatalf("expected template sharpness to be kept; got %f", got.Sharpness)
	}

	tilted := template
	tilted.Axis = types.XYZ(-1, 0, -1).Normalize().Mul(0.8)
	got = InstancedCluster{Transform: types.Scale4(types.XYZ(4, 1, 1)), Template: tilted}.Lobe(nil)
	if exp := types.XYZ(-0.25, 0, -1).Normalize().Mul(0.8); !approxVec3(got.Axis, exp, 1e-5) {
		t.Fatalf("expected non-uniformly scaled axis %v; got %v", exp, got.Axis)
	}

	template.Radius = 0
	got = InstancedCluster{Transform: m, Template: template}.Lobe(nil)
	if got.Intensity != template.Intensity || got.Variance != template.Variance {
		t.Fatalf("expected zero radius template to use scale 1; got %+v", got)
	}
}

func TestInstancedClusterBound(t *testing.T) {
	mesh, err := Build(randomTriangles(4, 2), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	m := types.TRS(types.XYZ(5, 0, 0), types.Vec3{}, types.XYZ(2, 2, 2))
	cluster := NewInstancedCluster(mesh.Root, mesh.Lobes[0].Lobe, m)
	got := cluster.Bound(nil)

	if !approxVec3(got.Box.Min, mesh.Root.Box.Min.Mul(2).Add(types.XYZ(5, 0, 0)), 1e-4) {
		t.Fatalf("expected transformed box min; got %v", got.Box.Min)
	}
	if got.Power != mesh.Root.Power*4 || got.Count != mesh.Root.Count {
		t.Fatalf("expected power scaled by 4 and count kept; got %f and %d", got.Power, got.Count)
	}
	if got.CosThetaO != mesh.Root.CosThetaO {
		t.Fatalf("expected cone angle to be kept")
	}
}
