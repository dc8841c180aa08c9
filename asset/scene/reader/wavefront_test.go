package reader

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/achilleasa/lightbvh/asset"
	"github.com/achilleasa/lightbvh/types"
)

func mockResource(payload string) *asset.Resource {
	return asset.NewResourceFromStream("embedded", strings.NewReader(payload))
}

func approxVec3(a, b types.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestFloat32Parser(t *testing.T) {
	expError := `unsupported syntax for "KeScaler"; expected 1 argument; got 0`
	_, err := parseFloat32([]string{"KeScaler"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseFloat32([]string{"KeScaler", "not-a-float"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseFloat32([]string{"KeScaler", "3.14"})
	if err != nil {
		t.Fatal(err)
	}

	if v != 3.14 {
		t.Fatalf("expected parsed value to be 3.14; got %f", v)
	}
}

func TestVec3Parser(t *testing.T) {
	expError := `unsupported syntax for "v"; expected 3 arguments; got 0`
	_, err := parseVec3([]string{"v"})
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get %s; got %v", expError, err)
	}

	_, err = parseVec3([]string{"v", "not-a-float", "2", "3"})
	if err == nil {
		t.Fatal("expected to get a parse error")
	}

	v, err := parseVec3([]string{"v", "3.14", "0", "0.4"})
	if err != nil {
		t.Fatal(err)
	}

	expVal := types.Vec3{3.14, 0, 0.4}
	if !reflect.DeepEqual(v, expVal) {
		t.Fatalf("expected parsed value to be %v; got %v", expVal, v)
	}
}

func TestSelectFaceCoordinate(t *testing.T) {
	expError := "index out of bounds"
	type spec struct {
		in        string
		listLen   int
		relOffset int
		out       int
		expError  string
	}
	specs := []spec{
		{"2", 1, 0, -1, expError},
		{"-2", 1, 0, -1, expError},
		{"1", 10, 0, 0, ""}, // indices are 1-based
		{"-1", 10, 0, 9, ""},
		{"1", 10, 4, 4, ""}, // relative to the included file
		{"7", 10, 4, -1, expError},
	}

	for idx, s := range specs {
		v, err := selectFaceCoordIndex(s.in, s.listLen, s.relOffset)
		if s.expError != "" && (err == nil || err.Error() != s.expError) {
			t.Fatalf("[spec %d] expected error %s; got %v", idx, s.expError, err)
		} else if v != s.out {
			t.Fatalf("[spec %d] expected index to be %d; got %d", idx, s.out, v)
		}
	}
}

const triangleObj = `
o testObj
v 0 0 0
v 1 0 0
v 0 1 0
vn 1 0 0
vt 0 0
vn 0 1 0
vt 0 1
vn 0 1 0
vt 1 0
vn 0 0 1
# Comment
f 1/1/1 2/2/2 -1/-1/-1
`

func TestDefaultMeshInstanceGeneration(t *testing.T) {
	sc, err := newWavefrontReader().Read(mockResource(triangleObj))
	if err != nil {
		t.Fatal(err)
	}

	expMeshInstances := 1
	if len(sc.MeshInstances) != expMeshInstances {
		t.Fatalf("expected %d mesh instances to be generated; got %d", expMeshInstances, len(sc.MeshInstances))
	}
	if sc.ExplicitInstances {
		t.Fatalf("expected generated instances not to be flagged as explicit")
	}
	inst0 := sc.MeshInstances[0]
	if inst0.MeshIndex != 0 {
		t.Fatalf("expected mesh instance to point to mesh at index 0; got %d", inst0.MeshIndex)
	}
	if !reflect.DeepEqual(inst0.Transform, types.Ident4()) {
		t.Fatalf("expected mesh instance transform to be equal to a 4x4 identity matrix; got %v", inst0.Transform)
	}

	bbox := sc.InstanceBBox(inst0)
	if !approxVec3(bbox.Min, types.Vec3{0, 0, 0}, 1e-3) || !approxVec3(bbox.Max, types.Vec3{1, 1, 0}, 1e-3) {
		t.Fatalf("expected instance bbox [0 0 0] - [1 1 0]; got %v", bbox)
	}
}

func TestMeshInstancing(t *testing.T) {
	payload := triangleObj + `
# Mesh instances
instance testObj 	1 0 1	0 0 0 	1 1 1
instance testObj 	0 0 0	0 90 0 	1 1 1
instance testObj 	0 1 0	90 0 0	10 10 10
`

	sc, err := newWavefrontReader().Read(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	expMeshInstances := 3
	if len(sc.MeshInstances) != expMeshInstances {
		t.Fatalf("expected %d mesh instances to be generated; got %d", expMeshInstances, len(sc.MeshInstances))
	}
	if !sc.ExplicitInstances {
		t.Fatalf("expected instances to be flagged as explicit")
	}

	type spec struct {
		instance   uint32
		in, expOut types.Vec3
	}
	specs := []spec{
		{0, types.Vec3{0, 0, 0}, types.Vec3{1, 0, 1}},
		{0, types.Vec3{-1, 0, -1}, types.Vec3{0, 0, 0}},
		{1, types.Vec3{1, 0, 0}, types.Vec3{0, 0, -1}},
		{1, types.Vec3{0, 0, -1}, types.Vec3{-1, 0, 0}},
		// scale, then rotate about X and finally translate
		{2, types.Vec3{0, 1, 0}, types.Vec3{0, 1, 10}},
	}
	for idx, s := range specs {
		inst := sc.MeshInstances[s.instance]
		out := inst.Transform.TransformPoint(s.in)
		if !approxVec3(out, s.expOut, 1e-3) {
			t.Fatalf("[spec %d] expected transformed point with instance %d matrix to be %v; got %v", idx, s.instance, s.expOut, out)
		}
	}

	bbox := sc.InstanceBBox(sc.MeshInstances[0])
	if !approxVec3(bbox.Min, types.Vec3{1, 0, 1}, 1e-3) || !approxVec3(bbox.Max, types.Vec3{2, 1, 1}, 1e-3) {
		t.Fatalf("expected instance bbox [1 0 1] - [2 1 1]; got %v", bbox)
	}
}

func TestMeshInstanceErrors(t *testing.T) {
	specs := []struct {
		payload  string
		expError string
	}{
		{triangleObj + "instance testObj 1 2 3", `[embedded: 15] error: unsupported syntax for "instance"; expected 10 arguments`},
		{triangleObj + "instance unknown 0 0 0 0 0 0 1 1 1", `[embedded: 15] error: unknown mesh with name "unknown"`},
		{triangleObj + "instance testObj 0 0 0 0 0 0 1 foo 1", `[embedded: 15] error: strconv.ParseFloat`},
	}

	for idx, s := range specs {
		_, err := newWavefrontReader().Read(mockResource(s.payload))
		if err == nil || !strings.HasPrefix(err.Error(), s.expError) {
			t.Fatalf("[spec %d] expected error starting with %q; got %v", idx, s.expError, err)
		}
	}
}

func TestParseSingleFacedObject(t *testing.T) {
	r := newWavefrontReader()
	err := r.parse(mockResource(triangleObj))
	if err != nil {
		t.Fatal(err)
	}

	expMeshes := 1
	if len(r.rawScene.Meshes) != expMeshes {
		t.Fatalf("expected %d meshes to be parsed; got %d", expMeshes, len(r.rawScene.Meshes))
	}

	mesh0 := r.rawScene.Meshes[0]
	expName := "testObj"
	if mesh0.Name != expName {
		t.Fatalf("expected mesh[0] name to be '%s'; got %s", expName, mesh0.Name)
	}

	expPrimitives := 1
	if len(mesh0.Primitives) != expPrimitives {
		t.Fatalf("expected mesh[0] to contain %d primitives; got %d", expPrimitives, len(mesh0.Primitives))
	}

	expPoints := []types.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
	}
	expNormals := []types.Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	prim0 := mesh0.Primitives[0]
	for idx, exp := range expPoints {
		if !reflect.DeepEqual(prim0.Vertices[idx], exp) {
			t.Fatalf("expected vertex %d to be %v; got %v", idx, exp, prim0.Vertices[idx])
		}
	}
	for idx, exp := range expNormals {
		if !reflect.DeepEqual(prim0.Normals[idx], exp) {
			t.Fatalf("expected normal %d to be %v; got %v", idx, exp, prim0.Normals[idx])
		}
	}

	expCenter := types.Vec3{0.333, 0.333, 0}
	if !approxVec3(prim0.Center(), expCenter, 1e-3) {
		t.Fatalf("expected face center to be %v; got %v", expCenter, prim0.Center())
	}
	bbox := prim0.BBox()
	if !approxVec3(bbox.Min, types.Vec3{0, 0, 0}, 1e-3) || !approxVec3(bbox.Max, types.Vec3{1, 1, 0}, 1e-3) {
		t.Fatalf("expected bbox [0 0 0] - [1 1 0]; got %v", bbox)
	}
}

func TestParseQuadFaceWithoutNormals(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	r := newWavefrontReader()
	if err := r.parse(mockResource(payload)); err != nil {
		t.Fatal(err)
	}

	if len(r.rawScene.Meshes) != 1 || r.rawScene.Meshes[0].Name != "default" {
		t.Fatalf("expected a default mesh to be created")
	}
	prims := r.rawScene.Meshes[0].Primitives
	if len(prims) != 2 {
		t.Fatalf("expected quad to be split into 2 triangles; got %d", len(prims))
	}
	if prims[1].Vertices[2] != (types.Vec3{0, 1, 0}) {
		t.Fatalf("expected second triangle to use vertices 0, 2, 3; got %v", prims[1].Vertices)
	}
	for idx, prim := range prims {
		if prim.FaceNormal() != (types.Vec3{0, 0, 1}) {
			t.Fatalf("[prim %d] expected generated normal (0, 0, 1); got %v", idx, prim.FaceNormal())
		}
	}
}

func TestParseFaceErrors(t *testing.T) {
	specs := []struct {
		payload  string
		expError string
	}{
		{"v 0 0 0\nf 1 1", `[embedded: 2] error: unsupported syntax for "f"`},
		{"v 0 0 0\nf 1 2 3", `[embedded: 2] error: could not parse vertex coord for face argument 1: index out of bounds`},
		{"v 0 0 0\nf 1 1/1 1", `[embedded: 2] error: expected each face argument to contain 1 indices; arg 1 contains 2 indices`},
		{"v 0 0 0\nf 1/1 1/1 1/1", `[embedded: 2] error: could not parse tex coord for face argument 0: index out of bounds`},
		{"v 0 0 0\nusemtl foo", `[embedded: 2] error: undefined material with name "foo"`},
		{"v 0 0", `[embedded: 1] error: unsupported syntax for "v"; expected 3 arguments; got 2`},
	}

	for idx, s := range specs {
		err := newWavefrontReader().parse(mockResource(s.payload))
		if err == nil || !strings.HasPrefix(err.Error(), s.expError) {
			t.Fatalf("[spec %d] expected error starting with %q; got %v", idx, s.expError, err)
		}
	}
}

func TestEmptyMeshesAreDropped(t *testing.T) {
	payload := "o empty\no lamp\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\no trailing\n"
	r := newWavefrontReader()
	if err := r.parse(mockResource(payload)); err != nil {
		t.Fatal(err)
	}

	if len(r.rawScene.Meshes) != 1 || r.rawScene.Meshes[0].Name != "lamp" {
		t.Fatalf("expected only the lamp mesh to be kept; got %d meshes", len(r.rawScene.Meshes))
	}
}

func TestMaterialLoaderMissingNewMaterialCommand(t *testing.T) {
	payload := `Ke 1.0 1.0 1.0`
	err := newWavefrontReader().parseMaterials(mockResource(payload))

	expError := `[embedded: 1] error: got "Ke" without a "newmtl"`
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get error: %s; got %v", expError, err)
	}
}

func TestMaterialLoaderInvalidVec3Param(t *testing.T) {
	payload := `
	newmtl foo
	Ke 1.0`
	err := newWavefrontReader().parseMaterials(mockResource(payload))

	expError := `[embedded: 3] error: unsupported syntax for "Ke"; expected 3 arguments; got 1`
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get error: %s; got %v", expError, err)
	}
}

func TestMaterialLoaderInvalidScalarParam(t *testing.T) {
	payload := `
	newmtl foo
	KeScaler`
	err := newWavefrontReader().parseMaterials(mockResource(payload))

	expError := `[embedded: 3] error: unsupported syntax for "KeScaler"; expected 1 argument; got 0`
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get error: %s; got %v", expError, err)
	}
}

func TestMaterialLoaderDuplicateAndUnknownInclude(t *testing.T) {
	err := newWavefrontReader().parseMaterials(mockResource("newmtl foo\nnewmtl foo"))
	expError := `[embedded: 2] error: material "foo" already defined`
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get error: %s; got %v", expError, err)
	}

	err = newWavefrontReader().parseMaterials(mockResource("newmtl foo\ninclude bar"))
	expError = `[embedded: 2] error: could not include unknown material "bar"`
	if err == nil || err.Error() != expError {
		t.Fatalf("expected to get error: %s; got %v", expError, err)
	}
}

func TestMaterialLoaderSuccess(t *testing.T) {
	payload := `
	# comment
	newmtl foo
	Kd 1.0 1.0 1.0
	Ks 0.1 0.2 0.3
	Ke 0.4    0.5 0.6
	KeScaler 10
	Ni 2.5

	newmtl bar
	include foo
	KeScaler 2`
	r := newWavefrontReader()
	err := r.parseMaterials(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	if len(r.materials) != 2 {
		t.Fatalf("expected to parse 2 materials; got %d", len(r.materials))
	}

	foo, bar := r.materials[0], r.materials[1]
	if foo.Name != "foo" || bar.Name != "bar" {
		t.Fatalf("expected materials foo and bar; got %s and %s", foo.Name, bar.Name)
	}
	expKe := types.Vec3{0.4, 0.5, 0.6}
	if !reflect.DeepEqual(foo.Ke, expKe) || foo.KeScaler != 10 {
		t.Fatalf("expected foo Ke %v and scaler 10; got %v and %f", expKe, foo.Ke, foo.KeScaler)
	}
	if !reflect.DeepEqual(bar.Ke, expKe) || bar.KeScaler != 2 {
		t.Fatalf("expected bar to include foo's Ke and override the scaler; got %v and %f", bar.Ke, bar.KeScaler)
	}
}

func TestReadRemoteSceneWithIncludes(t *testing.T) {
	files := map[string]string{
		"/scene.obj": "mtllib lights.mtl\ncall lamp.obj\ninstance lamp 0 0 0 0 0 0 1 1 1\ninstance lamp 0 5 0 0 0 0 2 2 2\n",
		"/lamp.obj":  "o floor\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\no lamp\nusemtl light\nv 0 0 1\nv 1 0 1\nv 0 1 1\nf 4 5 6\n",
		"/lights.mtl": "newmtl unused\nKe 9 9 9\nnewmtl light\nKe 1 0.5 0\nKeScaler 4\n",
		"/bad.obj":    "mtllib bad.mtl\n",
		"/bad.mtl":    "newmtl light\nKe 1 1\n",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, exists := files[r.URL.Path]
		if !exists {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	sc, err := ReadScene(server.URL + "/scene.obj")
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Meshes) != 2 || len(sc.MeshInstances) != 2 || !sc.ExplicitInstances {
		t.Fatalf("expected 2 meshes and 2 explicit instances; got %d and %d", len(sc.Meshes), len(sc.MeshInstances))
	}

	// The floor uses the default material; the unused material is pruned.
	if len(sc.Materials) != 2 {
		t.Fatalf("expected 2 materials after pruning; got %d", len(sc.Materials))
	}
	lampMat := sc.Materials[sc.Meshes[1].Primitives[0].MaterialIndex]
	if lampMat.Name != "light" || !lampMat.IsEmissive() || lampMat.KeScaler != 4 {
		t.Fatalf("expected lamp to use the emissive light material; got %+v", lampMat)
	}
	floorMat := sc.Materials[sc.Meshes[0].Primitives[0].MaterialIndex]
	if floorMat.IsEmissive() {
		t.Fatalf("expected floor to use a non-emissive material")
	}

	_, err = ReadScene(server.URL + "/bad.obj")
	if err == nil {
		t.Fatalf("expected an error")
	}
	expLines := []string{
		"[" + server.URL + "/bad.mtl: 2] error: unsupported syntax for \"Ke\"; expected 3 arguments; got 2",
		"referenced from " + server.URL + "/bad.obj:1 [mtllib]",
	}
	if lines := strings.Split(err.Error(), "\n"); !reflect.DeepEqual(lines, expLines) {
		t.Fatalf("expected error lines %q; got %q", expLines, lines)
	}
}

func TestReadLocalScene(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scene.obj"), []byte(triangleObj), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := ReadScene(filepath.Join(dir, "scene.obj"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Meshes) != 1 || len(sc.Materials) != 1 || sc.Materials[0].IsEmissive() {
		t.Fatalf("expected a single mesh using the default material")
	}

	if _, err = ReadScene(filepath.Join(dir, "missing.obj")); err == nil {
		t.Fatalf("expected an error for a missing scene")
	}

	if err := os.WriteFile(filepath.Join(dir, "scene.ply"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	expError := `readScene: unsupported file format ".ply"`
	if _, err = ReadScene(filepath.Join(dir, "scene.ply")); err == nil || err.Error() != expError {
		t.Fatalf("expected to get error: %s; got %v", expError, err)
	}
}
