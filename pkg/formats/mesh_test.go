package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// quadSource is two triangles sharing an edge, with distinct texcoords.
func quadSource() *MeshSource {
	return &MeshSource{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}},
		TexCoords: [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Faces: []FaceVertex{
			{1, 1, 1}, {2, 2, 1}, {3, 3, 1},
			{1, 1, 1}, {3, 3, 1}, {4, 4, 1},
		},
	}
}

func encodeMesh(t *testing.T, src *MeshSource) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := WriteMesh(buf, src); err != nil {
		t.Fatalf("WriteMesh failed: %v", err)
	}
	return buf.Bytes()
}

func TestParseMesh_ValidFile(t *testing.T) {
	data := encodeMesh(t, quadSource())

	mesh, err := ParseMesh(data)
	if err != nil {
		t.Fatalf("ParseMesh failed: %v", err)
	}

	if mesh.VertexCount != 6 {
		t.Errorf("expected 6 vertices, got %d", mesh.VertexCount)
	}
	if len(mesh.Positions) != 18 {
		t.Errorf("expected 18 position floats, got %d", len(mesh.Positions))
	}
	if len(mesh.Normals) != 18 {
		t.Errorf("expected 18 normal floats, got %d", len(mesh.Normals))
	}
	if len(mesh.TexCoords) != 12 {
		t.Errorf("expected 12 texcoord floats, got %d", len(mesh.TexCoords))
	}
}

func TestParseMesh_Layout(t *testing.T) {
	// Hand-assembled to pin the byte layout independently of WriteMesh.
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(1))
	binary.Write(buf, binary.LittleEndian, []float32{1, 2, 3})
	binary.Write(buf, binary.LittleEndian, int32(1))
	binary.Write(buf, binary.LittleEndian, []float32{0, 1, 0})
	binary.Write(buf, binary.LittleEndian, int32(1))
	binary.Write(buf, binary.LittleEndian, []float32{0.25, 0.75})
	binary.Write(buf, binary.LittleEndian, int32(3))
	for i := 0; i < 3; i++ {
		binary.Write(buf, binary.LittleEndian, []int16{1, 1, 1})
	}

	mesh, err := ParseMesh(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseMesh failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		p := mesh.Positions[i*3 : i*3+3]
		if p[0] != 1 || p[1] != 2 || p[2] != 3 {
			t.Errorf("vertex %d position: got %v", i, p)
		}
		n := mesh.Normals[i*3 : i*3+3]
		if n[0] != 0 || n[1] != 1 || n[2] != 0 {
			t.Errorf("vertex %d normal: got %v", i, n)
		}
		uv := mesh.TexCoords[i*2 : i*2+2]
		if uv[0] != 0.25 || uv[1] != -0.75 {
			t.Errorf("vertex %d texcoord: got %v, want [0.25 -0.75]", i, uv)
		}
	}
}

func TestParseMesh_FlipsV(t *testing.T) {
	src := quadSource()
	mesh, err := ParseMesh(encodeMesh(t, src))
	if err != nil {
		t.Fatalf("ParseMesh failed: %v", err)
	}

	for i, f := range src.Faces {
		want := src.TexCoords[f.T-1]
		gotU, gotV := mesh.TexCoords[i*2], mesh.TexCoords[i*2+1]
		if gotU != want[0] || gotV != -want[1] {
			t.Errorf("face vertex %d: got (%v, %v), want (%v, %v)", i, gotU, gotV, want[0], -want[1])
		}
	}
}

func TestParseMesh_Idempotent(t *testing.T) {
	data := encodeMesh(t, quadSource())

	a, err := ParseMesh(data)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	b, err := ParseMesh(data)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if a.VertexCount != b.VertexCount {
		t.Fatalf("vertex count differs: %d vs %d", a.VertexCount, b.VertexCount)
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] || a.Normals[i] != b.Normals[i] {
			t.Fatalf("stream differs at %d", i)
		}
	}
	for i := range a.TexCoords {
		if a.TexCoords[i] != b.TexCoords[i] {
			t.Fatalf("texcoords differ at %d", i)
		}
	}
}

func TestParseMesh_Empty(t *testing.T) {
	mesh, err := ParseMesh(encodeMesh(t, &MeshSource{}))
	if err != nil {
		t.Fatalf("ParseMesh failed: %v", err)
	}
	if mesh.VertexCount != 0 {
		t.Errorf("expected 0 vertices, got %d", mesh.VertexCount)
	}
}

func TestParseMesh_IndexOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		face FaceVertex
	}{
		{"zero vertex", FaceVertex{0, 1, 1}},
		{"vertex past end", FaceVertex{5, 1, 1}},
		{"negative texcoord", FaceVertex{1, -1, 1}},
		{"texcoord past end", FaceVertex{1, 5, 1}},
		{"normal past end", FaceVertex{1, 1, 2}},
		{"zero normal", FaceVertex{1, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := quadSource()
			src.Faces[4] = tt.face

			mesh, err := ParseMesh(encodeMesh(t, src))
			if mesh != nil {
				t.Error("expected no mesh on error")
			}
			var malformed *MalformedAssetError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedAssetError, got %v", err)
			}
			if !errors.Is(err, ErrMeshIndexOutOfRange) {
				t.Errorf("expected ErrMeshIndexOutOfRange, got %v", err)
			}
		})
	}
}

func TestParseMesh_Truncated(t *testing.T) {
	data := encodeMesh(t, quadSource())

	for _, cut := range []int{0, 3, 4, 20, 60, len(data) - 1} {
		mesh, err := ParseMesh(data[:cut])
		if mesh != nil {
			t.Errorf("cut %d: expected no mesh", cut)
		}
		if !errors.Is(err, ErrTruncatedMeshData) {
			t.Errorf("cut %d: expected ErrTruncatedMeshData, got %v", cut, err)
		}
	}
}

func TestParseMesh_NegativeCount(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(-1))

	_, err := ParseMesh(buf.Bytes())
	if !errors.Is(err, ErrInvalidMeshCount) {
		t.Fatalf("expected ErrInvalidMeshCount, got %v", err)
	}
}

func TestParseMesh_HugeCountDoesNotAllocate(t *testing.T) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(1<<31-1))

	_, err := ParseMesh(buf.Bytes())
	var malformed *MalformedAssetError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedAssetError, got %v", err)
	}
	if malformed.Offset != 4 {
		t.Errorf("expected offset 4, got %d", malformed.Offset)
	}
}

func TestParseMesh_TrailingBytesIgnored(t *testing.T) {
	data := append(encodeMesh(t, quadSource()), 0xde, 0xad)
	if _, err := ParseMesh(data); err != nil {
		t.Fatalf("ParseMesh failed: %v", err)
	}
}

func TestWriteMeshRoundTrip(t *testing.T) {
	src := quadSource()
	got, err := ReadMeshSource(encodeMesh(t, src))
	if err != nil {
		t.Fatalf("ReadMeshSource failed: %v", err)
	}

	if len(got.Positions) != 4 || len(got.Normals) != 1 || len(got.TexCoords) != 4 || len(got.Faces) != 6 {
		t.Fatalf("pool sizes: %d/%d/%d/%d", len(got.Positions), len(got.Normals), len(got.TexCoords), len(got.Faces))
	}
	for i := range src.Faces {
		if got.Faces[i] != src.Faces[i] {
			t.Errorf("face %d: got %v, want %v", i, got.Faces[i], src.Faces[i])
		}
	}
}

func TestParseMeshFile_SetsPath(t *testing.T) {
	src := quadSource()
	src.Faces[0].V = 9
	path := filepath.Join(t.TempDir(), "bad.mesh")
	if err := os.WriteFile(path, encodeMesh(t, src), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ParseMeshFile(path)
	var malformed *MalformedAssetError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedAssetError, got %v", err)
	}
	if malformed.Path != path {
		t.Errorf("expected path %q, got %q", path, malformed.Path)
	}
}

func TestMeshSourceBounds(t *testing.T) {
	src := &MeshSource{Positions: [][3]float32{{-1, 2, 3}, {4, -5, 6}, {0, 0, -7}}}
	min, max := src.Bounds()
	if min != [3]float32{-1, -5, -7} {
		t.Errorf("min: got %v", min)
	}
	if max != [3]float32{4, 2, 6} {
		t.Errorf("max: got %v", max)
	}
}
