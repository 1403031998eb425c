// Package formats provides decoders and encoders for the engine's asset formats.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Mesh format errors.
var (
	ErrTruncatedMeshData   = errors.New("truncated mesh data")
	ErrMeshIndexOutOfRange = errors.New("mesh index out of range")
	ErrInvalidMeshCount    = errors.New("invalid mesh count")
)

// MaxMeshIndex is the largest 1-based pool index a face vertex can hold.
const MaxMeshIndex = 1<<15 - 1

// MalformedAssetError reports an asset that could not be decoded.
// Err is one of the sentinel errors above, possibly with context.
type MalformedAssetError struct {
	Path   string // empty when decoding from memory
	Offset int64  // byte offset where decoding stopped
	Err    error
}

func (e *MalformedAssetError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("malformed asset %s at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed asset at offset %d: %v", e.Offset, e.Err)
}

func (e *MalformedAssetError) Unwrap() error {
	return e.Err
}

// FaceVertex is one corner of a triangle: 1-based indices into the
// position, texcoord and normal pools.
type FaceVertex struct {
	V, T, N int16
}

// MeshSource is the indexed form of a mesh as stored on disk.
type MeshSource struct {
	Positions [][3]float32
	Normals   [][3]float32
	TexCoords [][2]float32
	Faces     []FaceVertex
}

// MeshData is an expanded triangle soup ready for upload.
// Positions and Normals hold 3 floats per vertex, TexCoords hold 2.
type MeshData struct {
	VertexCount int
	Positions   []float32
	Normals     []float32
	TexCoords   []float32
}

// ParseMesh decodes a mesh binary and expands it into flat attribute streams.
//
// Layout (little-endian):
//
//	int32 nV, nV × (f32 x, y, z)
//	int32 nN, nN × (f32 x, y, z)
//	int32 nT, nT × (f32 u, v)
//	int32 nF, nF × (i16 v, i16 t, i16 n)
//
// Any failure returns a *MalformedAssetError and no mesh.
func ParseMesh(data []byte) (*MeshData, error) {
	src, err := ReadMeshSource(data)
	if err != nil {
		return nil, err
	}
	return src.Expand()
}

// ParseMeshFile decodes a mesh binary from disk.
func ParseMeshFile(path string) (*MeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	mesh, err := ParseMesh(data)
	if err != nil {
		var malformed *MalformedAssetError
		if errors.As(err, &malformed) {
			malformed.Path = path
		}
		return nil, err
	}
	return mesh, nil
}

// ReadMeshSource decodes the raw pools and face list without expanding them.
// Indices are not validated here; see Expand. Trailing bytes are ignored.
func ReadMeshSource(data []byte) (*MeshSource, error) {
	r := bytes.NewReader(data)
	src := &MeshSource{}

	n, err := readMeshCount(r, 12, "vertex")
	if err != nil {
		return nil, err
	}
	src.Positions = make([][3]float32, n)
	if err := binary.Read(r, binary.LittleEndian, src.Positions); err != nil {
		return nil, truncated(r, data, "reading vertices")
	}

	n, err = readMeshCount(r, 12, "normal")
	if err != nil {
		return nil, err
	}
	src.Normals = make([][3]float32, n)
	if err := binary.Read(r, binary.LittleEndian, src.Normals); err != nil {
		return nil, truncated(r, data, "reading normals")
	}

	n, err = readMeshCount(r, 8, "texcoord")
	if err != nil {
		return nil, err
	}
	src.TexCoords = make([][2]float32, n)
	if err := binary.Read(r, binary.LittleEndian, src.TexCoords); err != nil {
		return nil, truncated(r, data, "reading texcoords")
	}

	n, err = readMeshCount(r, 6, "face vertex")
	if err != nil {
		return nil, err
	}
	src.Faces = make([]FaceVertex, n)
	if err := binary.Read(r, binary.LittleEndian, src.Faces); err != nil {
		return nil, truncated(r, data, "reading faces")
	}

	return src, nil
}

// readMeshCount reads an int32 element count and checks that the remaining
// input can hold count elements of elemSize bytes before anything is allocated.
func readMeshCount(r *bytes.Reader, elemSize int, what string) (int, error) {
	offset := r.Size() - int64(r.Len())

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, &MalformedAssetError{
			Offset: offset,
			Err:    fmt.Errorf("%w: reading %s count", ErrTruncatedMeshData, what),
		}
	}
	if count < 0 {
		return 0, &MalformedAssetError{
			Offset: offset,
			Err:    fmt.Errorf("%w: %s count %d", ErrInvalidMeshCount, what, count),
		}
	}
	if int64(count)*int64(elemSize) > int64(r.Len()) {
		return 0, &MalformedAssetError{
			Offset: offset + 4,
			Err: fmt.Errorf("%w: %d %s entries need %d bytes, %d left",
				ErrTruncatedMeshData, count, what, int64(count)*int64(elemSize), r.Len()),
		}
	}
	return int(count), nil
}

func truncated(r *bytes.Reader, data []byte, context string) error {
	return &MalformedAssetError{
		Offset: int64(len(data) - r.Len()),
		Err:    fmt.Errorf("%w: %s", ErrTruncatedMeshData, context),
	}
}

// Expand resolves every face vertex into the flat attribute streams.
// The V texture coordinate is negated. An index that is out of range after
// subtracting one (0 included) fails the whole mesh.
func (s *MeshSource) Expand() (*MeshData, error) {
	for i, f := range s.Faces {
		if err := s.checkFaceVertex(f); err != nil {
			return nil, &MalformedAssetError{
				Offset: s.faceOffset(i),
				Err:    fmt.Errorf("face vertex %d: %w", i, err),
			}
		}
	}

	n := len(s.Faces)
	out := &MeshData{
		VertexCount: n,
		Positions:   make([]float32, 0, n*3),
		Normals:     make([]float32, 0, n*3),
		TexCoords:   make([]float32, 0, n*2),
	}
	for _, f := range s.Faces {
		p := s.Positions[f.V-1]
		nr := s.Normals[f.N-1]
		t := s.TexCoords[f.T-1]
		out.Positions = append(out.Positions, p[0], p[1], p[2])
		out.Normals = append(out.Normals, nr[0], nr[1], nr[2])
		out.TexCoords = append(out.TexCoords, t[0], -t[1])
	}
	return out, nil
}

func (s *MeshSource) checkFaceVertex(f FaceVertex) error {
	if f.V < 1 || int(f.V) > len(s.Positions) {
		return fmt.Errorf("%w: vertex %d of %d", ErrMeshIndexOutOfRange, f.V, len(s.Positions))
	}
	if f.T < 1 || int(f.T) > len(s.TexCoords) {
		return fmt.Errorf("%w: texcoord %d of %d", ErrMeshIndexOutOfRange, f.T, len(s.TexCoords))
	}
	if f.N < 1 || int(f.N) > len(s.Normals) {
		return fmt.Errorf("%w: normal %d of %d", ErrMeshIndexOutOfRange, f.N, len(s.Normals))
	}
	return nil
}

// faceOffset is the byte offset of face vertex i in the encoded form.
func (s *MeshSource) faceOffset(i int) int64 {
	header := 4*4 + len(s.Positions)*12 + len(s.Normals)*12 + len(s.TexCoords)*8
	return int64(header + i*6)
}

// Bounds returns the axis-aligned bounds of the position pool.
func (s *MeshSource) Bounds() (min, max [3]float32) {
	if len(s.Positions) == 0 {
		return min, max
	}
	min, max = s.Positions[0], s.Positions[0]
	for _, p := range s.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// TriangleCount returns the number of whole triangles in the face list.
func (s *MeshSource) TriangleCount() int {
	return len(s.Faces) / 3
}

// WriteMesh encodes src in the layout read by ReadMeshSource.
func WriteMesh(w io.Writer, src *MeshSource) error {
	for _, pool := range []struct {
		name  string
		count int
	}{
		{"vertex", len(src.Positions)},
		{"normal", len(src.Normals)},
		{"texcoord", len(src.TexCoords)},
		{"face vertex", len(src.Faces)},
	} {
		if pool.count > 1<<31-1 {
			return fmt.Errorf("%w: %d %s entries", ErrInvalidMeshCount, pool.count, pool.name)
		}
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(len(src.Positions)))
	binary.Write(buf, binary.LittleEndian, src.Positions)
	binary.Write(buf, binary.LittleEndian, int32(len(src.Normals)))
	binary.Write(buf, binary.LittleEndian, src.Normals)
	binary.Write(buf, binary.LittleEndian, int32(len(src.TexCoords)))
	binary.Write(buf, binary.LittleEndian, src.TexCoords)
	binary.Write(buf, binary.LittleEndian, int32(len(src.Faces)))
	binary.Write(buf, binary.LittleEndian, src.Faces)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing mesh: %w", err)
	}
	return nil
}
