package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidOBJ is returned for Wavefront OBJ input that cannot be imported.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// ParseOBJ imports the geometry of a Wavefront OBJ file (v, vt, vn and f
// records). Polygons are triangulated as fans around their first vertex.
// Negative indices are resolved relative to the end of their pool.
// Faces without a texcoord reference a shared (0, 0) texcoord; faces
// without normals get a flat face normal. Other records are ignored.
func ParseOBJ(r io.Reader) (*MeshSource, error) {
	src := &MeshSource{}
	zeroUV := int16(0)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			src.Positions = append(src.Positions, [3]float32{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			src.Normals = append(src.Normals, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			src.TexCoords = append(src.TexCoords, [2]float32{v[0], v[1]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrInvalidOBJ, line)
			}
			corners := make([]FaceVertex, 0, len(fields)-1)
			missingNormal := false
			for _, ref := range fields[1:] {
				fv, hasT, hasN, err := src.parseFaceRef(ref)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				if !hasT {
					if zeroUV == 0 {
						if err := checkPoolSize(len(src.TexCoords) + 1); err != nil {
							return nil, fmt.Errorf("line %d: %w", line, err)
						}
						src.TexCoords = append(src.TexCoords, [2]float32{})
						zeroUV = int16(len(src.TexCoords))
					}
					fv.T = zeroUV
				}
				missingNormal = missingNormal || !hasN
				corners = append(corners, fv)
			}
			if missingNormal {
				if err := checkPoolSize(len(src.Normals) + 1); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				src.Normals = append(src.Normals, src.faceNormal(corners))
				n := int16(len(src.Normals))
				for i := range corners {
					corners[i].N = n
				}
			}
			for i := 1; i+1 < len(corners); i++ {
				src.Faces = append(src.Faces, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	return src, nil
}

// ParseOBJFile imports a Wavefront OBJ file from disk.
func ParseOBJFile(path string) (*MeshSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

// parseFaceRef parses "v", "v/t", "v//n" or "v/t/n".
func (s *MeshSource) parseFaceRef(ref string) (fv FaceVertex, hasT, hasN bool, err error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 || parts[0] == "" {
		return fv, false, false, fmt.Errorf("%w: bad face vertex %q", ErrInvalidOBJ, ref)
	}

	if fv.V, err = resolveIndex(parts[0], len(s.Positions)); err != nil {
		return fv, false, false, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if fv.T, err = resolveIndex(parts[1], len(s.TexCoords)); err != nil {
			return fv, false, false, err
		}
		hasT = true
	}
	if len(parts) > 2 && parts[2] != "" {
		if fv.N, err = resolveIndex(parts[2], len(s.Normals)); err != nil {
			return fv, false, false, err
		}
		hasN = true
	}
	return fv, hasT, hasN, nil
}

// resolveIndex turns an OBJ index (1-based, or negative relative to the
// current pool size) into a 1-based int16 pool index.
func resolveIndex(field string, poolSize int) (int16, error) {
	i, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index %q", ErrInvalidOBJ, field)
	}
	if i < 0 {
		i = poolSize + i + 1
	}
	if i < 1 || i > poolSize {
		return 0, fmt.Errorf("%w: index %s with %d entries", ErrMeshIndexOutOfRange, field, poolSize)
	}
	if i > MaxMeshIndex {
		return 0, fmt.Errorf("%w: index %d exceeds %d", ErrMeshIndexOutOfRange, i, MaxMeshIndex)
	}
	return int16(i), nil
}

func checkPoolSize(n int) error {
	if n > MaxMeshIndex {
		return fmt.Errorf("%w: pool of %d entries exceeds %d", ErrMeshIndexOutOfRange, n, MaxMeshIndex)
	}
	return nil
}

// faceNormal computes the unit normal of the first three corners.
func (s *MeshSource) faceNormal(corners []FaceVertex) [3]float32 {
	a := s.Positions[corners[0].V-1]
	b := s.Positions[corners[1].V-1]
	c := s.Positions[corners[2].V-1]

	u := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	n := [3]float32{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
	length := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
	if length == 0 {
		return n
	}
	return [3]float32{n[0] / length, n[1] / length, n[2] / length}
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}
