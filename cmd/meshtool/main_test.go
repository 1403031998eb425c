package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/pkg/formats"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func writeOBJ(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0644))
	return path
}

func TestConvertDefaultOutput(t *testing.T) {
	in := writeOBJ(t)

	var out bytes.Buffer
	require.NoError(t, cmdConvert(&out, []string{in}))
	assert.Contains(t, out.String(), "2 triangles")

	md, err := formats.ParseMeshFile(strings.TrimSuffix(in, ".obj") + ".mesh")
	require.NoError(t, err)
	assert.Equal(t, 6, md.VertexCount)
}

func TestConvertExplicitOutput(t *testing.T) {
	in := writeOBJ(t)
	dst := filepath.Join(t.TempDir(), "out.mesh")

	require.NoError(t, cmdConvert(&bytes.Buffer{}, []string{"-o", dst, in}))
	assert.FileExists(t, dst)
}

func TestConvertErrors(t *testing.T) {
	assert.Error(t, cmdConvert(&bytes.Buffer{}, nil))

	bad := filepath.Join(t.TempDir(), "bad.obj")
	require.NoError(t, os.WriteFile(bad, []byte("v 1 2\n"), 0644))
	assert.ErrorIs(t, cmdConvert(&bytes.Buffer{}, []string{bad}), formats.ErrInvalidOBJ)
}

func TestInfo(t *testing.T) {
	in := writeOBJ(t)
	var out bytes.Buffer
	require.NoError(t, cmdInfo(&out, []string{in}))

	s := out.String()
	assert.Contains(t, s, "Positions:  4")
	assert.Contains(t, s, "Faces:      6 vertices, 2 triangles")
	assert.Contains(t, s, "Bounds:     (0, 0, 0) .. (1, 1, 0)")
}

func TestInfoMalformedMeshNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mesh")
	require.NoError(t, os.WriteFile(path, []byte{5, 0, 0, 0, 1, 2}, 0644))

	err := cmdInfo(&bytes.Buffer{}, []string{path})
	var malformed *formats.MalformedAssetError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, path, malformed.Path)
}

func TestDump(t *testing.T) {
	in := writeOBJ(t)

	var out bytes.Buffer
	require.NoError(t, cmdDump(&out, []string{"-n", "2", in}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "pos (0, 0, 0)")
	assert.Contains(t, lines[1], "uv (1, -0)")
	assert.Equal(t, "... 4 more", lines[2])
}
