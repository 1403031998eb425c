package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/internal/engine/entity"
	"github.com/Faultbox/lumen/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/mesh"
	"github.com/Faultbox/lumen/pkg/formats"
)

func triangleMesh(t *testing.T) []byte {
	t.Helper()
	src := &formats.MeshSource{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}},
		TexCoords: [][2]float32{{0, 0}, {1, 0}, {0, 1}},
		Faces: []formats.FaceVertex{
			{V: 1, T: 1, N: 1}, {V: 2, T: 2, N: 1}, {V: 3, T: 3, N: 1},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, formats.WriteMesh(&buf, src))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, root, name string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, data, 0644))
}

func flush(t *testing.T, l *Loader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Flush(ctx))
}

// countingFetcher counts calls to the wrapped fetcher.
type countingFetcher struct {
	Fetcher
	calls atomic.Int32
}

func (c *countingFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	c.calls.Add(1)
	return c.Fetcher.Fetch(ctx, path)
}

func TestFileSystemFetch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "models/a.mesh", []byte("abc"))

	fsys := FileSystem{Root: root}
	data, err := fsys.Fetch(context.Background(), "models/a.mesh")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	_, err = fsys.Fetch(context.Background(), "models/missing.mesh")
	assert.ErrorIs(t, err, ErrNotFound)

	// Parent references are clamped to the root.
	writeFile(t, root, "a.mesh", []byte("root"))
	data, err = fsys.Fetch(context.Background(), "../../a.mesh")
	require.NoError(t, err)
	assert.Equal(t, []byte("root"), data)
}

func TestFileSystemFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FileSystem{Root: t.TempDir()}.Fetch(ctx, "a.mesh")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/horns.mesh":
			w.Write([]byte("mesh-bytes"))
		case "/assets/broken.mesh":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL+"/assets", time.Second)

	data, err := h.Fetch(context.Background(), "horns.mesh")
	require.NoError(t, err)
	assert.Equal(t, []byte("mesh-bytes"), data)

	_, err = h.Fetch(context.Background(), "nope.mesh")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.Fetch(context.Background(), "broken.mesh")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPFetchHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTP(srv.URL, 0).Fetch(ctx, "slow.mesh")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("a")
	assert.False(t, ok)
	c.Set("a", []byte{1})
	data, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte{1}, data)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Invalidate("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Clear()
	hits, misses = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestCachedFetcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.png", []byte("v1"))

	src := &countingFetcher{Fetcher: FileSystem{Root: root}}
	f := NewCachedFetcher(src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := f.Fetch(ctx, "a.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), data)
	}
	assert.Equal(t, int32(1), src.calls.Load())

	writeFile(t, root, "a.png", []byte("v2"))
	f.Invalidate("a.png")
	data, err := f.Fetch(ctx, "a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	_, err = f.Fetch(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.Fetch(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(4), src.calls.Load(), "errors are not cached")
}

func TestNewFetcherPicksSource(t *testing.T) {
	assert.IsType(t, FileSystem{}, NewFetcher("assets", "", 0).Source)
	assert.IsType(t, &HTTP{}, NewFetcher("assets", "http://localhost/a", time.Second).Source)
}

func TestAttachMesh(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tri.mesh", triangleMesh(t))

	rec := gfxtest.NewRecorder()
	l := NewLoader(rec, FileSystem{Root: root})
	defer l.Close()

	e := entity.New("tri")
	l.AttachMesh(context.Background(), e, "tri.mesh")
	assert.Nil(t, e.Mesh, "mesh is only applied by Pump")
	assert.Equal(t, 1, l.Pending())

	flush(t, l)
	require.NotNil(t, e.Mesh)
	assert.Equal(t, 3, e.Mesh.VertexCount)
	assert.Zero(t, l.Pending())

	pos, _, _ := e.Mesh.Buffers()
	assert.Len(t, rec.Buffers[pos], 9)
}

func TestLoadMeshMalformed(t *testing.T) {
	root := t.TempDir()
	data := triangleMesh(t)
	writeFile(t, root, "bad.mesh", data[:len(data)-3])

	l := NewLoader(gfxtest.NewRecorder(), FileSystem{Root: root})
	defer l.Close()

	var got error
	var called int
	l.LoadMesh(context.Background(), "bad.mesh", func(m *mesh.Mesh, err error) {
		called++
		assert.Nil(t, m)
		got = err
	})
	flush(t, l)

	assert.Equal(t, 1, called)
	var malformed *formats.MalformedAssetError
	require.ErrorAs(t, got, &malformed)
	assert.Equal(t, "bad.mesh", malformed.Path)
}

func TestAttachMeshFailureKeepsPreviousMesh(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.mesh", triangleMesh(t))

	rec := gfxtest.NewRecorder()
	l := NewLoader(rec, FileSystem{Root: root})
	defer l.Close()

	e := entity.New("e")
	l.AttachMesh(context.Background(), e, "good.mesh")
	flush(t, l)
	prev := e.Mesh
	require.NotNil(t, prev)

	l.AttachMesh(context.Background(), e, "missing.mesh")
	flush(t, l)
	assert.Same(t, prev, e.Mesh)
}

func TestAttachTexture(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Albedo.png", pngBytes(t, 4, 4))

	rec := gfxtest.NewRecorder()
	l := NewLoader(rec, FileSystem{Root: root})
	defer l.Close()

	e := entity.New("e")
	tex := l.AttachTexture(context.Background(), e, material.Albedo, "Albedo.png")
	require.NotNil(t, e.Material)
	assert.Same(t, tex, e.Material.Albedo)
	assert.False(t, tex.Ready())
	assert.Equal(t, []byte{0, 0, 255, 255}, rec.Textures[tex.ID].Pixels)

	flush(t, l)
	assert.True(t, tex.Ready())
	assert.Equal(t, 4, rec.Textures[tex.ID].Width)
	assert.True(t, rec.Textures[tex.ID].Mipmapped)
}

func TestAttachTextureFailureKeepsPlaceholder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "garbage.png", []byte("not an image"))

	rec := gfxtest.NewRecorder()
	l := NewLoader(rec, FileSystem{Root: root})
	defer l.Close()

	e := entity.New("e")
	bad := l.AttachTexture(context.Background(), e, material.Normal, "garbage.png")
	missing := l.AttachTexture(context.Background(), e, material.AO, "missing.png")
	flush(t, l)

	for _, tex := range []*material.Texture{bad, missing} {
		assert.False(t, tex.Ready())
		assert.Equal(t, 1, rec.Textures[tex.ID].Width)
	}
}

func TestLoadTextureReportsError(t *testing.T) {
	l := NewLoader(gfxtest.NewRecorder(), FileSystem{Root: t.TempDir()})
	defer l.Close()

	tex := material.NewTexture(gfxtest.NewRecorder(), "missing.png")
	var got error
	l.LoadTexture(context.Background(), tex, func(err error) { got = err })
	flush(t, l)
	assert.ErrorIs(t, got, ErrNotFound)
}

func TestLastAppliedWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.mesh", triangleMesh(t))

	l := NewLoader(gfxtest.NewRecorder(), FileSystem{Root: root})
	defer l.Close()

	var order []int
	for i := 0; i < 5; i++ {
		l.LoadMesh(context.Background(), "a.mesh", func(m *mesh.Mesh, err error) {
			require.NoError(t, err)
			order = append(order, i)
		})
	}
	flush(t, l)
	assert.Len(t, order, 5, "every load completes exactly once")
}

func TestPumpNeverBlocks(t *testing.T) {
	l := NewLoader(gfxtest.NewRecorder(), FileSystem{Root: t.TempDir()})
	defer l.Close()
	assert.Zero(t, l.Pump())
}

func TestFlushHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	slow := fetcherFunc(func(ctx context.Context, path string) ([]byte, error) {
		<-block
		return nil, errors.New("late")
	})

	l := NewLoader(gfxtest.NewRecorder(), slow)
	l.LoadMesh(context.Background(), "a.mesh", func(*mesh.Mesh, error) {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Flush(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, l.Pending())
}

type fetcherFunc func(ctx context.Context, path string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, path string) ([]byte, error) {
	return f(ctx, path)
}

func TestReload(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.png", pngBytes(t, 2, 2))
	writeFile(t, root, "a.mesh", triangleMesh(t))

	rec := gfxtest.NewRecorder()
	src := &countingFetcher{Fetcher: FileSystem{Root: root}}
	l := NewLoader(rec, NewCachedFetcher(src))
	defer l.Close()

	e1, e2 := entity.New("one"), entity.New("two")
	ctx := context.Background()
	tex1 := l.AttachTexture(ctx, e1, material.Albedo, "a.png")
	tex2 := l.AttachTexture(ctx, e2, material.Albedo, "a.png")
	l.AttachMesh(ctx, e1, "a.mesh")
	flush(t, l)
	before := src.calls.Load()

	writeFile(t, root, "a.png", pngBytes(t, 8, 8))
	assert.Equal(t, 2, l.Reload("a.png"))
	flush(t, l)

	assert.Greater(t, src.calls.Load(), before, "reload bypasses the cache")
	assert.Equal(t, 8, tex1.Width)
	assert.Equal(t, 8, tex2.Width)
	assert.Equal(t, 8, rec.Textures[tex1.ID].Width)

	assert.Zero(t, l.Reload("unknown.png"))
}

func TestWatcherReportsChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0755))

	w, err := NewWatcher(root)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, root, "models/a.mesh", []byte("x"))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-w.Changes():
			if p == "models/a.mesh" {
				return
			}
		case <-deadline:
			t.Fatal("no change reported for models/a.mesh")
		}
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, open := <-w.Changes()
	assert.False(t, open)
}
