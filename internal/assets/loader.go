package assets

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/entity"
	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/mesh"
	"github.com/Faultbox/lumen/internal/logger"
	"github.com/Faultbox/lumen/pkg/formats"
)

// completion is a finished fetch and decode waiting for the render thread.
type completion struct {
	path  string
	apply func()
	fail  func(error)
	err   error
}

// Loader fetches and decodes assets in background goroutines and applies
// the results on the goroutine that calls Pump, which must be the one that
// owns the graphics device. Every load completes exactly once, with either
// its value or its error. Loads are neither deduplicated nor cancelled; when
// two loads target the same entity the last one applied wins.
type Loader struct {
	fetcher Fetcher
	dev     gfx.Device
	log     *zap.Logger

	results chan completion
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	// Owned by the render thread.
	pending int
	reloads map[string][]func()
}

// NewLoader creates a loader that uploads to dev.
func NewLoader(dev gfx.Device, fetcher Fetcher) *Loader {
	return &Loader{
		fetcher: fetcher,
		dev:     dev,
		log:     logger.Named("assets"),
		results: make(chan completion, 64),
		done:    make(chan struct{}),
		reloads: make(map[string][]func()),
	}
}

// LoadMesh fetches and decodes a mesh file. done receives the uploaded mesh
// or the error; a decode error is a *formats.MalformedAssetError.
func (l *Loader) LoadMesh(ctx context.Context, path string, done func(*mesh.Mesh, error)) {
	l.start(ctx, path,
		func(data []byte) (func(), error) {
			md, err := formats.ParseMesh(data)
			if err != nil {
				var malformed *formats.MalformedAssetError
				if errors.As(err, &malformed) && malformed.Path == "" {
					malformed.Path = path
				}
				return nil, err
			}
			return func() { done(mesh.New(l.dev, md), nil) }, nil
		},
		func(err error) { done(nil, err) },
	)
}

// LoadTexture fetches and decodes the image at tex.Path and uploads it into
// tex. On failure tex keeps its placeholder.
func (l *Loader) LoadTexture(ctx context.Context, tex *material.Texture, done func(error)) {
	l.start(ctx, tex.Path,
		func(data []byte) (func(), error) {
			img, err := material.Decode(tex.Path, data)
			if err != nil {
				return nil, err
			}
			return func() {
				tex.Apply(l.dev, img)
				done(nil)
			}, nil
		},
		done,
	)
}

func (l *Loader) start(ctx context.Context, path string, decode func([]byte) (func(), error), fail func(error)) {
	l.pending++
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		c := completion{path: path, fail: fail}
		data, err := l.fetcher.Fetch(ctx, path)
		if err == nil {
			c.apply, err = decode(data)
		}
		c.err = err

		select {
		case l.results <- c:
		case <-l.done:
		}
	}()
}

// Pump applies every load that has completed so far and returns how many
// it applied. It never blocks.
func (l *Loader) Pump() int {
	n := 0
	for {
		select {
		case c := <-l.results:
			l.finish(c)
			n++
		default:
			return n
		}
	}
}

// Flush blocks until every load issued so far has been applied.
func (l *Loader) Flush(ctx context.Context) error {
	for l.pending > 0 {
		select {
		case c := <-l.results:
			l.finish(c)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (l *Loader) finish(c completion) {
	l.pending--
	if c.err != nil {
		c.fail(c.err)
		return
	}
	c.apply()
}

// Pending returns the number of loads not yet applied.
func (l *Loader) Pending() int {
	return l.pending
}

// AttachMesh loads path into e.Mesh. On failure the error is logged and the
// entity keeps whatever mesh it had.
func (l *Loader) AttachMesh(ctx context.Context, e *entity.Entity, path string) {
	load := func() {
		l.LoadMesh(ctx, path, func(m *mesh.Mesh, err error) {
			if err != nil {
				l.log.Error("failed to load mesh",
					zap.Stringer("entity", e.ID),
					zap.String("path", path),
					zap.Error(err),
				)
				return
			}
			e.Mesh = m
			l.log.Debug("mesh loaded",
				zap.Stringer("entity", e.ID),
				zap.String("path", path),
				zap.Int("vertices", m.VertexCount),
			)
		})
	}
	l.register(path, load)
	load()
}

// AttachTexture binds a placeholder texture to channel c of e's material
// and loads path into it. It must be called on the render thread.
func (l *Loader) AttachTexture(ctx context.Context, e *entity.Entity, c material.Channel, path string) *material.Texture {
	if e.Material == nil {
		e.Material = &material.Material{}
	}
	tex := material.NewTexture(l.dev, path)
	e.Material.SetTexture(c, tex)

	load := func() {
		l.LoadTexture(ctx, tex, func(err error) {
			if err != nil {
				l.log.Error("failed to load texture",
					zap.Stringer("entity", e.ID),
					zap.Stringer("channel", c),
					zap.String("path", path),
					zap.Error(err),
				)
				return
			}
			l.log.Debug("texture loaded",
				zap.Stringer("entity", e.ID),
				zap.Stringer("channel", c),
				zap.String("path", path),
				zap.Int("width", tex.Width),
				zap.Int("height", tex.Height),
			)
		})
	}
	l.register(path, load)
	load()
	return tex
}

func (l *Loader) register(path string, load func()) {
	l.reloads[path] = append(l.reloads[path], load)
}

// Reload drops path from the fetcher's cache, if it has one, and issues
// every attached load of path again. It returns the number of loads issued.
func (l *Loader) Reload(path string) int {
	if inv, ok := l.fetcher.(interface{ Invalidate(string) }); ok {
		inv.Invalidate(path)
	}
	loads := l.reloads[path]
	for _, load := range loads {
		load()
	}
	if len(loads) > 0 {
		l.log.Info("reloading asset", zap.String("path", path), zap.Int("users", len(loads)))
	}
	return len(loads)
}

// Close stops delivering results and waits for in-flight fetches to end.
// Fetches honour their context; Close does not cancel them.
func (l *Loader) Close() {
	l.once.Do(func() { close(l.done) })
	l.wg.Wait()
}
