// Package mesh holds triangle-soup meshes uploaded to the graphics device.
package mesh

import (
	"github.com/Faultbox/lumen/internal/engine/gfx"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/pkg/formats"
)

// Mesh is a non-indexed triangle list. Positions and Normals hold three
// floats per vertex, TexCoords two. A Mesh may be shared by many entities.
type Mesh struct {
	VertexCount int
	Positions   []float32
	Normals     []float32
	TexCoords   []float32

	positionBuf gfx.Buffer
	texCoordBuf gfx.Buffer
	normalBuf   gfx.Buffer
}

// New uploads decoded mesh data to dev. The buffers live as long as the process.
func New(dev gfx.Device, data *formats.MeshData) *Mesh {
	m := &Mesh{
		VertexCount: data.VertexCount,
		Positions:   data.Positions,
		Normals:     data.Normals,
		TexCoords:   data.TexCoords,
	}
	m.positionBuf = upload(dev, m.Positions)
	m.texCoordBuf = upload(dev, m.TexCoords)
	m.normalBuf = upload(dev, m.Normals)
	return m
}

func upload(dev gfx.Device, data []float32) gfx.Buffer {
	b := dev.CreateBuffer()
	dev.BindBuffer(b)
	dev.BufferData(data)
	return b
}

// Bind points the program's position, texcoord and normal attributes at
// this mesh's buffers.
func (m *Mesh) Bind(dev gfx.Device, attribs shader.Attribs) {
	dev.BindBuffer(m.positionBuf)
	dev.VertexAttribPointer(attribs.Position, 3)
	dev.EnableVertexAttribArray(attribs.Position)

	dev.BindBuffer(m.texCoordBuf)
	dev.VertexAttribPointer(attribs.TexCoord, 2)
	dev.EnableVertexAttribArray(attribs.TexCoord)

	dev.BindBuffer(m.normalBuf)
	dev.VertexAttribPointer(attribs.Normal, 3)
	dev.EnableVertexAttribArray(attribs.Normal)
}

// Draw issues the draw call for every vertex.
func (m *Mesh) Draw(dev gfx.Device) {
	dev.DrawArrays(0, m.VertexCount)
}

// Buffers returns the position, texcoord and normal buffer handles.
func (m *Mesh) Buffers() (position, texCoord, normal gfx.Buffer) {
	return m.positionBuf, m.texCoordBuf, m.normalBuf
}
