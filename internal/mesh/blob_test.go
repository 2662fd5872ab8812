package mesh

import (
	"bytes"
	"encoding/binary"
	"math"
)

// blob builds synthetic little-endian mesh streams for tests.
type blob struct {
	bytes.Buffer
}

func (b *blob) u8(v uint8)   { b.WriteByte(v) }
func (b *blob) u16(v uint16) { binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *blob) u32(v uint32) { binary.Write(&b.Buffer, binary.LittleEndian, v) }
func (b *blob) f32(vs ...float32) {
	for _, v := range vs {
		b.u32(math.Float32bits(v))
	}
}

func (b *blob) name(s string) {
	field := make([]byte, boneNameLen)
	copy(field, s)
	b.Write(field)
}

type testBone struct {
	parent uint8
	name   string
	mat    [16]float32
}

type testMesh struct {
	bones     []testBone
	submeshes []Submesh
	vertices  int
	faces     [][3]uint16
	extra     bool
	skinned   bool
}

// build writes a complete stream. UVs are (i, -i) for vertex i of each
// UV-bearing submesh.
func (tm testMesh) build() []byte {
	var b blob
	b.WriteString("MESHv001")
	if tm.bones == nil {
		b.u32(0)
	} else {
		b.u32(1)
		b.u16(uint16(len(tm.bones)))
		for _, bn := range tm.bones {
			b.u8(bn.parent)
		}
		for _, bn := range tm.bones {
			b.name(bn.name)
		}
		for _, bn := range tm.bones {
			b.f32(bn.mat[:]...)
		}
		b.u8(0)
	}

	b.u32(0xDEADBEEF)
	for _, s := range tm.submeshes {
		b.u32(s.VertexCount)
		b.u32(s.FaceCount)
		b.u8(s.UVLayers)
		b.u8(s.ColorChannels)
	}
	b.u16(1)

	b.u32(uint32(tm.vertices))
	b.u32(uint32(len(tm.faces)))
	for i := 0; i < tm.vertices; i++ {
		b.f32(float32(i), float32(i)+0.5, float32(-i))
	}
	for i := 0; i < tm.vertices; i++ {
		b.f32(0, 1, 0)
	}
	if tm.extra {
		b.u16(1)
		for i := 0; i < tm.vertices; i++ {
			b.f32(9, 9, 9)
		}
	} else {
		b.u16(0)
	}
	for _, f := range tm.faces {
		b.u16(f[0])
		b.u16(f[1])
		b.u16(f[2])
	}
	for _, s := range tm.submeshes {
		if s.UVLayers == 0 {
			continue
		}
		for i := 0; i < int(s.VertexCount); i++ {
			b.f32(float32(i), float32(-i))
		}
		for l := 1; l < int(s.UVLayers); l++ {
			for i := 0; i < int(s.VertexCount); i++ {
				b.f32(7, 7)
			}
		}
	}
	for _, s := range tm.submeshes {
		b.Write(make([]byte, int(s.VertexCount)*4*int(s.ColorChannels)))
	}
	if tm.bones != nil {
		for i := 0; i < tm.vertices; i++ {
			b.Write([]byte{0, 1, 2, 3})
		}
		for i := 0; i < tm.vertices; i++ {
			b.f32(0.4, 0.3, 0.2, 0.1)
		}
	}
	return b.Bytes()
}

func identity16() [16]float32 {
	return [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}
