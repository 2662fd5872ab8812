package mesh

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// cursor is a forward-only little-endian reader. Every read either
// consumes exactly the requested bytes or fails with a *TruncatedError
// naming the current step.
type cursor struct {
	data []byte
	off  int
	step Step
}

func (c *cursor) enter(s Step) { c.step = s }

func (c *cursor) remaining() int { return len(c.data) - c.off }

// need fails unless n more bytes are available. n is computed in int64
// so that counts read from the file cannot overflow.
func (c *cursor) need(n int64) error {
	if n < 0 || n > int64(c.remaining()) {
		need := n
		if need > math.MaxInt32 || need < 0 {
			need = math.MaxInt32
		}
		return &TruncatedError{Step: c.step, Offset: c.off, Need: int(need), Have: c.remaining()}
	}
	return nil
}

func (c *cursor) take(n int64) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	b := c.data[c.off : c.off+int(n)]
	c.off += int(n)
	return b, nil
}

func (c *cursor) skip(n int64) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.off += int(n)
	return nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) peekU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(c.data[c.off:]), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// The bulk readers below check the whole run up front so that a bad
// count fails before anything is allocated.

func (c *cursor) vec3s(n int) ([]mgl32.Vec3, error) {
	b, err := c.take(int64(n) * 12)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, n)
	for i := range out {
		out[i] = mgl32.Vec3{f32(b[i*12:]), f32(b[i*12+4:]), f32(b[i*12+8:])}
	}
	return out, nil
}

func (c *cursor) vec2s(dst []mgl32.Vec2, n int) ([]mgl32.Vec2, error) {
	b, err := c.take(int64(n) * 8)
	if err != nil {
		return dst, err
	}
	for i := 0; i < n; i++ {
		dst = append(dst, mgl32.Vec2{f32(b[i*8:]), f32(b[i*8+4:])})
	}
	return dst, nil
}

func (c *cursor) faces(n int) ([]Face, error) {
	b, err := c.take(int64(n) * 6)
	if err != nil {
		return nil, err
	}
	out := make([]Face, n)
	for i := range out {
		o := i * 6
		out[i] = Face{
			binary.LittleEndian.Uint16(b[o:]),
			binary.LittleEndian.Uint16(b[o+2:]),
			binary.LittleEndian.Uint16(b[o+4:]),
		}
	}
	return out, nil
}

// mat4 reads 16 row-major floats.
func (c *cursor) mat4() (mgl32.Mat4, error) {
	b, err := c.take(64)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	var m mgl32.Mat4
	for r := 0; r < 4; r++ {
		for col := 0; col < 4; col++ {
			m.Set(r, col, f32(b[(r*4+col)*4:]))
		}
	}
	return m, nil
}

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
