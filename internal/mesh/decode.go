package mesh

import (
	"fmt"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	magicLen       = 8
	boneNameLen    = 32
	tableEndFlag   = 1
	extraStrideLen = 12
)

// Options controls how strictly Decode treats advisory problems.
type Options struct {
	// Strict turns count mismatches and out-of-range face indices into
	// errors instead of warnings.
	Strict bool
	// Logger receives warnings. Nil discards them.
	Logger *log.Logger
}

// Decode parses a plaintext mesh blob with default options.
func Decode(data []byte) (*Mesh, error) {
	return DecodeWith(data, Options{})
}

// DecodeWith parses a plaintext mesh blob in a single forward pass.
// On error no partial mesh is returned.
func DecodeWith(data []byte, opts Options) (*Mesh, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	d := &decoder{c: &cursor{data: data}, opts: opts, m: &Mesh{}}

	steps := []func() error{
		d.header,
		d.skeleton,
		d.submeshTable,
		d.counts,
		d.geometry,
		d.faces,
		d.uvs,
		d.colors,
		d.skin,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	if rest := d.c.remaining(); rest > 0 {
		opts.Logger.Printf("mesh: %d trailing bytes after offset %d", rest, d.c.off)
	}
	return d.m, nil
}

type decoder struct {
	c    *cursor
	opts Options
	m    *Mesh

	vertexCount int
	faceCount   int
}

// warn records an advisory problem, or returns it when decoding strictly.
func (d *decoder) warn(err error) error {
	if d.opts.Strict {
		return err
	}
	d.opts.Logger.Printf("warning: %v", err)
	d.m.Warnings = append(d.m.Warnings, err)
	return nil
}

func (d *decoder) header() error {
	d.c.enter(StepHeader)
	if err := d.c.skip(magicLen); err != nil {
		return err
	}
	flag, err := d.c.u32()
	if err != nil {
		return err
	}
	d.m.HasBones = flag != 0
	return nil
}

func (d *decoder) skeleton() error {
	if !d.m.HasBones {
		return nil
	}
	c := d.c
	c.enter(StepSkeleton)

	n16, err := c.u16()
	if err != nil {
		return err
	}
	n := int(n16)
	if err := c.need(int64(n) * (1 + boneNameLen + 64)); err != nil {
		return err
	}

	bones := make([]Bone, n)
	for i := range bones {
		p, _ := c.u8()
		bones[i].Parent = int32(p)
		if p == 0xFF {
			bones[i].Parent = NoParent
		}
	}
	for i := range bones {
		raw, _ := c.take(boneNameLen)
		name, err := decodeBoneName(raw)
		if err != nil {
			return fmt.Errorf("mesh: bone %d name: %w", i, err)
		}
		bones[i].Name = name
	}
	for i := range bones {
		bones[i].Bind, _ = c.mat4()
	}

	d.m.Bones = collapseRoots(bones)

	term, err := c.u8()
	if err != nil {
		return err
	}
	if term != 0 {
		return fmt.Errorf("%w: terminator 0x%02x at offset %d", ErrMalformedSkeleton, term, c.off-1)
	}
	return nil
}

type tableStep int

const (
	tableContinue tableStep = iota
	tableEnd
)

// nextSubmesh reads one table entry. A u16 flag of 1 ends the table;
// anything else is the first two bytes of a descriptor record.
func (d *decoder) nextSubmesh() (tableStep, Submesh, error) {
	c := d.c
	flag, err := c.peekU16()
	if err != nil {
		return tableEnd, Submesh{}, err
	}
	if flag == tableEndFlag {
		return tableEnd, Submesh{}, c.skip(2)
	}

	var s Submesh
	if s.VertexCount, err = c.u32(); err != nil {
		return tableEnd, s, err
	}
	if s.FaceCount, err = c.u32(); err != nil {
		return tableEnd, s, err
	}
	if s.UVLayers, err = c.u8(); err != nil {
		return tableEnd, s, err
	}
	if s.ColorChannels, err = c.u8(); err != nil {
		return tableEnd, s, err
	}
	return tableContinue, s, nil
}

func (d *decoder) submeshTable() error {
	d.c.enter(StepSubmeshTable)
	if _, err := d.c.u32(); err != nil { // offset, unused
		return err
	}
	for {
		step, s, err := d.nextSubmesh()
		if err != nil {
			return err
		}
		if step == tableEnd {
			return nil
		}
		d.m.Submeshes = append(d.m.Submeshes, s)
	}
}

func (d *decoder) counts() error {
	c := d.c
	c.enter(StepCounts)
	vc, err := c.u32()
	if err != nil {
		return err
	}
	fc, err := c.u32()
	if err != nil {
		return err
	}
	d.vertexCount, d.faceCount = int(vc), int(fc)

	var sumV, sumF uint64
	for _, s := range d.m.Submeshes {
		sumV += uint64(s.VertexCount)
		sumF += uint64(s.FaceCount)
	}
	if sumV != uint64(vc) || sumF != uint64(fc) {
		err := fmt.Errorf("%w: submeshes sum to %d vertices/%d faces, header says %d/%d",
			ErrCountMismatch, sumV, sumF, vc, fc)
		if sumV < uint64(vc) {
			err = fmt.Errorf("%w; uvs from vertex %d on are zero-filled", err, sumV)
		}
		return d.warn(err)
	}
	return nil
}

// geometry reads positions, normals and the optional extra stream.
func (d *decoder) geometry() error {
	c := d.c
	var err error

	c.enter(StepPositions)
	if d.m.Positions, err = c.vec3s(d.vertexCount); err != nil {
		return err
	}
	c.enter(StepNormals)
	if d.m.Normals, err = c.vec3s(d.vertexCount); err != nil {
		return err
	}

	c.enter(StepExtra)
	flag, err := c.u16()
	if err != nil {
		return err
	}
	if flag != 0 {
		return c.skip(int64(d.vertexCount) * extraStrideLen)
	}
	return nil
}

func (d *decoder) faces() error {
	d.c.enter(StepFaces)
	faces, err := d.c.faces(d.faceCount)
	if err != nil {
		return err
	}
	d.m.Faces = faces

	for i, f := range faces {
		for _, idx := range f {
			if int(idx) >= d.vertexCount {
				return d.warn(fmt.Errorf("%w: face %d references vertex %d of %d",
					ErrFaceIndex, i, idx, d.vertexCount))
			}
		}
	}
	return nil
}

func (d *decoder) uvs() error {
	c := d.c
	c.enter(StepUVs)

	// Positions were read already, so vertexCount is bounded by the stream.
	uvs := make([]mgl32.Vec2, 0, d.vertexCount)

	var err error
	for i, s := range d.m.Submeshes {
		n := int(s.VertexCount)
		if len(uvs)+n > d.vertexCount {
			return fmt.Errorf("%w: submesh %d uv range ends at %d, only %d vertices",
				ErrCountMismatch, i, len(uvs)+n, d.vertexCount)
		}
		if s.UVLayers == 0 {
			uvs = append(uvs, make([]mgl32.Vec2, n)...)
			continue
		}
		if uvs, err = c.vec2s(uvs, n); err != nil {
			return err
		}
		if err := c.skip(int64(n) * 8 * int64(s.UVLayers-1)); err != nil {
			return err
		}
	}
	// Vertices not covered by any submesh get zero UVs.
	if len(uvs) < d.vertexCount {
		uvs = append(uvs, make([]mgl32.Vec2, d.vertexCount-len(uvs))...)
	}
	d.m.UVs = uvs
	return nil
}

// colors skips the per-submesh vertex color streams.
func (d *decoder) colors() error {
	d.c.enter(StepColors)
	for _, s := range d.m.Submeshes {
		if err := d.c.skip(int64(s.VertexCount) * 4 * int64(s.ColorChannels)); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) skin() error {
	if !d.m.HasBones {
		return nil
	}
	c := d.c
	c.enter(StepSkin)
	n := d.vertexCount

	raw, err := c.take(int64(n) * 4)
	if err != nil {
		return err
	}
	joints := make([][4]uint8, n)
	for i := range joints {
		copy(joints[i][:], raw[i*4:])
	}

	raw, err = c.take(int64(n) * 16)
	if err != nil {
		return err
	}
	weights := make([]mgl32.Vec4, n)
	for i := range weights {
		o := i * 16
		weights[i] = mgl32.Vec4{f32(raw[o:]), f32(raw[o+4:]), f32(raw[o+8:]), f32(raw[o+12:])}
	}

	d.m.Joints, d.m.Weights = joints, weights
	return nil
}
