package batch

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HugoSmits86/nativewebp"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"npk-mesh/internal/crypto"
	"npk-mesh/internal/entrylist"
	"npk-mesh/internal/payload"
)

// triangleMesh is a boneless stream with one UV-mapped triangle.
func triangleMesh() []byte {
	var b bytes.Buffer
	w := func(v any) { binary.Write(&b, binary.LittleEndian, v) }
	f := func(vs ...float32) {
		for _, v := range vs {
			w(math.Float32bits(v))
		}
	}

	b.WriteString("MESHv001")
	w(uint32(0))          // no bones
	w(uint32(0))          // table offset
	w(uint32(3))          // submesh vertices
	w(uint32(1))          // submesh faces
	b.Write([]byte{1, 0}) // one UV layer, no colors
	w(uint16(1))          // end of table
	w(uint32(3))
	w(uint32(1))
	f(0, 0, 0, 1, 0, 0, 0, 1, 0)
	f(0, 0, 1, 0, 0, 1, 0, 0, 1)
	w(uint16(0))
	w([3]uint16{0, 1, 2})
	f(0, 0, 1, 0, 0, 1)
	return b.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func zlibBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func envelopeBytes(t *testing.T, data []byte, seed uint32) []byte {
	t.Helper()
	// Padding keeps the block compressible; the decoder ignores trailing bytes.
	data = append(append([]byte(nil), data...), make([]byte, 512)...)
	comp := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, comp, nil)
	if err != nil || n == 0 {
		t.Fatalf("CompressBlock: n=%d err=%v", n, err)
	}
	body := make([]byte, n)
	crypto.NewEnvelopeStream(seed).XORKeyStream(body, comp[:n])

	header := make([]byte, crypto.EnvelopePrefixLen)
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(data)))
	return append(header, body...)
}

func TestRunPipeline(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	plain := triangleMesh()

	entries := []entrylist.Entry{
		{Name: "plain", Path: writeFile(t, in, "plain.mesh", plain)},
		{Name: "zipped", Path: writeFile(t, in, "zipped.mesh", zlibBytes(t, plain)), Algorithm: payload.Zlib},
		{Name: "sealed", Path: writeFile(t, in, "sealed.mesh", envelopeBytes(t, plain, 0xCAFEBABE)), Tag: payload.TagEnvelope},
		{Name: "short", Path: writeFile(t, in, "short.mesh", plain[:40])},
		{Name: "missing", Path: filepath.Join(in, "missing.mesh")},
	}

	cfg := Config{
		OutputDir:   out,
		Unwrapper:   crypto.StaticSeed(0xCAFEBABE),
		PreviewSize: 32,
		Supersample: 2,
		FillRatio:   0.9,
		Workers:     3,
		Preview:     true,
	}
	results := Run(cfg, entries)
	if len(results) != len(entries) {
		t.Fatalf("Run returned %d results, want %d", len(results), len(entries))
	}

	for _, r := range results[:3] {
		if !r.Success {
			t.Fatalf("%s failed: %s", r.Entry.Name, r.Error)
		}
		if r.Submeshes != 1 || r.Vertices != 3 || r.Faces != 1 || r.Bones != 0 {
			t.Fatalf("%s counts = %+v", r.Entry.Name, r)
		}
		if r.Image != r.Entry.Name+".webp" {
			t.Fatalf("%s image = %q", r.Entry.Name, r.Image)
		}
		f, err := os.Open(filepath.Join(out, r.Image))
		if err != nil {
			t.Fatalf("open preview: %v", err)
		}
		ic, err := nativewebp.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatalf("DecodeConfig %s: %v", r.Image, err)
		}
		if ic.Width != 32 || ic.Height != 32 {
			t.Fatalf("%s preview is %dx%d", r.Image, ic.Width, ic.Height)
		}
	}

	if r := results[3]; r.Success || !strings.Contains(r.Error, "truncated") {
		t.Fatalf("short entry: %+v", r)
	}
	if r := results[4]; r.Success || r.Error == "" {
		t.Fatalf("missing entry: %+v", r)
	}
	if n := Failed(results); n != 2 {
		t.Fatalf("Failed = %d, want 2", n)
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := WriteManifest(manifest, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	var got []ManifestEntry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if len(got) != 5 || got[1].Algorithm != "ZLIB" || got[2].Tag != payload.TagEnvelope.String() {
		t.Fatalf("manifest = %+v", got)
	}
	if got[0].Image != "plain.webp" || got[4].Error == "" {
		t.Fatalf("manifest = %+v", got)
	}
}

func TestRunWithoutPreview(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "unused")
	entries := []entrylist.Entry{{Name: "a", Path: writeFile(t, in, "a.mesh", triangleMesh())}}

	results := Run(Config{OutputDir: out}, entries)
	if !results[0].Success || results[0].Image != "" {
		t.Fatalf("result = %+v", results[0])
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("output directory created without previews")
	}
}

func TestRunEnvelopeWithoutUnwrapper(t *testing.T) {
	in := t.TempDir()
	entries := []entrylist.Entry{{
		Name: "sealed",
		Path: writeFile(t, in, "s.mesh", envelopeBytes(t, triangleMesh(), 1)),
		Tag:  payload.TagEnvelope,
	}}
	results := Run(Config{}, entries)
	if results[0].Success || !strings.Contains(results[0].Error, "unwrapper") {
		t.Fatalf("result = %+v", results[0])
	}
}

func TestRunScannedSameStems(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(in, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(in, sub), "body.mesh", triangleMesh())
	}

	entries, err := entrylist.Scan(in)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	cfg := Config{OutputDir: out, PreviewSize: 16, Supersample: 1, Workers: 2, Preview: true}
	results := Run(cfg, entries)

	if Failed(results) != 0 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Image == results[1].Image {
		t.Fatalf("both previews written to %q", results[0].Image)
	}
	for _, r := range results {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(r.Image))); err != nil {
			t.Fatalf("preview %s: %v", r.Image, err)
		}
	}
}

func TestRunRejectsDuplicateNames(t *testing.T) {
	in := t.TempDir()
	path := writeFile(t, in, "x.mesh", triangleMesh())
	entries := []entrylist.Entry{
		{Name: "dup", Path: path},
		{Name: "DUP", Path: path},
		{Name: "other", Path: path},
	}

	results := Run(Config{OutputDir: t.TempDir(), PreviewSize: 16, Supersample: 1, Workers: 3, Preview: true}, entries)
	if !results[0].Success || !results[2].Success {
		t.Fatalf("results = %+v", results)
	}
	if results[1].Success || !strings.Contains(results[1].Error, ErrDuplicateName.Error()) {
		t.Fatalf("duplicate = %+v", results[1])
	}
}
