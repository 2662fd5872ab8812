package batch

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"npk-mesh/internal/crypto"
	"npk-mesh/internal/entrylist"
	"npk-mesh/internal/mesh"
	"npk-mesh/internal/payload"
	"npk-mesh/internal/postprocess"
	"npk-mesh/internal/raster"
	"npk-mesh/internal/texture"

	"github.com/HugoSmits86/nativewebp"
)

// ErrDuplicateName marks entries whose name, and so preview path, was
// already taken by an earlier entry in the same run.
var ErrDuplicateName = errors.New("batch: duplicate entry name")

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir   string
	Unwrapper   crypto.KeyUnwrapper
	Textures    texture.Resolver // looked up by entry name; may be nil
	PreviewSize int
	Supersample int
	FillRatio   float64
	Workers     int
	Strict      bool
	Preview     bool // write a WebP preview per entry
	Logger      *log.Logger
}

// Result holds the outcome of processing one entry.
type Result struct {
	Entry     entrylist.Entry
	Success   bool
	Error     string
	Image     string // preview path relative to OutputDir
	Submeshes int
	Vertices  int
	Faces     int
	Bones     int
	Warnings  []string
}

// Run processes all entries using a worker pool. Failures are recorded
// per entry and never stop the run. Names are compared case-insensitively
// and only the first entry with a given name is processed.
func Run(cfg Config, entries []entrylist.Entry) []Result {
	total := len(entries)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					logger.Printf("  [%d/%d] %.1f entries/sec", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	entryChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range entryChan {
				results[idx] = processEntry(cfg, logger, entries[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work; later entries reusing a name would overwrite the
	// earlier preview, so they fail instead
	seen := make(map[string]int, total)
	for i, e := range entries {
		key := strings.ToLower(path.Clean(filepath.ToSlash(e.Name)))
		if first, dup := seen[key]; dup {
			results[i] = Result{
				Entry: e,
				Error: fmt.Sprintf("%v: %q already used by entry %d", ErrDuplicateName, e.Name, first),
			}
			processed.Add(1)
			continue
		}
		seen[key] = i
		entryChan <- i
	}
	close(entryChan)

	wg.Wait()
	close(done)

	return results
}

func processEntry(cfg Config, logger *log.Logger, e entrylist.Entry) Result {
	res := Result{Entry: e}
	fail := func(err error) Result {
		res.Error = err.Error()
		logger.Printf("%s: %v", e.Name, err)
		return res
	}

	raw, err := entrylist.Load(e)
	if err != nil {
		return fail(err)
	}
	plain, err := payload.Transform(raw, cfg.Unwrapper)
	if err != nil {
		return fail(fmt.Errorf("transform %s: %w", e.Name, err))
	}

	m, err := mesh.DecodeWith(plain, mesh.Options{
		Strict: cfg.Strict,
		Logger: log.New(logger.Writer(), e.Name+": ", logger.Flags()),
	})
	if err != nil {
		return fail(fmt.Errorf("decode %s: %w", e.Name, err))
	}
	res.Submeshes = len(m.Submeshes)
	res.Vertices = len(m.Positions)
	res.Faces = len(m.Faces)
	res.Bones = len(m.Bones)
	for _, w := range m.Warnings {
		res.Warnings = append(res.Warnings, w.Error())
	}

	if cfg.Preview {
		rel := e.Name + ".webp"
		if err := WritePreview(filepath.Join(cfg.OutputDir, rel), RenderPreview(cfg, m, e.Name)); err != nil {
			return fail(err)
		}
		res.Image = filepath.ToSlash(rel)
	}

	res.Success = true
	return res
}

// RenderPreview renders m at the configured supersampling and fits the
// result onto a PreviewSize canvas.
func RenderPreview(cfg Config, m *mesh.Mesh, name string) *image.NRGBA {
	var tex *image.NRGBA
	if cfg.Textures != nil {
		tex = cfg.Textures.Resolve(name)
	}
	img := raster.RenderMesh(m, tex, raster.DefaultView, cfg.PreviewSize, cfg.Supersample)
	return postprocess.Fit(img, cfg.PreviewSize, cfg.FillRatio)
}

// WritePreview encodes img as a lossless WebP at path, creating parent
// directories as needed.
func WritePreview(outPath string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
