package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"path"
	"sync"

	"github.com/lixenwraith/mirage-choice/core"
)

// ErrUnresolved marks an option whose card art could not be loaded
// Recovered locally by the glyph fallback, never surfaced to callers
var ErrUnresolved = errors.New("asset unresolved")

// DefaultDir is the conventional card art location
const DefaultDir = "images/cards"

// DefaultExtensions are tried in order
var DefaultExtensions = []string{"png", "jpg", "jpeg"}

// Image is an opaque resolved card art handle
type Image struct {
	Path string
	Img  image.Image
}

// Result is either a resolved image or the bare option glyph
type Result struct {
	Option core.Option
	Image  *Image
}

// Resolved reports whether art was found
func (r Result) Resolved() bool { return r.Image != nil }

// Glyph is the text fallback for the option
func (r Result) Glyph() string { return string(r.Option) }

type entry struct {
	once   sync.Once
	result Result
}

// Resolver loads card art by convention and caches every outcome, failures included
type Resolver struct {
	fsys fs.FS
	dir  string
	exts []string
	log  *slog.Logger

	mu    sync.Mutex
	cache map[core.Option]*entry
}

// NewResolver creates a resolver over fsys; empty dir or exts fall back to defaults
func NewResolver(fsys fs.FS, dir string, exts []string, log *slog.Logger) *Resolver {
	if dir == "" {
		dir = DefaultDir
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		fsys:  fsys,
		dir:   dir,
		exts:  exts,
		log:   log,
		cache: make(map[core.Option]*entry),
	}
}

// Path returns the conventional asset path for an option and extension
func (r *Resolver) Path(opt core.Option, ext string) string {
	return path.Join(r.dir, fmt.Sprintf("%s.%s", opt, ext))
}

// Resolve blocks until the option's art is resolved or known missing
// ctx is accepted for call-site symmetry; local decoding is not interruptible
func (r *Resolver) Resolve(ctx context.Context, opt core.Option) Result {
	r.mu.Lock()
	e, ok := r.cache[opt]
	if !ok {
		e = &entry{}
		r.cache[opt] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		img, err := r.load(opt)
		if err != nil {
			r.log.Debug("card art fallback", "option", opt, "error", err)
			e.result = Result{Option: opt}
			return
		}
		e.result = Result{Option: opt, Image: img}
	})
	return e.result
}

// LoadAsync resolves off the caller's goroutine and reports through exactly one callback
// Phase scripts use this for fire-and-continue loads; nothing waits on it
func (r *Resolver) LoadAsync(ctx context.Context, opt core.Option, onLoaded func(*Image), onFallback func(core.Option)) {
	go func() {
		res := r.Resolve(ctx, opt)
		if res.Resolved() {
			if onLoaded != nil {
				onLoaded(res.Image)
			}
			return
		}
		if onFallback != nil {
			onFallback(opt)
		}
	}()
}

func (r *Resolver) load(opt core.Option) (*Image, error) {
	if !opt.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrUnresolved, core.ErrInvalidOption)
	}
	if r.fsys == nil {
		return nil, fmt.Errorf("%w: no asset filesystem", ErrUnresolved)
	}

	var lastErr error
	for _, ext := range r.exts {
		p := r.Path(opt, ext)
		img, err := r.decode(p)
		if err != nil {
			lastErr = err
			continue
		}
		return &Image{Path: p, Img: img}, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrUnresolved, opt, lastErr)
}

func (r *Resolver) decode(p string) (image.Image, error) {
	f, err := r.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return img, nil
}
