package asset

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/mirage-choice/core"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	return fstest.MapFS{
		"images/cards/A.png": {Data: encodePNG(t, 4, 4, color.RGBA{255, 0, 0, 255})},
		"images/cards/B.png": {Data: []byte("not a png")},
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testFS(t), "", nil, nil)
	ctx := context.Background()

	res := r.Resolve(ctx, core.OptionA)
	require.True(t, res.Resolved())
	assert.Equal(t, "images/cards/A.png", res.Image.Path)
	assert.Equal(t, 4, res.Image.Img.Bounds().Dx())

	// Corrupt file degrades to glyph
	res = r.Resolve(ctx, core.OptionB)
	assert.False(t, res.Resolved())
	assert.Equal(t, "B", res.Glyph())

	// Missing file degrades to glyph
	res = r.Resolve(ctx, core.OptionH)
	assert.False(t, res.Resolved())
	assert.Equal(t, core.OptionH, res.Option)
}

func TestResolver_CachesOutcome(t *testing.T) {
	fsys := testFS(t)
	r := NewResolver(fsys, "", nil, nil)
	ctx := context.Background()

	first := r.Resolve(ctx, core.OptionA)
	delete(fsys, "images/cards/A.png")
	second := r.Resolve(ctx, core.OptionA)
	assert.Same(t, first.Image, second.Image)
}

func TestResolver_NilFS(t *testing.T) {
	r := NewResolver(nil, "", nil, nil)
	assert.False(t, r.Resolve(context.Background(), core.OptionC).Resolved())
}

func TestResolver_ExtensionOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"art/C.jpg": {Data: []byte("broken")},
		"art/C.png": {Data: encodePNG(t, 2, 2, color.White)},
	}
	r := NewResolver(fsys, "art", []string{"jpg", "png"}, nil)
	res := r.Resolve(context.Background(), core.OptionC)
	require.True(t, res.Resolved())
	assert.Equal(t, "art/C.png", res.Image.Path)
}

func TestResolver_LoadAsync(t *testing.T) {
	r := NewResolver(testFS(t), "", nil, nil)
	ctx := context.Background()

	loaded := make(chan *Image, 1)
	r.LoadAsync(ctx, core.OptionA, func(img *Image) { loaded <- img }, func(core.Option) {
		t.Error("unexpected fallback for A")
	})
	select {
	case img := <-loaded:
		assert.NotNil(t, img)
	case <-time.After(2 * time.Second):
		t.Fatal("onLoaded not called")
	}

	fallback := make(chan core.Option, 1)
	r.LoadAsync(ctx, core.OptionG, func(*Image) {
		t.Error("unexpected load for G")
	}, func(o core.Option) { fallback <- o })
	select {
	case o := <-fallback:
		assert.Equal(t, core.OptionG, o)
	case <-time.After(2 * time.Second):
		t.Fatal("onFallback not called")
	}
}

func TestRasterize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	// Left half white, right half black
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}

	cells := Rasterize(img, 2, 2)
	require.Len(t, cells, 4)

	// Left column cells are solid white, either as full block fg or space bg
	for _, c := range []Cell{cells[0], cells[2]} {
		switch c.Rune {
		case '█':
			assert.Equal(t, core.RGBWhite, c.Fg)
		case ' ':
			assert.Equal(t, core.RGBWhite, c.Bg)
		default:
			t.Errorf("unexpected rune %q for solid white cell", c.Rune)
		}
	}

	assert.Nil(t, Rasterize(nil, 2, 2))
	assert.Nil(t, Rasterize(img, 0, 2))
}

func TestBestQuadrant_HalfSplit(t *testing.T) {
	w, b := core.RGBWhite, core.RGBBlack
	// UL, UR white; LL, LR black -> upper half (or its inverse)
	ch, fg, bg := bestQuadrant([4]core.RGB{w, w, b, b})
	switch ch {
	case '▀':
		assert.Equal(t, w, fg)
		assert.Equal(t, b, bg)
	case '▄':
		assert.Equal(t, b, fg)
		assert.Equal(t, w, bg)
	default:
		t.Fatalf("unexpected quadrant %q", ch)
	}
}
