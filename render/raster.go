package render

import "github.com/lixenwraith/mirage-choice/asset"

const rasterCacheLimit = 64

type rasterKey struct {
	img  *asset.Image
	w, h int
}

// rasterCache keeps quadrant rasters per image and cell size
// Owned by the render goroutine; not safe for concurrent use
type rasterCache struct {
	entries map[rasterKey][]asset.Cell
}

func newRasterCache() *rasterCache {
	return &rasterCache{entries: make(map[rasterKey][]asset.Cell)}
}

func (c *rasterCache) get(img *asset.Image, w, h int) []asset.Cell {
	if img == nil || img.Img == nil || w <= 0 || h <= 0 {
		return nil
	}
	k := rasterKey{img: img, w: w, h: h}
	if cells, ok := c.entries[k]; ok {
		return cells
	}
	// Animated scales produce many sizes; start over rather than track recency
	if len(c.entries) >= rasterCacheLimit {
		clear(c.entries)
	}
	cells := asset.Rasterize(img.Img, w, h)
	c.entries[k] = cells
	return cells
}

func (c *rasterCache) len() int { return len(c.entries) }
