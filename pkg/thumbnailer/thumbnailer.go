// Package thumbnailer renders downscaled PNG previews at a small set of
// standard size tiers.
package thumbnailer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// Tier is a canonical thumbnail size. Requests are rendered at a tier rather
// than the exact requested dimensions; callers absorb minor mismatches with a
// tolerance window.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// Dimensions returns the bounding box for a tier.
func (t Tier) Dimensions() (height, width int) {
	switch t {
	case TierSmall:
		return 128, 128
	case TierLarge:
		return 512, 512
	default:
		return 256, 256
	}
}

// ParseTier maps a raw tier name to a Tier, defaulting to medium.
func ParseTier(raw string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierSmall:
		return TierSmall, true
	case TierMedium:
		return TierMedium, true
	case TierLarge:
		return TierLarge, true
	}
	return TierMedium, false
}

// TierFor picks the smallest tier whose box covers the requested dimensions,
// capped at large.
func TierFor(height, width int) Tier {
	for _, tier := range []Tier{TierSmall, TierMedium, TierLarge} {
		h, w := tier.Dimensions()
		if height <= h && width <= w {
			return tier
		}
	}
	return TierLarge
}

// Result carries rendered PNG bytes and the actual output dimensions.
type Result struct {
	Data   []byte
	Height int
	Width  int
}

// Renderer produces a PNG preview of source bytes at a size tier.
type Renderer interface {
	Render(source []byte, mimeHint string, tier Tier) (*Result, error)
}

// ImageRenderer renders image sources using the stdlib decoders and
// x/image scaling. Non-image sources fail with an error; callers decide
// whether that is fatal.
type ImageRenderer struct{}

// NewImageRenderer returns the default renderer.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{}
}

// Render decodes, scales preserving aspect ratio to fit the tier box, and
// encodes PNG. The returned dimensions are the actual output size, which may
// be smaller than the box on either axis.
func (r *ImageRenderer) Render(source []byte, mimeHint string, tier Tier) (*Result, error) {
	src, _, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("decode source (%s): %w", mimeHint, err)
	}

	maxH, maxW := tier.Dimensions()
	bounds := src.Bounds()
	outW, outH := fit(bounds.Dx(), bounds.Dy(), maxW, maxH)

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &Result{Data: buf.Bytes(), Height: outH, Width: outW}, nil
}

// fit scales (w, h) down to fit in (maxW, maxH) preserving aspect ratio.
// Sources already inside the box keep their size.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
