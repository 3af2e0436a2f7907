// Package images fetches puzzle art and produces the pixelated renditions
// for pixel games.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// NormalizedSize is the square edge every puzzle image is scaled to before
// pixelation, so the block math behaves the same regardless of source size.
const NormalizedSize = 1080

const maxImageBytes = 10 << 20

type Transformer struct {
	httpClient *http.Client
}

func NewTransformer() *Transformer {
	return &Transformer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchAndNormalize downloads the image and scales it to the normalized
// square.
func (t *Transformer) FetchAndNormalize(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	src, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, NormalizedSize, NormalizedSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// Pixelate renders img as PNG with each block of blockSize(level) pixels
// replaced by its average color. Smaller levels mean smaller blocks and a
// sharper image.
func (t *Transformer) Pixelate(img image.Image, level float64) ([]byte, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("pixelate: empty image")
	}

	block := int(float64(minInt(w, h)) * level)
	if block < 1 {
		block = 1
	}

	src := toRGBA(img)
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y += block {
		for x := 0; x < w; x += block {
			var r, g, b, a, n uint64
			for by := y; by < minInt(y+block, h); by++ {
				for bx := x; bx < minInt(x+block, w); bx++ {
					i := src.PixOffset(bx+bounds.Min.X, by+bounds.Min.Y)
					r += uint64(src.Pix[i])
					g += uint64(src.Pix[i+1])
					b += uint64(src.Pix[i+2])
					a += uint64(src.Pix[i+3])
					n++
				}
			}
			ar, ag, ab, aa := uint8(r/n), uint8(g/n), uint8(b/n), uint8(a/n)
			for by := y; by < minInt(y+block, h); by++ {
				for bx := x; bx < minInt(x+block, w); bx++ {
					i := out.PixOffset(bx, by)
					out.Pix[i] = ar
					out.Pix[i+1] = ag
					out.Pix[i+2] = ab
					out.Pix[i+3] = aa
				}
			}
		}
	}

	return encodePNG(out)
}

// Encode renders the image as-is, for the end-of-game reveal.
func (t *Transformer) Encode(img image.Image) ([]byte, error) {
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Copy(rgba, bounds.Min, img, bounds, draw.Src, nil)
	return rgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
