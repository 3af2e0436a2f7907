package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func checkerboard(size, square int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{A: 255}
			if (x/square+y/square)%2 == 0 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFetchAndNormalize(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, checkerboard(64, 8)); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	tr := NewTransformer()
	img, err := tr.FetchAndNormalize(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchAndNormalize: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != NormalizedSize || b.Dy() != NormalizedSize {
		t.Fatalf("normalized to %dx%d, want %dx%d", b.Dx(), b.Dy(), NormalizedSize, NormalizedSize)
	}
}

func TestFetchAndNormalizeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tr := NewTransformer()
	if _, err := tr.FetchAndNormalize(context.Background(), srv.URL); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func TestPixelateAveragesBlocks(t *testing.T) {
	tr := NewTransformer()
	src := checkerboard(16, 1) // 1px checkerboard averages to mid gray

	out, err := tr.Pixelate(src, 1) // one block covering everything
	if err != nil {
		t.Fatalf("Pixelate: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	r, g, b, _ := decoded.At(0, 0).RGBA()
	for _, ch := range []uint32{r >> 8, g >> 8, b >> 8} {
		if ch < 120 || ch > 135 {
			t.Fatalf("block average channel = %d, want mid gray", ch)
		}
	}

	// every pixel in the block shares the average
	r2, g2, b2, _ := decoded.At(15, 15).RGBA()
	if r != r2 || g != g2 || b != b2 {
		t.Fatal("block not uniformly filled")
	}
}

func TestPixelateSharpensAsLevelDrops(t *testing.T) {
	tr := NewTransformer()
	src := checkerboard(64, 32)

	coarse, err := tr.Pixelate(src, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	fine, err := tr.Pixelate(src, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	coarseImg, _ := png.Decode(bytes.NewReader(coarse))
	fineImg, _ := png.Decode(bytes.NewReader(fine))

	// at block size 1 the image round-trips unchanged
	r, _, _, _ := fineImg.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Fatalf("fine level altered pixels: %d", r>>8)
	}
	// at a coarse level the white corner is averaged toward gray
	cr, _, _, _ := coarseImg.At(0, 0).RGBA()
	if cr>>8 == 255 {
		t.Fatal("coarse level left pixels untouched")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	tr := NewTransformer()
	src := checkerboard(8, 2)
	out, err := tr.Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", decoded.Bounds())
	}
}
