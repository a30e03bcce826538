package imgcmp

import (
	"testing"

	"github.com/dvagner/tilesurface/internal/proto"
)

func solid(w, h int, r, g, b, a byte, padBytes int) proto.RawImage {
	stride := w*4 + padBytes
	buf := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		row := buf[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = a
		}
	}
	return proto.NewRawImage(buf, w, h, stride)
}

func TestCompare_IdenticalImagesReturnZero(t *testing.T) {
	a := solid(4, 4, 1, 2, 3, 255, 0)
	b := solid(4, 4, 1, 2, 3, 255, 0)
	if got := Compare(a, b); got != 0 {
		t.Fatalf("Compare(identical) = %d, want 0", got)
	}
}

func TestCompare_StrideDoesNotAffectEquality(t *testing.T) {
	a := solid(4, 4, 9, 8, 7, 255, 0)
	b := solid(4, 4, 9, 8, 7, 255, 12) // padded stride, same logical pixels
	if got := Compare(a, b); got != 0 {
		t.Fatalf("Compare with differing strides but identical pixels = %d, want 0", got)
	}
}

func TestCompare_WidthMismatch(t *testing.T) {
	a := solid(4, 4, 0, 0, 0, 0, 0)
	b := solid(8, 4, 0, 0, 0, 0, 0)
	if got := Compare(a, b); got >= 0 {
		t.Fatalf("Compare(narrower, wider) = %d, want negative", got)
	}
}

func TestCompare_HeightMismatch(t *testing.T) {
	a := solid(4, 8, 0, 0, 0, 0, 0)
	b := solid(4, 4, 0, 0, 0, 0, 0)
	if got := Compare(a, b); got <= 0 {
		t.Fatalf("Compare(taller, shorter) = %d, want positive", got)
	}
}

func TestCompare_PixelDifferenceInLaterRow(t *testing.T) {
	a := solid(2, 2, 10, 10, 10, 255, 0)
	b := solid(2, 2, 10, 10, 10, 255, 0)
	// Perturb only the second row of b.
	bStride := b.Stride()
	b.Pix()[1*bStride+0] = 11

	if got := Compare(a, b); got >= 0 {
		t.Fatalf("Compare(a, b) = %d, want negative (a's row byte is smaller)", got)
	}
	if got := Compare(b, a); got <= 0 {
		t.Fatalf("Compare(b, a) = %d, want positive (antisymmetric)", got)
	}
}

func TestCompare_AntisymmetricForEqualImages(t *testing.T) {
	a := solid(3, 3, 5, 6, 7, 255, 0)
	b := solid(3, 3, 5, 6, 7, 255, 0)
	if Compare(a, b) != 0 || Compare(b, a) != 0 {
		t.Fatal("Compare must be 0 both ways for byte-identical images")
	}
}
