// Package imgcmp implements byte-exact dimension-then-row comparison of two
// image buffers, used wherever the surface encoder's surrounding code needs
// to know whether two images are identical rather than merely
// hash-probably-identical.
package imgcmp

import "github.com/dvagner/tilesurface/internal/proto"

// Compare returns 0 if a and b have identical dimensions and pixel content.
// If their widths differ, it returns a.Width()-b.Width(); else if their
// heights differ, a.Height()-b.Height(). Otherwise it compares rows in
// order (width*4 bytes each, each image advancing by its own stride) and
// returns the first non-zero lexicographic row comparison, or 0 if every
// row matches.
//
// The result is a total order compatible with lexicographic row-major byte
// order for same-dimension images: Compare(a, b) == 0 iff a and b are
// byte-identical, and sign(Compare(a, b)) == -sign(Compare(b, a)).
func Compare(a, b proto.Image) int {
	if a.Width() != b.Width() {
		return a.Width() - b.Width()
	}
	if a.Height() != b.Height() {
		return a.Height() - b.Height()
	}

	width, height := a.Width(), a.Height()
	rowBytes := width * 4
	aPix, bPix := a.Pix(), b.Pix()
	aStride, bStride := a.Stride(), b.Stride()

	for row := 0; row < height; row++ {
		aRow := aPix[row*aStride : row*aStride+rowBytes]
		bRow := bPix[row*bStride : row*bStride+rowBytes]
		if cmp := compareBytes(aRow, bRow); cmp != 0 {
			return cmp
		}
	}

	return 0
}

// compareBytes returns the lexicographic comparison of two equal-length
// byte slices: negative if a < b, positive if a > b, 0 if equal.
func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return 0
}
