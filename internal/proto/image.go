package proto

import "image"

// RawImage is the simplest proto.Image: a raw byte buffer plus its
// declared dimensions and stride. Draw callers (and tests) typically build
// one of these directly over a decoded PNG's or a synthetic test pattern's
// pixel bytes.
type RawImage struct {
	pix           []byte
	width, height int
	stride        int
}

// NewRawImage wraps an existing pixel buffer. It does not copy pix; the
// caller must not mutate pix for the lifetime of any operation using the
// returned Image.
func NewRawImage(pix []byte, width, height, stride int) RawImage {
	return RawImage{pix: pix, width: width, height: height, stride: stride}
}

func (r RawImage) Pix() []byte { return r.pix }
func (r RawImage) Width() int  { return r.width }
func (r RawImage) Height() int { return r.height }
func (r RawImage) Stride() int { return r.stride }

// FromRGBA adapts a standard library *image.RGBA to proto.Image without
// copying its pixel buffer.
func FromRGBA(img *image.RGBA) RawImage {
	b := img.Bounds()
	return NewRawImage(img.Pix, b.Dx(), b.Dy(), img.Stride)
}

// ToRGBA copies a proto.Image into a fresh *image.RGBA, normalizing stride
// to width*4 in the process. Used by the reference Sink in
// internal/filesink, which hands the pixel rectangle to an internal/encode
// encoder that takes an image.Image.
func ToRGBA(img Image) *image.RGBA {
	w, h, stride := img.Width(), img.Height(), img.Stride()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	pix := img.Pix()
	for row := 0; row < h; row++ {
		src := pix[row*stride : row*stride+w*4]
		dst := out.Pix[row*out.Stride : row*out.Stride+w*4]
		copy(dst, src)
	}
	return out
}
