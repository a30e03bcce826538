// Package imghash implements the rolling polynomial hash used for cache and
// deduplication heuristics: per-rectangle hashing for template enumeration,
// needle-in-haystack template search, and a simpler whole-image 24-bit
// fingerprint. The row/column scan walks Pix sequentially and bails out
// early as soon as a callback asks it to stop.
package imghash

import "github.com/dvagner/tilesurface/internal/proto"

// RectSize is the fixed template rectangle edge length ForEachRect and
// Search operate on.
const RectSize = 64

// pixelAt reads pixel (x, y) of img as a 32-bit value, assuming 4
// bytes/pixel and img's own stride (which need not equal width*4).
func pixelAt(img proto.Image, x, y int) uint32 {
	pix := img.Pix()
	off := y*img.Stride() + x*4
	return uint32(pix[off]) | uint32(pix[off+1])<<8 | uint32(pix[off+2])<<16 | uint32(pix[off+3])<<24
}

// RectCallback is invoked once per top-left position of a RectSize x
// RectSize rectangle fully inside the image, in row-major (y-major, then x)
// order. Returning a non-zero value stops enumeration early; ForEachRect
// returns that value immediately.
type RectCallback func(x, y int, hash uint64) int

// ForEachRect enumerates every top-left position of a rectW x rectH
// rectangle fully inside img, computing a rolling hash for each. rectW and
// rectH must both equal RectSize; any other value returns 0 without
// invoking callback.
//
// The hash is built from two interleaved accumulators, both unsigned 64-bit
// with natural wraparound:
//   - rowHash, reset to 0 at the start of each image row, updated per pixel
//     as rowHash = rowHash*62 + pixel (the "*31*2" recurrence of the
//     original hash, written as a single multiply).
//   - cellHash[x], one per column, updated as cellHash[x] =
//     cellHash[x]*62 + rowHash after rowHash incorporates column x's pixel.
//
// cellHash[x] becomes a deterministic function of the RectSize x RectSize
// rectangle ending at (x, y) only once y >= RectSize-1 and x >= RectSize-1;
// callback is invoked only once both hold, so the boundary history the
// accumulators carry before that point is never observed.
func ForEachRect(img proto.Image, rectW, rectH int, callback RectCallback) int {
	if rectW != RectSize || rectH != RectSize {
		return 0
	}

	w, h := img.Width(), img.Height()
	if w < RectSize || h < RectSize {
		return 0
	}

	cellHash := make([]uint64, w)

	for y := 0; y < h; y++ {
		var rowHash uint64
		for x := 0; x < w; x++ {
			pixel := pixelAt(img, x, y)
			rowHash = rowHash*62 + uint64(pixel)
			cellHash[x] = cellHash[x]*62 + rowHash

			if y >= RectSize-1 && x >= RectSize-1 {
				topLeftX := x - RectSize + 1
				topLeftY := y - RectSize + 1
				if result := callback(topLeftX, topLeftY, cellHash[x]); result != 0 {
					return result
				}
			}
		}
	}

	return 0
}

// hashSingle returns the hash of the single RectSize x RectSize rectangle
// fully inside img (img must be exactly RectSize x RectSize). Returns
// (0, false) if img's dimensions don't match.
func hashSingle(img proto.Image) (uint64, bool) {
	if img.Width() != RectSize || img.Height() != RectSize {
		return 0, false
	}
	var hash uint64
	found := false
	ForEachRect(img, RectSize, RectSize, func(_, _ int, h uint64) int {
		hash = h
		found = true
		return 1 // stop after the only position
	})
	return hash, found
}

// byteCompare does a byte-exact row-by-row comparison of a RectSize x
// RectSize subrectangle of haystack, anchored at (atX, atY), against
// needle. Used to resolve hash collisions so Search never returns a false
// positive.
func byteCompare(needle, haystack proto.Image, atX, atY int) bool {
	nPix := needle.Pix()
	hPix := haystack.Pix()
	nStride := needle.Stride()
	hStride := haystack.Stride()
	rowBytes := RectSize * 4

	hRowBase := atY*hStride + atX*4
	for row := 0; row < RectSize; row++ {
		nRow := nPix[row*nStride : row*nStride+rowBytes]
		hRow := hPix[hRowBase+row*hStride : hRowBase+row*hStride+rowBytes]
		for i := range nRow {
			if nRow[i] != hRow[i] {
				return false
			}
		}
	}
	return true
}

// Search locates a byte-exact copy of needle (exactly RectSize x RectSize)
// inside haystack. It enumerates haystack positions in row-major order;
// at each hash match, it performs a byte-exact comparison before accepting
// the match, so hash collisions never produce a false positive. The first
// confirmed match wins.
//
// Returns (x, y, true) on success, or (0, 0, false) if no match exists.
func Search(needle, haystack proto.Image) (x, y int, found bool) {
	needleHash, ok := hashSingle(needle)
	if !ok {
		return 0, 0, false
	}

	var foundX, foundY int
	result := ForEachRect(haystack, RectSize, RectSize, func(cx, cy int, hash uint64) int {
		if hash != needleHash {
			return 0
		}
		if !byteCompare(needle, haystack, cx, cy) {
			return 0
		}
		foundX, foundY = cx, cy
		return 1
	})

	if result == 0 {
		return 0, 0, false
	}
	return foundX, foundY, true
}

// rotateRight32 performs a logical (not arithmetic) 32-bit right rotation.
func rotateRight32(v uint32, n uint) uint32 {
	n &= 31
	if n == 0 {
		return v
	}
	return (v >> n) | (v << (32 - n))
}

// fingerprintSeed is XORed into the accumulator on every pixel fold.
const fingerprintSeed = 0x1B872E69

// Fingerprint24 computes a whole-surface 24-bit fingerprint distinct from
// the rolling rectangle hash above: every pixel folds into a 32-bit
// accumulator via acc = rotateRight32(acc, 1) XOR pixel XOR
// fingerprintSeed, then the final 32-bit value is folded down to 24 bits by
// XORing its high byte, shifted to three positions, into the low 24 bits.
func Fingerprint24(img proto.Image) uint32 {
	var acc uint32
	w, h := img.Width(), img.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixel := pixelAt(img, x, y)
			acc = rotateRight32(acc, 1) ^ pixel ^ fingerprintSeed
		}
	}
	return fold32To24(acc)
}

// fold32To24 folds a 32-bit value into 24 bits: the low 24 bits pass
// through unchanged, and the high byte (kept at its original bit position,
// bits 24-31) is XORed in at three shifted positions, scattering it across
// the low three bytes. Restricted to inputs already in [0, 2^24) the high
// byte is zero, so this is the identity.
func fold32To24(acc uint32) uint32 {
	hi := acc & 0xFF000000
	return (acc & 0xFFFFFF) ^ (hi >> 8) ^ (hi >> 16) ^ (hi >> 24)
}
