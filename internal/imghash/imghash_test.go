package imghash

import (
	"testing"

	"github.com/dvagner/tilesurface/internal/proto"
)

func blockImage(w, h int, fill func(x, y int) (r, g, b, a byte)) proto.RawImage {
	stride := w * 4
	buf := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		row := buf[y*stride : y*stride+w*4]
		for x := 0; x < w; x++ {
			r, g, b, a := fill(x, y)
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = a
		}
	}
	return proto.NewRawImage(buf, w, h, stride)
}

func gradientFill(x, y int) (r, g, b, a byte) {
	return byte(x*3 + y*5), byte(x*7 + y*11), byte(x + y*2), 255
}

func TestForEachRect_RejectsWrongRectSize(t *testing.T) {
	img := blockImage(RectSize, RectSize, gradientFill)
	calls := 0
	result := ForEachRect(img, 32, 32, func(x, y int, hash uint64) int {
		calls++
		return 0
	})
	if result != 0 || calls != 0 {
		t.Fatalf("ForEachRect with non-RectSize rect must be a no-op, got result=%d calls=%d", result, calls)
	}
}

func TestForEachRect_RejectsTooSmallImage(t *testing.T) {
	img := blockImage(RectSize-1, RectSize, gradientFill)
	calls := 0
	ForEachRect(img, RectSize, RectSize, func(x, y int, hash uint64) int {
		calls++
		return 0
	})
	if calls != 0 {
		t.Fatalf("ForEachRect over an undersized image must invoke callback zero times, got %d", calls)
	}
}

func TestForEachRect_EnumeratesRowMajorPositions(t *testing.T) {
	w, h := RectSize+1, RectSize+1
	img := blockImage(w, h, gradientFill)

	var positions [][2]int
	ForEachRect(img, RectSize, RectSize, func(x, y int, hash uint64) int {
		positions = append(positions, [2]int{x, y})
		return 0
	})

	want := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	if len(positions) != len(want) {
		t.Fatalf("expected %d positions, got %d: %v", len(want), len(positions), positions)
	}
	for i, p := range want {
		if positions[i] != p {
			t.Errorf("position %d = %v, want %v", i, positions[i], p)
		}
	}
}

func TestForEachRect_DeterministicAcrossRuns(t *testing.T) {
	img := blockImage(RectSize+2, RectSize+2, gradientFill)

	collect := func() []uint64 {
		var hashes []uint64
		ForEachRect(img, RectSize, RectSize, func(_, _ int, h uint64) int {
			hashes = append(hashes, h)
			return 0
		})
		return hashes
	}

	a, b := collect(), collect()
	if len(a) != len(b) {
		t.Fatalf("hash count differs across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("hash at index %d differs across runs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSearch_FindsExactMatch(t *testing.T) {
	haystack := blockImage(160, 120, gradientFill)
	needleX, needleY := 37, 52

	needle := blockImage(RectSize, RectSize, func(x, y int) (r, g, b, a byte) {
		return gradientFill(x+needleX, y+needleY)
	})

	x, y, found := Search(needle, haystack)
	if !found {
		t.Fatal("expected a match")
	}
	if x != needleX || y != needleY {
		t.Fatalf("Search found (%d, %d), want (%d, %d)", x, y, needleX, needleY)
	}
}

func TestSearch_NoMatchWhenNeedleAbsent(t *testing.T) {
	haystack := blockImage(128, 128, gradientFill)
	needle := blockImage(RectSize, RectSize, func(x, y int) (r, g, b, a byte) {
		return 255, 0, 255, 0 // uniform color never produced by gradientFill
	})

	_, _, found := Search(needle, haystack)
	if found {
		t.Fatal("expected no match for a needle absent from the haystack")
	}
}

func TestSearch_WrongNeedleSizeNeverMatches(t *testing.T) {
	haystack := blockImage(128, 128, gradientFill)
	needle := blockImage(RectSize-1, RectSize, gradientFill)

	_, _, found := Search(needle, haystack)
	if found {
		t.Fatal("a needle that isn't RectSize x RectSize must never report a match")
	}
}

// Scenario: hash collisions must be resolved by byte comparison rather than
// accepted outright. byteCompare is the guard Search relies on; exercise it
// directly against regions that are byte-identical and regions that differ
// by a single pixel, independent of whether their rolling hashes happen to
// coincide.
func TestByteCompare_IdenticalRegionMatches(t *testing.T) {
	haystack := blockImage(128, 128, gradientFill)
	needle := blockImage(RectSize, RectSize, func(x, y int) (r, g, b, a byte) {
		return gradientFill(x+10, y+20)
	})

	if !byteCompare(needle, haystack, 10, 20) {
		t.Fatal("byteCompare must accept a byte-identical region")
	}
}

func TestByteCompare_SinglePixelDifferenceRejects(t *testing.T) {
	haystack := blockImage(128, 128, gradientFill)
	needle := blockImage(RectSize, RectSize, func(x, y int) (r, g, b, a byte) {
		r, g, b, a = gradientFill(x+10, y+20)
		if x == 5 && y == 5 {
			r ^= 0xFF // perturb exactly one pixel's red channel
		}
		return r, g, b, a
	})

	if byteCompare(needle, haystack, 10, 20) {
		t.Fatal("byteCompare must reject a region differing by even one pixel")
	}
}

func TestSearch_NearIdenticalDecoyIsNotFalselyAccepted(t *testing.T) {
	// A haystack containing one true match and, overlapping it, windows that
	// differ from the needle by only a pixel or two. Search must land
	// exactly on the byte-identical window, never on a near-miss.
	haystack := blockImage(160, 160, gradientFill)
	trueX, trueY := 50, 60

	needle := blockImage(RectSize, RectSize, func(x, y int) (r, g, b, a byte) {
		return gradientFill(x+trueX, y+trueY)
	})

	x, y, found := Search(needle, haystack)
	if !found {
		t.Fatal("expected to find the true match")
	}
	if x != trueX || y != trueY {
		t.Fatalf("Search returned (%d, %d), want the byte-identical location (%d, %d)", x, y, trueX, trueY)
	}
}

func TestRotateRight32(t *testing.T) {
	if got := rotateRight32(1, 1); got != 0x80000000 {
		t.Fatalf("rotateRight32(1, 1) = 0x%x, want 0x80000000", got)
	}
	if got := rotateRight32(0xABCDEF01, 0); got != 0xABCDEF01 {
		t.Fatalf("rotateRight32(v, 0) must be the identity, got 0x%x", got)
	}
	if got := rotateRight32(0x80000000, 1); got != 0x40000000 {
		t.Fatalf("rotateRight32(0x80000000, 1) = 0x%x, want 0x40000000", got)
	}
}

// Scenario: the 32-to-24 bit fold is the identity for any value already
// confined to 24 bits, and matches the documented worked example otherwise.
func TestFold32To24_IdentityBelow24Bits(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xABCDEF, 0x123456, 0xFFFFFF} {
		if got := fold32To24(v); got != v {
			t.Errorf("fold32To24(0x%x) = 0x%x, want identity 0x%x", v, got, v)
		}
	}
}

func TestFold32To24_WorkedExample(t *testing.T) {
	const in = 0x12345678
	const want = 0x26446A
	if got := fold32To24(in); got != want {
		t.Fatalf("fold32To24(0x%x) = 0x%x, want 0x%x", in, got, want)
	}
}

func TestFingerprint24_DeterministicAndWithin24Bits(t *testing.T) {
	img := blockImage(RectSize, RectSize, gradientFill)

	a := Fingerprint24(img)
	b := Fingerprint24(img)
	if a != b {
		t.Fatalf("Fingerprint24 must be deterministic, got 0x%x then 0x%x", a, b)
	}
	if a > 0xFFFFFF {
		t.Fatalf("Fingerprint24 must fit in 24 bits, got 0x%x", a)
	}
}

func TestFingerprint24_DiffersForDifferentImages(t *testing.T) {
	a := blockImage(RectSize, RectSize, gradientFill)
	b := blockImage(RectSize, RectSize, func(x, y int) (r, g, b, a byte) {
		r, g, bl, al := gradientFill(x, y)
		if x == 0 && y == 0 {
			r ^= 1 // flip exactly one bit of one pixel
		}
		return r, g, bl, al
	})

	if Fingerprint24(a) == Fingerprint24(b) {
		t.Fatal("expected differing fingerprints for images differing by one bit")
	}
}
