// Command hashsearch locates a needle PNG inside a haystack PNG using the
// rolling-hash template search in internal/imghash, printing the first
// row-major match position or reporting that none was found. A tiny
// positional-argument front end over a library package, with no flag
// parsing of its own.
package main

import (
	"fmt"
	"image"
	"os"

	"github.com/dvagner/tilesurface/internal/encode"
	"github.com/dvagner/tilesurface/internal/imghash"
	"github.com/dvagner/tilesurface/internal/proto"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: hashsearch <needle.png> <haystack.png>\n")
		os.Exit(1)
	}

	needle, err := loadImage(os.Args[1])
	if err != nil {
		fmt.Printf("Error loading needle: %v\n", err)
		os.Exit(1)
	}
	haystack, err := loadImage(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading haystack: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Needle: %dx%d\n", needle.Width(), needle.Height())
	fmt.Printf("Haystack: %dx%d\n", haystack.Width(), haystack.Height())

	if needle.Width() != imghash.RectSize || needle.Height() != imghash.RectSize {
		fmt.Printf("Needle must be exactly %dx%d\n", imghash.RectSize, imghash.RectSize)
		os.Exit(1)
	}

	x, y, found := imghash.Search(needle, haystack)
	if !found {
		fmt.Println("No match found")
		os.Exit(1)
	}

	fmt.Printf("Match at (%d, %d)\n", x, y)

	fp := imghash.Fingerprint24(haystack)
	fmt.Printf("Haystack fingerprint: 0x%06x\n", fp)
}

func loadImage(path string) (proto.RawImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return proto.RawImage{}, err
	}

	img, err := encode.DecodeImage(data, "png")
	if err != nil {
		return proto.RawImage{}, err
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		converted := image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				converted.Set(x, y, img.At(x, y))
			}
		}
		rgba = converted
	}

	return proto.FromRGBA(rgba), nil
}
