// Command surfacebench drives one Surface per input layer directory from a
// sequence of PNG frames (a stand-in backend), flushing each Surface
// through a filesink.Sink after every frame and reporting dirty-tile
// statistics. A thin flag-parsing front end over internal/surface,
// internal/tile, and the reference internal/encode encoders, with a
// worker pool and progress bar wired in for interactive use.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvagner/tilesurface/internal/encode"
	"github.com/dvagner/tilesurface/internal/filesink"
	"github.com/dvagner/tilesurface/internal/proto"
	"github.com/dvagner/tilesurface/internal/surface"
	"github.com/dvagner/tilesurface/internal/telemetry"
)

func main() {
	var (
		inputDir    string
		outputDir   string
		format      string
		quality     int
		concurrency int
		verbose     bool
	)

	flag.StringVar(&inputDir, "input", "", "Directory containing one subdirectory per layer, each holding ordered PNG frames")
	flag.StringVar(&outputDir, "output", "", "Directory to write emitted tile/size instructions into")
	flag.StringVar(&format, "format", "png", "Tile encoding for emitted instructions: png, jpeg, webp")
	flag.IntVar(&quality, "quality", 85, "Quality 1-100 for jpeg/webp (ignored for png)")
	flag.IntVar(&concurrency, "concurrency", 0, "Number of layers flushed concurrently (0 = auto from system RAM/CPU)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: surfacebench -input <dir> -output <dir> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Drive one Surface per layer subdirectory from a sequence of PNG frames.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if inputDir == "" || outputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	sink, err := filesink.New(outputDir, format, quality, verbose)
	if err != nil {
		log.Fatalf("Creating sink: %v", err)
	}
	defer sink.Close()

	layers, err := collectLayers(inputDir)
	if err != nil {
		log.Fatalf("Collecting layer directories: %v", err)
	}
	if len(layers) == 0 {
		log.Fatalf("No layer subdirectories with PNG frames found under %s", inputDir)
	}
	log.Printf("Found %d layer(s)", len(layers))

	if concurrency <= 0 {
		concurrency = telemetry.SuggestFlushConcurrency(telemetry.DefaultFlushMemoryFraction, verbose)
	}
	log.Printf("Concurrency: %d", concurrency)

	bar := telemetry.NewProgressBar("Layers", int64(totalFrames(layers)))

	jobs := make(chan layerJob, len(layers))
	for i, l := range layers {
		jobs <- layerJob{id: i, layer: l}
	}
	close(jobs)

	var wg sync.WaitGroup
	errCh := make(chan error, len(layers))
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := runLayer(job, sink, bar, verbose); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
			}
		}()
	}
	wg.Wait()
	bar.Finish()

	select {
	case err := <-errCh:
		log.Fatalf("Layer processing failed: %v", err)
	default:
	}

	sink.Close()
	sizes, streams, bytes := sink.Stats()
	fmt.Printf("Done: %d size instructions, %d stream-PNG instructions, %d bytes written\n",
		sizes, streams, bytes)
}

type layerDir struct {
	name   string
	frames []string // absolute paths, ordered
}

type layerJob struct {
	id    int
	layer layerDir
}

// collectLayers finds subdirectories of root, each treated as a layer whose
// PNG files (sorted by name) form an ordered sequence of full-canvas frames.
func collectLayers(root string) ([]layerDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var layers []layerDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		frameEntries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		var frames []string
		for _, fe := range frameEntries {
			if fe.IsDir() || !strings.EqualFold(filepath.Ext(fe.Name()), ".png") {
				continue
			}
			frames = append(frames, filepath.Join(dir, fe.Name()))
		}
		if len(frames) == 0 {
			continue
		}
		sort.Strings(frames)
		layers = append(layers, layerDir{name: e.Name(), frames: frames})
	}
	return layers, nil
}

func totalFrames(layers []layerDir) int {
	n := 0
	for _, l := range layers {
		n += len(l.frames)
	}
	return n
}

// runLayer allocates a Surface for one layer, draws each frame in sequence,
// and flushes after every frame, reporting per-flush tile counts to bar.
func runLayer(job layerJob, sink *filesink.Sink, bar *telemetry.ProgressBar, verbose bool) error {
	layer := proto.IntLayer(job.id)
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", job.layer.name), 0)

	var s *surface.Surface
	for i, path := range job.layer.frames {
		img, err := decodePNG(path)
		if err != nil {
			return fmt.Errorf("layer %s: decoding frame %d: %w", job.layer.name, i, err)
		}

		if s == nil {
			b := img.Bounds()
			s, err = surface.Alloc(logger, sink, layer, b.Dx(), b.Dy(), surface.DefaultLimits)
			if err != nil {
				return fmt.Errorf("layer %s: allocating surface: %w", job.layer.name, err)
			}
			s.SetObserver(bar, job.layer.name)
		}

		s.Draw(0, 0, proto.FromRGBA(img))

		start := time.Now()
		if err := s.Flush(); err != nil {
			return fmt.Errorf("layer %s: flushing frame %d: %w", job.layer.name, i, err)
		}

		if verbose {
			logger.Printf("frame %d flushed in %v", i, time.Since(start))
		}
	}

	if s != nil {
		s.Free()
	}
	return nil
}

func decodePNG(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, err := encode.DecodeImage(data, "png")
	if err != nil {
		return nil, err
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}

	b := img.Bounds()
	rgba := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba, nil
}
