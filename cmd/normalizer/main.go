// Command normalizer batch-normalizes product photos into square WebP
// catalog assets.
//
// Usage:
//
//	normalizer [flags] <input> <output-dir>
//
// Input is either a local directory (every image below it is processed) or
// an http(s) URL. Configuration comes from the environment; see pkg/config.
// With -listen the command serves the pipeline over HTTP instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	normalizer "github.com/menta2k/photo-normalizer"
	"github.com/menta2k/photo-normalizer/pkg/imageio"
	"github.com/menta2k/photo-normalizer/pkg/server"
)

func main() {
	var listen string
	flag.StringVar(&listen, "listen", "", "serve the pipeline over HTTP on this address instead of processing files")
	flag.Usage = usage
	flag.Parse()

	n := normalizer.New()

	if listen != "" {
		log.Printf("listening on %s", listen)
		if err := server.New(n).Run(listen); err != nil {
			log.Fatal(err)
		}
		return
	}

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	input := flag.Arg(0)
	outDir := flag.Arg(1)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	ctx := context.Background()

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		out, err := n.ProcessURL(ctx, input, outDir)
		if err != nil {
			log.Printf("ERROR: %v", err)
			os.Exit(1)
		}
		log.Printf("%s -> %s", input, out)
		return
	}

	runBatch(ctx, n, input, outDir)
}

// runBatch processes every image under root. A failing file is logged and
// skipped; one corrupt image must not abort the batch.
func runBatch(ctx context.Context, n *normalizer.Normalizer, root, outDir string) {
	paths, err := imageio.List(root)
	if err != nil {
		log.Fatalf("scan %s: %v", root, err)
	}
	if len(paths) == 0 {
		log.Printf("no images found under %s", root)
		return
	}

	processed, failed := 0, 0
	for _, path := range paths {
		out, err := n.ProcessFile(ctx, path, outDir)
		if err != nil {
			log.Printf("ERROR: %v", err)
			failed++
			continue
		}
		log.Printf("%s -> %s", path, out)
		processed++
	}
	log.Printf("done: processed %d, failed %d", processed, failed)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input-dir|url> <output-dir>\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nConfiguration is read from the environment:")
	fmt.Fprintln(os.Stderr, "  SIZE, PAD, VBIAS, ATHRESH, HQ, SMOOTH_THRESH, SMOOTH_BLUR,")
	fmt.Fprintln(os.Stderr, "  QUALITY, AQUALITY, EFFORT, REMBG_URL, REMBG_MODEL, REMBG_HQ_MODEL")
}
