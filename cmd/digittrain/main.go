// Command digittrain builds the digit model used by lapsync.
//
// In training mode it reads labelled cell crops from <dir>/<label>/*.png
// (labels 0-9 and blank) and writes the model JSON. With -extract it cuts
// the digit cells out of a directory of frames so they can be sorted into
// label directories by hand.
//
// Usage:
//
//	digittrain -cells <dir> [-out digit_model.json]
//	digittrain -extract <frame-dir> -cells <dir> [-layout legacy3|extended4] [-rcw]
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"race-clock/internal/classifier"
	"race-clock/internal/digits"
	"race-clock/internal/frames"
	"race-clock/internal/layout"
)

func main() {
	cellDir := flag.String("cells", "", "Directory of labelled cell crops (<dir>/<label>/*.png)")
	outPath := flag.String("out", classifier.ModelFileName, "Output model file")
	extractDir := flag.String("extract", "", "Frame directory to cut unlabelled cells from")
	layoutName := flag.String("layout", layout.NameLegacy3, "Clock layout")
	rcw := flag.Bool("rcw", false, "Right-side clock placement")
	flag.Parse()

	if *cellDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: digittrain -cells <dir> [-out %s]\n", classifier.ModelFileName)
		fmt.Fprintf(os.Stderr, "       digittrain -extract <frame-dir> -cells <dir> [-layout legacy3|extended4] [-rcw]\n")
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)

	if *extractDir != "" {
		l, err := layout.ByName(*layoutName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		n, err := extractCells(*extractDir, filepath.Join(*cellDir, "unlabeled"), l.WithRCW(*rcw))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error extracting cells: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d cells to %s\n", n, filepath.Join(*cellDir, "unlabeled"))
		fmt.Println("Move each cell into a directory named after its label, then run digittrain -cells again.")
		return
	}

	model, err := classifier.TrainDir(*cellDir, layout.CellWidth, layout.CellHeight, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training model: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nModel summary:\n")
	for _, c := range model.Centroids {
		fmt.Printf("  %-6s %4d samples\n", c.Label, c.Samples)
	}

	if err := model.Save(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing model: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %s\n", *outPath)
}

// extractCells writes every digit cell of every frame in frameDir to outDir
// as <frame>_<cell>.png and returns the number written.
func extractCells(frameDir, outDir string, l layout.DigitLayout) (int, error) {
	ex, err := digits.NewExtractor(l)
	if err != nil {
		return 0, err
	}
	paths, err := frames.List(frameDir, frames.DefaultPattern)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, err
	}

	n := 0
	for _, p := range paths {
		cells, err := ex.ExtractFile(p)
		if err != nil {
			return n, err
		}
		base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		for k, cell := range cells {
			out := filepath.Join(outDir, fmt.Sprintf("%s_%d.png", base, k))
			f, err := os.Create(out)
			if err != nil {
				return n, err
			}
			err = png.Encode(f, cell)
			f.Close()
			if err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
