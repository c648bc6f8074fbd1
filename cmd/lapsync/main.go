// Command lapsync reads the race clock on every captured frame of a race and
// prints the frame matching each lap split.
//
// Usage: lapsync -race <id> -laps 123,118,121 [-rcw] [-trim] [-json out.json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"race-clock/internal/classifier"
	"race-clock/internal/config"
	"race-clock/internal/layout"
	"race-clock/internal/ocr"
	"race-clock/internal/pipeline"
	"race-clock/internal/scene"
	"race-clock/internal/scene/cvhist"
	"race-clock/internal/version"
)

func main() {
	configPath := flag.String("config", "lapsync.json", "Configuration file (defaults when missing)")
	raceID := flag.String("race", "", "Race identifier; its frames live in <pic_dir>/<id>")
	lapList := flag.String("laps", "", "Comma separated lap times in tenths of a second")
	picDir := flag.String("pics", "", "Frame root directory (overrides pic_dir)")
	rcw := flag.Bool("rcw", false, "Right-side clock placement")
	layoutName := flag.String("layout", "", "Clock layout: "+layout.NameLegacy3+" or "+layout.NameExtended4)
	modelPath := flag.String("model", "", "Digit model file")
	clfName := flag.String("classifier", "", "Digit classifier: centroid or tesseract")
	histName := flag.String("hist", "", "Histogram backend for trimming: go or opencv")
	doTrim := flag.Bool("trim", false, "Locate the race range within the capture")
	jsonOut := flag.String("json", "", "Write the full report as JSON to this file")
	verbose := flag.Bool("v", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *raceID == "" {
		fmt.Fprintf(os.Stderr, "Usage: lapsync -race <id> -laps <t1,t2,...> [-rcw] [-trim] [-json out.json]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pics":
			cfg.PicDir = *picDir
		case "rcw":
			cfg.RCW = *rcw
		case "layout":
			cfg.Layout = *layoutName
		case "model":
			cfg.ModelPath = *modelPath
		case "classifier":
			cfg.Classifier = *clfName
		case "hist":
			cfg.Histogram = *histName
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	laps, err := parseLaps(*lapList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -laps: %v\n", err)
		os.Exit(1)
	}

	clf, closeClf, err := newClassifier(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up classifier: %v\n", err)
		os.Exit(1)
	}
	defer closeClf()

	var hist scene.HistogramSource
	if *doTrim {
		hist = newHistogramSource(cfg)
	}

	p, err := pipeline.New(cfg, clf, hist, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up pipeline: %v\n", err)
		os.Exit(1)
	}
	p.Trim = *doTrim

	report, err := p.Run(pipeline.Race{ID: *raceID, Laps: laps})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Race %s failed: %v\n", *raceID, err)
		os.Exit(1)
	}

	printReport(report)

	if *jsonOut != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*jsonOut, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nReport written to %s\n", *jsonOut)
	}
}

func parseLaps(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	laps := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("lap %q: %w", part, err)
		}
		laps = append(laps, v)
	}
	return laps, nil
}

func newClassifier(cfg *config.Config, logger *log.Logger) (classifier.Classifier, func(), error) {
	if cfg.Classifier == config.ClassifierTesseract {
		engine, err := ocr.NewEngine()
		if err != nil {
			return nil, nil, err
		}
		return engine, func() { engine.Close() }, nil
	}
	model, _, err := classifier.DefaultResolver().Load(cfg.ModelPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return model, func() {}, nil
}

func newHistogramSource(cfg *config.Config) scene.HistogramSource {
	if cfg.Histogram == config.HistogramOpenCV {
		return cvhist.NewSource()
	}
	return scene.NewImageHistograms()
}

func printReport(r *pipeline.Report) {
	fmt.Printf("Race %s: %d frames\n", r.Race.ID, len(r.Records))
	for _, s := range r.Splits.Splits {
		if !s.Matched {
			fmt.Printf("ts : %d (no frame reached it)\n", s.Target)
			fmt.Printf(" file : -\n")
			continue
		}
		fmt.Printf("ts : %d (%s)\n", s.Record.Time, s.Record.Display)
		fmt.Printf(" file : %s\n", s.Record.Source)
	}
	if n := len(r.Splits.Unmatched()); n > 0 {
		fmt.Printf("%d of %d splits unmatched\n", n, len(r.Splits.Splits))
	}
	if r.Trim != nil {
		fmt.Printf("\nRace frames [%d, %d):\n", r.Trim.Lower, r.Trim.Upper)
		for _, f := range r.Trim.Frames {
			fmt.Println(f)
		}
	}
}
