package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	passportphoto "github.com/menta2k/passport-photo"
	"github.com/menta2k/passport-photo/internal/config"
	"github.com/menta2k/passport-photo/internal/utils"
	"github.com/menta2k/passport-photo/pkg/client"
	"github.com/menta2k/passport-photo/pkg/cropeditor"
	"github.com/menta2k/passport-photo/pkg/detection"
	"github.com/menta2k/passport-photo/pkg/geom"
	"github.com/menta2k/passport-photo/pkg/passport"
	"github.com/menta2k/passport-photo/pkg/processing"
)

// regionReport is written next to the photo with -debug
type regionReport struct {
	Source    string           `json:"source"`
	Scale     float64          `json:"scale"`
	Display   geom.DisplayRect `json:"display"`
	Crop      geom.SourceRect  `json:"crop"`
	Suggested bool             `json:"suggested"`
	Changes   int              `json:"changes"`
	Output    string           `json:"output"`
}

func main() {
	var in, outDir, configPath, gesturesPath string
	var backend, url, model string
	var bg, name, date string
	var brightness, contrast, saturation, hue int
	var nameSize, dateSize int
	var ext string
	var quality int
	var detect, probe, saveConfig, debug, verbose bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "", "output directory (default from config)")
	flag.StringVar(&configPath, "config", config.GetConfigPath(), "JSON config file")
	flag.StringVar(&gesturesPath, "gestures", "", "JSON file of pointer events to replay on the preview")

	flag.BoolVar(&detect, "detect", false, "seed the crop region from a vision model")
	flag.BoolVar(&probe, "probe", false, "ask the vision model to describe -in and exit")
	flag.StringVar(&backend, "backend", "", "vision backend: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "vision server URL")
	flag.StringVar(&model, "model", "", "vision model name")

	flag.StringVar(&bg, "bg", "white", "background: color name, #hex, gradient-<template> or gradient:#a,#b[,direction]")
	flag.StringVar(&name, "name", "", "name printed in the caption band")
	flag.StringVar(&date, "date", "", "date printed in the caption band, \"today\" for the current date")
	flag.IntVar(&nameSize, "namesize", passport.DefaultNameSize, "caption name font size (10-50)")
	flag.IntVar(&dateSize, "datesize", passport.DefaultDateSize, "caption date font size (8-30)")

	flag.IntVar(&brightness, "brightness", 100, "brightness percent (50-150)")
	flag.IntVar(&contrast, "contrast", 100, "contrast percent (50-150)")
	flag.IntVar(&saturation, "saturation", 100, "saturation percent (0-200)")
	flag.IntVar(&hue, "hue", 0, "hue rotation in degrees (-180..180)")

	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp (default from config)")
	flag.IntVar(&quality, "quality", 0, "JPEG/WebP quality 1-100 (default from config)")
	flag.BoolVar(&debug, "debug", false, "write a crop overlay and the region as JSON")
	flag.BoolVar(&verbose, "v", false, "verbose development logging")
	flag.BoolVar(&saveConfig, "save-config", false, "write the merged configuration to -config")

	flag.Parse()
	if in == "" && !saveConfig {
		fmt.Fprintf(os.Stderr, "usage: %s -in photo.jpg|URL [-gestures events.json] [-detect] [-bg white] [-name NAME] [-date today] [-out dir]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	if in != "" {
		if err := checkInput(in); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
	}

	logger, err := newLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.String("path", configPath), zap.Error(err))
	}

	// Flags given on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			cfg.Output.Dir = outDir
		case "ext":
			cfg.Output.Format = ext
		case "quality":
			cfg.Output.Quality = quality
		case "backend":
			cfg.Vision.Backend = backend
		case "url":
			cfg.Vision.URL = url
		case "model":
			cfg.Vision.Model = model
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if saveConfig {
		if err := cfg.SaveToFile(configPath); err != nil {
			logger.Fatal("failed to save config", zap.String("path", configPath), zap.Error(err))
		}
		logger.Info("config saved", zap.String("path", configPath))
		if in == "" {
			return
		}
	}

	var opts []passportphoto.Option
	opts = append(opts, passportphoto.WithLogger(logger))
	if detect || probe {
		d, err := newDetector(cfg, logger)
		if err != nil {
			logger.Fatal("failed to create vision client", zap.Error(err))
		}
		if probe {
			if err := runProbe(d, cfg, in); err != nil {
				logger.Fatal("vision probe failed", zap.String("model", cfg.Vision.Model), zap.Error(err))
			}
			return
		}
		opts = append(opts, passportphoto.WithDetector(d, cfg.Vision.Model))
		logger.Info("vision detection enabled",
			zap.String("backend", cfg.Vision.Backend),
			zap.String("url", cfg.Vision.URL),
			zap.String("model", cfg.Vision.Model))
	}

	studio, err := passportphoto.NewWithConfig(cfg, opts...)
	if err != nil {
		logger.Fatal("failed to create studio", zap.Error(err))
	}

	req := passportphoto.Request{Source: in, Detect: detect}
	if gesturesPath != "" {
		req.Gestures, err = readGestures(gesturesPath)
		if err != nil {
			logger.Fatal("failed to read gestures", zap.Error(err))
		}
	}

	req.Finish.Background, err = passport.ParseBackground(bg)
	if err != nil {
		logger.Fatal("bad background", zap.Error(err))
	}
	req.Finish.Adjust = passport.Adjustments{
		Brightness: brightness,
		Contrast:   contrast,
		Saturation: saturation,
		Hue:        hue,
	}
	if strings.EqualFold(date, "today") {
		date = passport.FormatDate(time.Now())
	}
	req.Finish.Caption = passport.Caption{Name: name, Date: date, NameSize: nameSize, DateSize: dateSize}

	res, err := studio.Make(context.Background(), req)
	if err != nil {
		logger.Fatal("failed to make passport photo", zap.Error(err))
	}

	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		logger.Fatal("failed to create output directory", zap.Error(err))
	}
	format, _ := processing.NormalizeFormat(cfg.Output.Format)
	outPath := utils.GenerateOutputFilename(in, cfg.Output.Dir, cfg.Output.Prefix, cfg.Output.Suffix, format)
	if err := studio.SaveImage(res.Photo, outPath); err != nil {
		logger.Fatal("failed to save photo", zap.String("path", outPath), zap.Error(err))
	}

	if debug {
		if err := writeDebug(studio, res, in, outPath); err != nil {
			logger.Error("failed to write debug output", zap.Error(err))
		}
	}

	w, h := studio.Document().SizeMM()
	fmt.Printf("%s (%dx%d px, %.0fx%.0f mm)\n", outPath, studio.Document().Width, studio.Document().Height, w, h)
}

// checkInput rejects local paths that are missing or not images before any
// work is done. URLs are checked when fetched.
func checkInput(in string) error {
	if strings.Contains(in, "://") {
		return nil
	}
	if !utils.IsImageFile(in) {
		return fmt.Errorf("%s: not an image file (jpg, png, webp)", in)
	}
	if !utils.FileExists(in) {
		return fmt.Errorf("%s: no such file", in)
	}
	return nil
}

func newDetector(cfg *config.Config, logger *zap.Logger) (*detection.Detector, error) {
	vc, err := client.New(cfg.Vision.Backend, cfg.Vision.URL)
	if err != nil {
		return nil, err
	}
	return detection.NewDetector(vc,
		detection.WithLogger(logger),
		detection.WithMinConfidence(cfg.Vision.MinConfidence)), nil
}

// runProbe checks that the model accepts images by asking it to describe in
func runProbe(d *detection.Detector, cfg *config.Config, in string) error {
	ctx := context.Background()
	p := processing.NewProcessor()
	img, err := p.LoadImageSmart(ctx, in)
	if err != nil {
		return err
	}
	imgB64, err := p.PrepareImageForModel(img, processing.FormatJPEG, cfg.Vision.MaxDim, 85)
	if err != nil {
		return err
	}
	text, err := d.Probe(ctx, cfg.Vision.Model, imgB64)
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimSpace(text))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func readGestures(path string) ([]cropeditor.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cropeditor.ReadEvents(f)
}

// writeDebug saves the crop overlay on the source as png and the region report
func writeDebug(studio *passportphoto.Studio, res *passportphoto.Result, in, outPath string) error {
	// Handles are drawn at their on-screen hit size
	handle := studio.Config().Editor.HandleTolerance * 2 / float64(res.Scale)
	overlay := processing.NewProcessor().CreateDebugOverlay(res.Source, res.Crop, handle)
	if err := studio.SaveImage(overlay, utils.WithSuffix(outPath, "_debug", "png")); err != nil {
		return err
	}

	data, err := json.MarshalIndent(regionReport{
		Source:    in,
		Scale:     float64(res.Scale),
		Display:   res.Region,
		Crop:      res.Crop,
		Suggested: res.Suggested,
		Changes:   res.Changes,
		Output:    outPath,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(utils.WithSuffix(outPath, "_region", "json"), data, 0o644)
}
