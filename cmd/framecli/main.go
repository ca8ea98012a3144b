// Command framecli renders FrameFlow campaigns from the terminal: load a
// campaign descriptor, a template asset and optional participant state,
// then export a PNG, a PDF or a bulk zip archive.
//
// Configuration comes from the environment (optionally a .env file), with
// per-run parameters as flags:
//
//	FRAMEFLOW_FONTS_DIR  directory of .ttf/.otf files, keyed by file stem
//	FRAMEFLOW_OUT_DIR    artifact destination directory (default ".")
//	FRAMEFLOW_VERBOSE    enable debug logging
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/gogpu/gg/text"
	"github.com/joho/godotenv"

	"github.com/frameflow/frameflow"
	"github.com/frameflow/frameflow/assets"
	"github.com/frameflow/frameflow/export"
	"github.com/frameflow/frameflow/geom"
	"github.com/frameflow/frameflow/render"
)

type config struct {
	FontsDir string `env:"FRAMEFLOW_FONTS_DIR"`
	OutDir   string `env:"FRAMEFLOW_OUT_DIR" envDefault:"."`
	Verbose  bool   `env:"FRAMEFLOW_VERBOSE"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	var (
		campaignPath = flag.String("campaign", "", "campaign descriptor (json)")
		templatePath = flag.String("template", "", "template image (png/jpeg/webp)")
		photoPath    = flag.String("photo", "", "participant photo for photo-frame campaigns")
		format       = flag.String("format", "png", "artifact format: png, pdf or zip")
		scale        = flag.Float64("scale", 1, "photo zoom")
		rotation     = flag.Float64("rotation", 0, "photo rotation in degrees")
		offsetX      = flag.Float64("offset-x", 0, "photo x offset in raster pixels")
		offsetY      = flag.Float64("offset-y", 0, "photo y offset in raster pixels")
		bulkField    = flag.String("bulk-field", "", "field id the bulk values substitute into")
		valuesPath   = flag.String("values", "", "file of bulk values, one per line")
	)
	values := map[string]string{}
	flag.Func("set", "field value as id=text (repeatable)", func(s string) error {
		id, v, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("want id=text, got %q", s)
		}
		values[id] = v
		return nil
	})
	flag.Parse()

	if cfg.Verbose {
		frameflow.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if *campaignPath == "" {
		log.Fatal("-campaign is required")
	}
	campaign, err := loadCampaign(*campaignPath)
	if err != nil {
		log.Fatalf("load campaign: %v", err)
	}

	fonts := assets.NewFontRegistry()
	defer fonts.Close()
	if err := loadFonts(fonts, cfg.FontsDir); err != nil {
		log.Fatalf("load fonts: %v", err)
	}

	req := render.Request{
		Campaign: campaign,
		Transform: render.PhotoTransform{
			Scale:    *scale,
			Rotation: render.NormalizeRotation(*rotation),
			Offset:   geom.Pt(*offsetX, *offsetY),
		},
		Overrides: render.NewOverrides(campaign.Fields),
	}
	req.Overrides.Active = ""
	for id, v := range values {
		if campaign.Field(id) == nil {
			log.Fatalf("-set %s: campaign has no such field", id)
		}
		req.Overrides.SetValue(id, v)
	}

	if *templatePath != "" {
		if req.Template, err = loadImage(*templatePath); err != nil {
			log.Fatalf("load template: %v", err)
		}
	}
	if *photoPath != "" {
		if req.Photo, err = loadImage(*photoPath); err != nil {
			log.Fatalf("load photo: %v", err)
		}
	}

	exporter := export.NewExporter(
		render.NewCompositor(fonts),
		export.DirSaver{Dir: cfg.OutDir},
		export.WithOnComplete(func(id string) {
			frameflow.Logger().Info("artifact completed", "campaign", id)
		}),
	)

	switch *format {
	case "png":
		err = exporter.ExportImage(req)
	case "pdf":
		err = exporter.ExportPDF(req)
	case "zip":
		err = runBulk(exporter, req, *bulkField, *valuesPath)
	default:
		log.Fatalf("unknown format %q", *format)
	}
	if err != nil {
		log.Fatalf("export: %v", err)
	}
}

func loadCampaign(path string) (*frameflow.Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c frameflow.Campaign
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func loadImage(path string) (*assets.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.Decode(f)
}

// loadFonts registers every font file in dir under its file stem, using
// the first as fallback. With no dir configured a system font backs the
// watermark and placeholders.
func loadFonts(fonts *assets.FontRegistry, dir string) error {
	if dir == "" {
		if path := assets.FindSystemFont(); path != "" {
			src, err := text.NewFontSourceFromFile(path)
			if err != nil {
				return err
			}
			fonts.SetFallback(src)
		}
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	loaded := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		family := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		path := filepath.Join(dir, e.Name())
		if err := fonts.LoadFile(family, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if loaded == 0 {
			src, err := text.NewFontSourceFromFile(path)
			if err != nil {
				return err
			}
			fonts.SetFallback(src)
		}
		loaded++
	}
	return nil
}

func runBulk(exporter *export.Exporter, req render.Request, fieldID, valuesPath string) error {
	if fieldID == "" || valuesPath == "" {
		return fmt.Errorf("zip format needs -bulk-field and -values")
	}
	if req.Campaign.Field(fieldID) == nil {
		return fmt.Errorf("campaign has no field %q", fieldID)
	}

	f, err := os.Open(valuesPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var values []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		values = append(values, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return err
	}

	return exporter.ExportBulk(export.BulkJob{
		Request: req,
		FieldID: fieldID,
		Values:  values,
		OnProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	})
}
