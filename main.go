package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"housing-dashboard/charts"
	"housing-dashboard/config"
	"housing-dashboard/preview"
	"housing-dashboard/report"
	"housing-dashboard/server"
	"housing-dashboard/services"
	"housing-dashboard/sheet"
	"housing-dashboard/storage"
	"housing-dashboard/utils"
)

var args struct {
	columns    string
	csvDir     string
	screenshot string
}

func main() {
	root := &cobra.Command{
		Use:   "housing-dashboard <rental.xlsx> <ownership.xlsx> <output.html>",
		Short: "Build an interactive housing market dashboard from rental and sales exports",
		Args:  cobra.ExactArgs(3),
		RunE:  runGenerate,

		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&args.columns, "columns", "",
		"YAML/JSON/TOML file overriding the accepted column names (default $COLUMNS_FILE)")
	root.Flags().StringVar(&args.csvDir, "csv-dir", "", "also export the cleaned listings as CSV into this directory")
	root.Flags().StringVar(&args.screenshot, "screenshot", "", "also save a PNG screenshot of the report (needs Chrome)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the upload web UI",
		Args:  cobra.NoArgs,
		RunE:  runServe,

		SilenceUsage:  true,
		SilenceErrors: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// app is what both commands share.
type app struct {
	cfg       *config.Config
	logger    *utils.Logger
	columns   config.Columns
	renderer  *charts.Renderer
	assembler *report.Assembler
}

func setup() (*app, error) {
	cfg := config.Load()
	logger := utils.NewLogger()
	logger.SetLevel(cfg.LogLevel)

	path := args.columns
	if path == "" {
		path = cfg.ColumnsFile
	}
	cols, err := config.LoadColumns(path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Info("[config] Column names loaded from %s", path)
	}

	renderer, err := charts.NewRenderer(charts.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight})
	if err != nil {
		return nil, err
	}
	assembler, err := report.NewAssembler()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, columns: cols, renderer: renderer, assembler: assembler}, nil
}

func runGenerate(cmd *cobra.Command, argv []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	rentalPath, ownershipPath, outPath := argv[0], argv[1], argv[2]
	a.logger.Info("=== Housing Dashboard starting ===")

	rental, err := storage.ReadWorkbook(rentalPath)
	if err != nil {
		return err
	}
	ownership, err := storage.ReadWorkbook(ownershipPath)
	if err != nil {
		return err
	}

	dashboard := services.NewDashboard(a.columns, a.renderer, a.assembler, a.logger)
	var buf bytes.Buffer
	doc, err := dashboard.Generate(&buf, rental, ownership)
	if err != nil {
		var cnf *sheet.ColumnNotFoundError
		if errors.As(err, &cnf) {
			printMissingColumn(os.Stdout, cnf)
		}
		if errors.Is(err, services.ErrNoListings) {
			a.logger.Error("All listings were dropped during cleaning. Check the input files.")
		}
		return err
	}
	err = storage.WriteFile(outPath, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
	if err != nil {
		return err
	}
	a.logger.Info("Dashboard written to %s", outPath)

	if args.csvDir != "" {
		if err := exportCSV(args.csvDir, doc); err != nil {
			a.logger.Error("CSV export failed: %v", err)
		} else {
			a.logger.Info("Cleaned listings saved to %s", args.csvDir)
		}
	}

	if args.screenshot != "" {
		if err := screenshot(cmd.Context(), a, outPath, args.screenshot); err != nil {
			a.logger.Warn("Screenshot skipped: %v", err)
		}
	}

	services.PrintSummary(os.Stdout, doc)
	fmt.Printf("  Done. Report → %s\n\n", outPath)
	return nil
}

func exportCSV(dir string, doc *report.Document) error {
	w, err := storage.NewCSVWriter(dir)
	if err != nil {
		return err
	}
	if err := w.WriteRentals(doc.Rental.Listings); err != nil {
		return err
	}
	return w.WriteOwnership(doc.Ownership.Listings)
}

func screenshot(ctx context.Context, a *app, htmlPath, pngPath string) error {
	c, err := preview.NewCapturer(preview.Options{
		ChromeBin:  a.cfg.ChromeBin,
		Wait:       time.Duration(a.cfg.ScreenshotWaitMs) * time.Millisecond,
		MaxRetries: a.cfg.MaxRetries,
	}, a.logger)
	if err != nil {
		return err
	}
	return c.Capture(ctx, htmlPath, filepath.Clean(pngPath))
}

func printMissingColumn(w io.Writer, err *sheet.ColumnNotFoundError) {
	fmt.Fprintln(w)
	if err.Table != "" {
		fmt.Fprintf(w, "Sheet %q is missing a required column.\n", err.Table)
	}
	fmt.Fprintln(w, "Looked for any of:")
	for _, c := range err.Candidates {
		fmt.Fprintf(w, "  - %s\n", c)
	}
	fmt.Fprintln(w, "Available columns:")
	for i, c := range err.Available {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, c)
	}
	fmt.Fprintln(w)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	a.logger.Info("=== Housing Dashboard UI starting ===")
	a.logger.Info("Config: addr %s | max upload %d MB | concurrent jobs %d",
		a.cfg.ListenAddr, a.cfg.MaxUploadMB, a.cfg.MaxConcurrentJobs)

	api, err := server.NewWebAPI(a.logger, server.Config{
		Addr:           a.cfg.ListenAddr,
		MaxUploadBytes: a.cfg.MaxUploadBytes(),
		MaxJobs:        a.cfg.MaxConcurrentJobs,
		Dependencies: server.Dependencies{
			Columns:   a.columns,
			Renderer:  a.renderer,
			Assembler: a.assembler,
		},
	})
	if err != nil {
		return err
	}
	return api.Start(cmd.Context())
}
