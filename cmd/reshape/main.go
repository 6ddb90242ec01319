package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wdicli/internal/config"
	"wdicli/internal/dataprocessing"
	apperrors "wdicli/internal/errors"
	"wdicli/internal/exporter"
	"wdicli/internal/files"
	"wdicli/internal/infrastructure"
)

func main() {
	in := flag.String("in", "", "main dataset CSV (defaults to data_main.csv in the data directory)")
	meta := flag.String("meta", "", "entity metadata CSV (defaults to data_country.csv, empty string in config disables the merge)")
	out := flag.String("out", "", "output workbook (defaults to global_indicator_output.xlsx in the output directory)")
	rowsPerSheet := flag.Int("rows-per-sheet", 0, "maximum data rows per sheet")
	splitByIndicator := flag.Bool("split-by-indicator", true, "paginate each indicator into its own sheet group")
	csvSidecar := flag.Bool("csv", false, "also write the long table as a CSV next to the workbook")
	configFile := flag.String("config", "", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}

	// Flags beat env and file values, but only the flags actually set
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input.MainFile = *in
		case "meta":
			cfg.Input.MetadataFile = *meta
		case "out":
			cfg.Export.OutputFile = *out
		case "rows-per-sheet":
			cfg.Export.RowsPerSheet = *rowsPerSheet
		case "split-by-indicator":
			cfg.Export.SplitByIndicator = *splitByIndicator
		case "csv":
			cfg.Export.CSVSidecar = *csvSidecar
		}
	})
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = files.NewManager(paths).ResolvePath(cfg.Logging.FilePath)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()

	runID := infrastructure.NewTraceID()
	ctx := infrastructure.WithTraceID(context.Background(), runID)

	logger.InfoContext(ctx, "Starting reshape run",
		slog.String("main_file", cfg.Input.MainFile),
		slog.String("metadata_file", cfg.Input.MetadataFile),
		slog.String("output_file", cfg.Export.OutputFile),
		slog.Int("rows_per_sheet", cfg.Export.RowsPerSheet),
		slog.Bool("split_by_indicator", cfg.Export.SplitByIndicator),
		slog.String("base_dir", paths.BaseDir))

	if err := run(ctx, cfg, paths, os.Stdout); err != nil {
		logger.ErrorContext(ctx, "Run failed",
			slog.String("error_code", apperrors.Code(err)),
			slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(apperrors.ExitCode(err))
	}

	logger.InfoContext(ctx, "Run completed")
}

// run executes the pipeline stages in order: read, reshape, merge,
// paginate, write, preview. Each stage consumes its predecessor's full
// output; there is no streaming overlap.
func run(ctx context.Context, cfg *config.Config, paths *config.Paths, stdout io.Writer) error {
	logger := infrastructure.LoggerFromContext(ctx)
	manager := files.NewManager(paths)

	wide, err := dataprocessing.ReadTable(ctx, manager.ResolvePath(cfg.Input.MainFile))
	if err != nil {
		return err
	}

	roles := dataprocessing.ColumnRoles{
		Entity:        cfg.Input.EntityColumn,
		Indicator:     cfg.Input.IndicatorColumn,
		IndicatorName: cfg.Input.IndicatorNameColumn,
	}
	long, err := dataprocessing.Reshape(ctx, wide, roles)
	if err != nil {
		return err
	}

	// The metadata merge is best effort: a missing or unusable metadata
	// file downgrades to a warning and the run continues unmerged
	if cfg.Input.MetadataFile != "" {
		metaPath := manager.ResolvePath(cfg.Input.MetadataFile)
		metaTable, err := dataprocessing.LoadMetadata(ctx, metaPath, cfg.Input.EntityColumn, cfg.Input.MetadataAttributes)
		if err != nil {
			logger.WarnContext(ctx, "Proceeding without metadata merge",
				slog.String("metadata_file", metaPath),
				slog.String("error", err.Error()))
		} else {
			dataprocessing.MergeMetadata(ctx, long, metaTable)
		}
	}

	pages := exporter.BuildPages(long, cfg.Export.RowsPerSheet, cfg.Export.SplitByIndicator)

	outPath := outputPath(cfg.Export.OutputFile)
	runID := infrastructure.GetTraceID(ctx)
	if err := exporter.NewWorkbookWriter(manager).Write(ctx, long, pages, outPath, runID); err != nil {
		return err
	}

	if cfg.Export.CSVSidecar {
		csvPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".csv"
		if err := exporter.NewCSVWriter(manager).Write(ctx, long, csvPath, runID); err != nil {
			return err
		}
	}

	exporter.WritePreview(stdout, long)

	return nil
}

// outputPath routes a relative output file into the output directory
func outputPath(file string) string {
	if filepath.IsAbs(file) || strings.HasPrefix(file, "output/") {
		return file
	}
	return "output/" + file
}
