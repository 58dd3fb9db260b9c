// Command sqlforge reads JSON records and prints literal INSERT statements
// for them. Statements go to stdout, diagnostics to stderr.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"sqlforge/internal/colset"
	"sqlforge/internal/config"
	"sqlforge/internal/insert"
	"sqlforge/internal/logging"
	"sqlforge/internal/record"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" {
			fmt.Printf("sqlforge %s (%s)\n", Version, Commit)
			return
		}
	}

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("sqlforge error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validationResult := cfg.Validate()
	if validationResult.HasErrors() {
		for _, verr := range validationResult.Errors {
			slog.Error("configuration error",
				slog.String("field", verr.Field),
				slog.String("message", verr.Message),
				slog.String("hint", verr.Hint),
			)
		}
		return fmt.Errorf("configuration validation failed")
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	input := stdin
	if cfg.Input != "" && cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	recs, err := readRecords(input, cfg.Format)
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no records in input")
	}
	logger.Debug("records loaded", slog.Int("count", len(recs)))

	statements, err := generateStatements(cfg, recs)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if _, err := fmt.Fprintln(stdout, stmt+";"); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
	}
	logger.Info("statements generated",
		slog.Int("records", len(recs)),
		slog.Int("statements", len(statements)),
		slog.String("table", cfg.Table),
	)
	return nil
}

// generateStatements builds one multi-row statement in batch mode, or one
// statement per record otherwise. A single column set is derived up front
// and shared across all records.
func generateStatements(cfg *config.Config, recs []*record.Record) ([]string, error) {
	var schema any
	if len(cfg.Columns) > 0 {
		schema = cfg.Columns
	}

	cs, err := colset.New(schema, recs[0], colset.Options{
		Table:       cfg.Table,
		NullMissing: cfg.NullMissing,
	})
	if err != nil {
		return nil, err
	}
	if len(cfg.Exclude) > 0 {
		cs = cs.WithExclusions(cfg.Exclude...)
	}

	opts := insert.Options{Capitalize: cfg.Capitalize}

	if cfg.Batch {
		stmt, err := insert.Generate(cfg.Table, cs, recs, opts)
		if err != nil {
			return nil, err
		}
		return []string{stmt}, nil
	}

	statements := make([]string, 0, len(recs))
	for i, rec := range recs {
		stmt, err := insert.Generate(cfg.Table, cs, rec, opts)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}
