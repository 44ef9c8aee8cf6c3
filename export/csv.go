package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dnldd/screener/pipeline"
	"github.com/gocarina/gocsv"
)

const (
	// DefaultCombinedFile is the default name of the all-symbols output file.
	DefaultCombinedFile = "combined.csv"
)

// fileNameReplacer strips path separators from symbols used as file names.
var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// CSVWriterConfig represents the configuration for the csv writer.
type CSVWriterConfig struct {
	// Dir is the output directory.
	Dir string
	// CombinedFile is the file name of the all-symbols output.
	CombinedFile string
}

// CSVWriter represents a writer of per-symbol and combined pipeline csv files.
type CSVWriter struct {
	cfg *CSVWriterConfig
}

// NewCSVWriter initializes a new csv writer, creating the output directory if needed.
func NewCSVWriter(cfg *CSVWriterConfig) (*CSVWriter, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.CombinedFile == "" {
		cfg.CombinedFile = DefaultCombinedFile
	}

	err := os.MkdirAll(cfg.Dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &CSVWriter{cfg: cfg}, nil
}

// SymbolPath returns the output path of the provided symbol.
func (w *CSVWriter) SymbolPath(symbol string) string {
	return filepath.Join(w.cfg.Dir, fileNameReplacer.Replace(symbol)+".csv")
}

// CombinedPath returns the output path of the combined file.
func (w *CSVWriter) CombinedPath() string {
	return filepath.Join(w.cfg.Dir, w.cfg.CombinedFile)
}

// writeRows writes the provided rows with a header to the file at path, replacing it.
func writeRows(path string, rows []pipeline.Row) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	err = gocsv.Marshal(rows, f)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding rows: %w", err)
	}

	err = f.Close()
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}

	err = os.Rename(tmp, path)
	if err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}

// Persist writes the rows of a symbol to its own file.
func (w *CSVWriter) Persist(ctx context.Context, runID string, symbol string, rows []pipeline.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := writeRows(w.SymbolPath(symbol), rows)
	if err != nil {
		return fmt.Errorf("writing %s rows: %w", symbol, err)
	}

	return nil
}

// WriteCombined writes the rows of all symbols to the combined file.
func (w *CSVWriter) WriteCombined(ctx context.Context, rows []pipeline.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := writeRows(w.CombinedPath(), rows)
	if err != nil {
		return fmt.Errorf("writing combined rows: %w", err)
	}

	return nil
}
