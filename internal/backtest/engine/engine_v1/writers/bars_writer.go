package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// BarWriter defines the interface for writing bars to a destination.
type BarWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Bar) error
	// Finalize completes the writing process and exports the file.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// BarsWriter writes bars in the layout DuckDBDataSource reads: parquet by
// default, CSV when the output path ends in .csv.
type BarsWriter struct {
	db         *sql.DB
	outputPath string
	mu         sync.Mutex
}

func NewBarsWriter(outputPath string) BarWriter {
	return &BarsWriter{
		db:         nil,
		outputPath: outputPath,
		mu:         sync.Mutex{},
	}
}

// Initialize implements BarWriter.
func (w *BarsWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create data directory", err)
	}

	db, err := openMemoryDB()
	if err != nil {
		return err
	}

	w.db = db

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			"timestamp" BIGINT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create bars table", err)
	}

	return nil
}

// Write implements BarWriter.
func (w *BarsWriter) Write(bar types.Bar) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	_, err := w.db.Exec(`INSERT INTO bars VALUES (?, ?, ?, ?, ?, ?)`,
		bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert bar", err)
	}

	return nil
}

// Finalize implements BarWriter.
func (w *BarsWriter) Finalize() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return "", errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	if err := exportToFile(w.db, `SELECT * FROM bars ORDER BY "timestamp" ASC`, w.outputPath); err != nil {
		return "", err
	}

	return w.outputPath, nil
}

// GetOutputPath implements BarWriter.
func (w *BarsWriter) GetOutputPath() string {
	return w.outputPath
}

// Close implements BarWriter.
func (w *BarsWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}

		w.db = nil
	}

	return nil
}

// WriteBars writes all bars to outputPath in one go.
func WriteBars(outputPath string, bars []types.Bar) error {
	writer := NewBarsWriter(outputPath)
	if err := writer.Initialize(); err != nil {
		return err
	}
	defer writer.Close()

	for _, bar := range bars {
		if err := writer.Write(bar); err != nil {
			return err
		}
	}

	_, err := writer.Finalize()

	return err
}
