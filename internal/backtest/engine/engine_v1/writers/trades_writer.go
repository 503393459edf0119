package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// TradesWriter collects the trade log of a run in DuckDB and exports it to a
// parquet file on Flush.
type TradesWriter struct {
	db         *sql.DB
	outputPath string
	count      int
	mu         sync.Mutex
}

// NewTradesWriter creates a new TradesWriter.
// outputPath is the full path to the parquet file.
func NewTradesWriter(outputPath string) *TradesWriter {
	return &TradesWriter{
		db:         nil,
		outputPath: outputPath,
		count:      0,
		mu:         sync.Mutex{},
	}
}

// Initialize sets up the trades writer with an in-memory DuckDB.
func (w *TradesWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := filepath.Dir(w.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create data directory", err)
	}

	db, err := openMemoryDB()
	if err != nil {
		return err
	}

	w.db = db

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			seq INTEGER,
			symbol TEXT,
			side TEXT,
			price DOUBLE,
			quantity DOUBLE,
			"timestamp" BIGINT,
			commission DOUBLE,
			cash_effect DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create trades table", err)
	}

	return nil
}

// Write stores a trade. Trades keep the order they were written in.
func (w *TradesWriter) Write(trade types.Trade) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	_, err := w.db.Exec(`
		INSERT INTO trades (seq, symbol, side, price, quantity, "timestamp", commission, cash_effect)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.count, trade.Symbol, string(trade.Side), trade.Price, trade.Quantity,
		trade.Timestamp, trade.Commission, trade.CashEffect())
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert trade", err)
	}

	w.count++

	return nil
}

// Flush exports every stored trade to the parquet file.
func (w *TradesWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	return exportToFile(w.db, "SELECT * FROM trades ORDER BY seq ASC", w.outputPath)
}

// GetOutputPath returns the parquet file path.
func (w *TradesWriter) GetOutputPath() string {
	return w.outputPath
}

// GetTradeCount returns the number of trades stored.
func (w *TradesWriter) GetTradeCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.count
}

// GetTotalFees returns the sum of all trade commissions.
func (w *TradesWriter) GetTotalFees() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return 0, errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	var totalFees sql.NullFloat64

	err := w.db.QueryRow("SELECT SUM(commission) FROM trades").Scan(&totalFees)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to sum fees", err)
	}

	if !totalFees.Valid {
		return 0, nil
	}

	return totalFees.Float64, nil
}

// Close releases database resources.
func (w *TradesWriter) Close() error {
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

func openMemoryDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to open DuckDB connection", err)
	}

	return db, nil
}

// exportToFile copies the result of query to path. A .csv path is written as
// CSV with a header, anything else as parquet.
func exportToFile(db *sql.DB, query string, path string) error {
	format := "FORMAT PARQUET"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		format = "FORMAT CSV, HEADER"
	}

	_, err := db.Exec(fmt.Sprintf(`COPY (%s) TO '%s' (%s)`, query, strings.ReplaceAll(path, "'", "''"), format))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "failed to export to %s", path)
	}

	return nil
}
