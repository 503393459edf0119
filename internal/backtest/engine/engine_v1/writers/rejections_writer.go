package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RejectionsWriter records the intents a run's ledger refused in DuckDB and
// exports them to a parquet file on Flush.
type RejectionsWriter struct {
	db         *sql.DB
	sq         squirrel.StatementBuilderType
	outputPath string
	mu         sync.Mutex
}

// NewRejectionsWriter creates a new RejectionsWriter.
// outputPath is the full path to the parquet file.
func NewRejectionsWriter(outputPath string) *RejectionsWriter {
	return &RejectionsWriter{
		db:         nil,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		outputPath: outputPath,
		mu:         sync.Mutex{},
	}
}

// Initialize opens the in-memory database and creates the rejections table.
func (w *RejectionsWriter) Initialize() error {
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

	if err := w.createTable(); err != nil {
		w.db.Close()
		w.db = nil

		return err
	}

	return nil
}

// Write records a rejection.
func (w *RejectionsWriter) Write(rejection types.Rejection) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	var nextID int

	if err := w.db.QueryRow("SELECT nextval('rejection_id_seq')").Scan(&nextID); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to get next rejection id", err)
	}

	intent := rejection.Intent

	_, err := w.sq.
		Insert("rejections").
		Columns("id", "order_id", "symbol", "side", "price", "quantity", `"timestamp"`, "code", "reason").
		Values(nextID, intent.ID, intent.Symbol, string(intent.Side), intent.Price, intent.Quantity,
			intent.Timestamp, rejection.Code, rejection.Reason).
		RunWith(w.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert rejection", err)
	}

	return nil
}

// GetRejections returns every recorded rejection in the order written.
func (w *RejectionsWriter) GetRejections() ([]types.Rejection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil, errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	rows, err := w.sq.
		Select("order_id", "symbol", "side", "price", "quantity", `"timestamp"`, "code", "reason").
		From("rejections").
		OrderBy("id ASC").
		RunWith(w.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query rejections", err)
	}
	defer rows.Close()

	rejections := []types.Rejection{}

	for rows.Next() {
		var rejection types.Rejection

		var side string

		err := rows.Scan(
			&rejection.Intent.ID,
			&rejection.Intent.Symbol,
			&side,
			&rejection.Intent.Price,
			&rejection.Intent.Quantity,
			&rejection.Intent.Timestamp,
			&rejection.Code,
			&rejection.Reason,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan rejection", err)
		}

		rejection.Intent.Side = types.PurchaseType(side)
		rejections = append(rejections, rejection)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rejections", err)
	}

	return rejections, nil
}

// Flush exports every recorded rejection to the parquet file.
func (w *RejectionsWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	return exportToFile(w.db, "SELECT * FROM rejections ORDER BY id ASC", w.outputPath)
}

// Cleanup drops every recorded rejection.
func (w *RejectionsWriter) Cleanup() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return errors.New(errors.ErrCodeResultWriteFailed, "writer not initialized")
	}

	_, err := w.db.Exec(`
		DROP TABLE IF EXISTS rejections;
		DROP SEQUENCE IF EXISTS rejection_id_seq;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to cleanup rejections table", err)
	}

	return w.createTable()
}

// GetOutputPath returns the parquet file path.
func (w *RejectionsWriter) GetOutputPath() string {
	return w.outputPath
}

// Close releases database resources.
func (w *RejectionsWriter) Close() error {
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

func (w *RejectionsWriter) createTable() error {
	if _, err := w.db.Exec(`CREATE SEQUENCE IF NOT EXISTS rejection_id_seq`); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create sequence", err)
	}

	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS rejections (
			id INTEGER PRIMARY KEY,
			order_id TEXT,
			symbol TEXT,
			side TEXT,
			price DOUBLE,
			quantity DOUBLE,
			"timestamp" BIGINT,
			code INTEGER,
			reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create rejections table", err)
	}

	return nil
}
