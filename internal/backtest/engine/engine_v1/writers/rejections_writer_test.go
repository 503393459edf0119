package writers

import (
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

func rejection(id string, side types.PurchaseType, code errors.ErrorCode) types.Rejection {
	return types.Rejection{
		Intent: types.OrderIntent{
			ID:        id,
			Symbol:    "TEST",
			Side:      side,
			Price:     100,
			Quantity:  5,
			Timestamp: 1000,
		},
		Code:   int(code),
		Reason: "rejected",
	}
}

func (s *WritersTestSuite) TestRejectionsWriter_NotInitialized() {
	w := NewRejectionsWriter(filepath.Join(s.tempDir, "rejections.parquet"))

	s.Error(w.Write(rejection("sell_1", types.PurchaseTypeSell, errors.ErrCodeNoPosition)))
	s.Error(w.Flush())

	_, err := w.GetRejections()
	s.Error(err)
	s.NoError(w.Close())
}

func (s *WritersTestSuite) TestRejectionsWriter_WriteAndGet() {
	w := NewRejectionsWriter(filepath.Join(s.tempDir, "rejections.parquet"))
	s.Require().NoError(w.Initialize())
	defer w.Close()

	expected := []types.Rejection{
		rejection("buy_3", types.PurchaseTypeBuy, errors.ErrCodeInsufficientCapital),
		rejection("sell_7", types.PurchaseTypeSell, errors.ErrCodeNoPosition),
	}

	for _, r := range expected {
		s.Require().NoError(w.Write(r))
	}

	got, err := w.GetRejections()
	s.Require().NoError(err)
	s.Equal(expected, got)
}

func (s *WritersTestSuite) TestRejectionsWriter_Cleanup() {
	w := NewRejectionsWriter(filepath.Join(s.tempDir, "rejections.parquet"))
	s.Require().NoError(w.Initialize())
	defer w.Close()

	s.Require().NoError(w.Write(rejection("buy_1", types.PurchaseTypeBuy, errors.ErrCodeInsufficientCapital)))
	s.Require().NoError(w.Cleanup())

	got, err := w.GetRejections()
	s.Require().NoError(err)
	s.Empty(got)

	// ids restart after cleanup
	s.Require().NoError(w.Write(rejection("buy_2", types.PurchaseTypeBuy, errors.ErrCodeInsufficientCapital)))
	got, err = w.GetRejections()
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *WritersTestSuite) TestRejectionsWriter_Flush() {
	outputPath := filepath.Join(s.tempDir, "run", "rejections.parquet")
	w := NewRejectionsWriter(outputPath)
	s.Require().NoError(w.Initialize())
	defer w.Close()

	s.Require().NoError(w.Write(rejection("sell_1", types.PurchaseTypeSell, errors.ErrCodeNoPosition)))
	s.Require().NoError(w.Write(rejection("sell_2", types.PurchaseTypeSell, errors.ErrCodeInsufficientPosition)))
	s.Require().NoError(w.Flush())

	_, err := os.Stat(outputPath)
	s.Require().NoError(err)
	s.Equal(outputPath, w.GetOutputPath())
	s.Equal(2, s.queryCount("SELECT COUNT(*) FROM read_parquet('"+outputPath+"')"))
}
