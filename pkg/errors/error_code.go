package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrderIntent   ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeInvalidStrategy     ErrorCode = 403
	ErrCodeVersionMismatch     ErrorCode = 404

	// Ledger rejections (500-599). These never abort a run.
	ErrCodeOrderFailed          ErrorCode = 500
	ErrCodeNoPosition           ErrorCode = 501
	ErrCodeInsufficientCapital  ErrorCode = 503
	ErrCodeInsufficientPosition ErrorCode = 504

	// Backtest errors (600-699)
	ErrCodeBacktestStateNil      ErrorCode = 600
	ErrCodeBacktestInitFailed    ErrorCode = 601
	ErrCodeBacktestConfigError   ErrorCode = 602
	ErrCodeBacktestDataPathError ErrorCode = 603
	ErrCodeBacktestNoResultsDir  ErrorCode = 607
	ErrCodeBacktestNoDatasource  ErrorCode = 608
	ErrCodeResultWriteFailed     ErrorCode = 609
	ErrCodeBacktestCancelled     ErrorCode = 610

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
