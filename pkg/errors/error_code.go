package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeInvalidThreshold     ErrorCode = 112
	ErrCodeInvalidStdDevPeriod  ErrorCode = 113
	ErrCodeInvalidLength        ErrorCode = 116
	ErrCodeInvalidSeries        ErrorCode = 120
	ErrCodeMismatchedLength     ErrorCode = 121

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204
	ErrCodeWriteFailed           ErrorCode = 205

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302
	ErrCodeUnsupportedIndicator   ErrorCode = 303
	ErrCodeDegenerateBand         ErrorCode = 304

	// Feature pipeline errors (400-499)
	ErrCodeInsufficientFeatureData ErrorCode = 400
	ErrCodeScalerNotFitted         ErrorCode = 401
	ErrCodeScalerMissing           ErrorCode = 402
	ErrCodeScalerStateInvalid      ErrorCode = 403
	ErrCodeInvalidSequenceLength   ErrorCode = 404

	// Forecast errors (500-599)
	ErrCodeInsufficientHistory ErrorCode = 500
	ErrCodePredictionFailed    ErrorCode = 501
	ErrCodePredictorLoadFailed ErrorCode = 502
	ErrCodeInvalidPrediction   ErrorCode = 503
	ErrCodeStaleWindow         ErrorCode = 504
)
