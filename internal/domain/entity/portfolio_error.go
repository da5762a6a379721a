package entity

import "fmt"

// ErrorKind classifies a failure of the valuation pipeline.
type ErrorKind string

const (
	// ValidationError is a bad request, e.g. a missing provider key.
	ValidationError ErrorKind = "validation"
	// UpstreamError is an unrecovered failure of a chain data provider.
	UpstreamError ErrorKind = "upstream"
	// ComputationError is anything else that went wrong while building a snapshot.
	ComputationError ErrorKind = "computation"
)

// PortfolioError represents an error that occurred while building a portfolio snapshot.
type PortfolioError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PortfolioError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PortfolioError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a validation PortfolioError.
func NewValidationError(message string) *PortfolioError {
	return &PortfolioError{Kind: ValidationError, Message: message}
}

// NewUpstreamError wraps err as an upstream PortfolioError.
func NewUpstreamError(message string, err error) *PortfolioError {
	return &PortfolioError{Kind: UpstreamError, Message: message, Err: err}
}

// NewComputationError wraps err as a computation PortfolioError.
func NewComputationError(message string, err error) *PortfolioError {
	return &PortfolioError{Kind: ComputationError, Message: message, Err: err}
}
