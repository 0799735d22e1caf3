package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrNegativeStock       = NewDomainError("NEGATIVE_STOCK", "Operation would make physical stock negative")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient available stock")
	ErrAlreadyCompleted    = NewDomainError("ALREADY_COMPLETED", "Document has already been completed")
	ErrDuplicateInvoice    = NewDomainError("DUPLICATE_INVOICE", "A non-cancelled invoice already exists for this receipt")
	ErrOverpayment         = NewDomainError("OVERPAYMENT", "Payment amount exceeds the invoice balance")
)
