package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeRateLimited        ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
)

// SMILES decoding error codes. All of them are local to one molecule.
const (
	ErrCodeSMILESSyntax ErrorCode = "SMI_001"
	ErrCodeRingClosure  ErrorCode = "SMI_002"
	ErrCodeValence      ErrorCode = "SMI_003"
	ErrCodeEmptyInput   ErrorCode = "SMI_004"
)

// Functional-group engine error codes.
const (
	ErrCodeTemplateInvalid    ErrorCode = "IFG_001"
	ErrCodeMatchDepthExceeded ErrorCode = "IFG_002"
	ErrCodeCatalogEmpty       ErrorCode = "IFG_003"
)

// Short aliases used at call sites.
const (
	CodeUnknown       = ErrorCode("")
	CodeOK            = ErrorCode("OK")
	CodeInternal      = ErrCodeInternal
	CodeInvalidParam  = ErrCodeBadRequest
	CodeNotFound      = ErrCodeNotFound
	CodeCacheError    = ErrCodeCacheError
	CodeSMILESSyntax  = ErrCodeSMILESSyntax
	CodeRingClosure   = ErrCodeRingClosure
	CodeValence       = ErrCodeValence
	CodeEmptyInput    = ErrCodeEmptyInput
	CodeTemplate      = ErrCodeTemplateInvalid
	CodeDepthExceeded = ErrCodeMatchDepthExceeded
	CodeCatalogEmpty  = ErrCodeCatalogEmpty
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeSMILESSyntax: http.StatusBadRequest,
	ErrCodeRingClosure:  http.StatusBadRequest,
	ErrCodeValence:      http.StatusUnprocessableEntity,
	ErrCodeEmptyInput:   http.StatusBadRequest,

	ErrCodeTemplateInvalid:    http.StatusUnprocessableEntity,
	ErrCodeMatchDepthExceeded: http.StatusUnprocessableEntity,
	ErrCodeCatalogEmpty:       http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeRateLimited:        "rate limit exceeded",

	ErrCodeSMILESSyntax: "malformed SMILES",
	ErrCodeRingClosure:  "unmatched ring closure",
	ErrCodeValence:      "valence exceeded",
	ErrCodeEmptyInput:   "empty SMILES",

	ErrCodeTemplateInvalid:    "invalid functional group template",
	ErrCodeMatchDepthExceeded: "molecule too large for matching",
	ErrCodeCatalogEmpty:       "functional group catalog is empty",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsMalformedInput reports whether code denotes a per-molecule input defect,
// as opposed to an engine or infrastructure failure.
func IsMalformedInput(code ErrorCode) bool {
	switch code {
	case ErrCodeSMILESSyntax, ErrCodeRingClosure, ErrCodeValence, ErrCodeEmptyInput:
		return true
	}
	return false
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
