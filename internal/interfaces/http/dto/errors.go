package dto

import (
	"net/http"
	"strings"
)

// Error codes, formatted ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	// ErrCodeFeatureLocked is returned when the user's tier or quota denies a feature
	ErrCodeFeatureLocked = "ERR_FEATURE_LOCKED"
	// ErrCodeEntitlementLoading is returned when a gate runs before entitlements resolve
	ErrCodeEntitlementLoading = "ERR_ENTITLEMENT_LOADING"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"

	ErrCodeBusinessRule     = "ERR_BUSINESS_RULE"
	ErrCodePlanNotAvailable = "ERR_PLAN_NOT_AVAILABLE"
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeFeatureLocked:      http.StatusForbidden,
	ErrCodeEntitlementLoading: http.StatusServiceUnavailable,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodePlanNotAvailable: http.StatusUnprocessableEntity,
	ErrCodeInvalidSignature: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeMapping maps domain error codes to API error codes
var domainCodeMapping = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"ALREADY_EXISTS":     ErrCodeAlreadyExists,
	"INVALID_INPUT":      ErrCodeValidation,
	"UNAUTHORIZED":       ErrCodeUnauthorized,
	"FORBIDDEN":          ErrCodeForbidden,
	"FEATURE_LOCKED":     ErrCodeFeatureLocked,
	"PLAN_NOT_AVAILABLE": ErrCodePlanNotAvailable,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Every INVALID_* domain code is a validation failure; codes already in the
// API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeMapping[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return code
}
