// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
Package apperr defines the centralized error handling framework for MealGrid.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Access control: Dedicated constructors for the credential/authorization taxonomy
    (expired token vs invalid token, vendor approval state, ownership).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the MealGrid API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "TOKEN_EXPIRED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// VendorStatus carries the vendor approval state on VENDOR_NOT_APPROVED
	// responses so the client can render the right screen.
	VendorStatus string `json:"vendorStatus,omitempty"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Credential Errors (401)

// Unauthorized creates a generic 401 [AppError].
//
// The message is deliberately vague about which credential check failed;
// only the expired/invalid distinction is surfaced (see [TokenExpired]),
// because clients use it to decide whether to attempt a refresh.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenExpired creates a 401 [AppError] with the distinct TOKEN_EXPIRED code.
func TokenExpired() *AppError {
	return &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Access credential has expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SessionNotFound creates a 401 [AppError] for an unknown, expired, or
// invalidated opaque session token.
func SessionNotFound() *AppError {
	return &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "Session is invalid or expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// # Authorization Errors (403)

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// WrongRole creates a 403 [AppError] for a role mismatch.
func WrongRole() *AppError {
	return &AppError{
		Code:       "WRONG_ROLE",
		Message:    "Your account role does not permit this operation",
		HTTPStatus: http.StatusForbidden,
	}
}

// AccountInactive creates a 403 [AppError] for a deactivated account.
func AccountInactive() *AppError {
	return &AppError{
		Code:       "ACCOUNT_INACTIVE",
		Message:    "This account has been deactivated",
		HTTPStatus: http.StatusForbidden,
	}
}

// VendorNotApproved creates a 403 [AppError] carrying the vendor approval
// state and, when present, the admin-supplied reason.
func VendorNotApproved(status, reason string) *AppError {
	message := "Vendor account is not approved"
	if status == "pending" {
		message = "Vendor application is awaiting approval"
	}
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return &AppError{
		Code:         "VENDOR_NOT_APPROVED",
		Message:      message,
		HTTPStatus:   http.StatusForbidden,
		VendorStatus: status,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Outlet") // "Outlet not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       "UNPROCESSABLE",
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
//
// Infrastructure failures (database, cache) during any access-control stage
// must surface through this constructor — never as a 401.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
