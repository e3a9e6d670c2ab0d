package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code plus a client-safe message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns infrastructure errors into client-safe codes and messages.
// context names the operation or resource, e.g. "customer" or "create favorites".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{Code: ResourceConflict, Message: "Referenced data does not exist or is still in use"}
	}

	if strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A dependency is unreachable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: CustomerEmailExists, Message: "Email already registered"}
	case strings.Contains(errLower, "uix_customer_product"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Product already favorited"}
	default:
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "favorite"):
		return "Favorite not found"
	case strings.Contains(contextLower, "customer"):
		return "Customer not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	default:
		return "Requested resource not found"
	}
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"):
		return "Failed to create the resource, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the resource, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete the resource, please try again later"
	default:
		return "Internal server error, please try again later"
	}
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
