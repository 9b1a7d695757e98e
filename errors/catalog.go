package errors

import "net/http"

// Catalog lists every error condition the carmarket API can raise.
type Catalog struct {
	// Request errors
	ValidationFailed *Entry
	PayloadTooLarge  *Entry
	RouteNotFound    *Entry
	MethodNotAllowed *Entry
	RateLimited      *Entry

	// Authentication/Authorization errors
	Unauthorized       *Entry
	InvalidCredentials *Entry
	TokenExpired       *Entry
	InvalidToken       *Entry
	Forbidden          *Entry

	// Resource errors
	CarNotFound       *Entry
	UserAlreadyExists *Entry
	ListingConflict   *Entry

	// Internal errors
	ServiceUnavailable *Entry
	Internal           *Entry
}

// Errors is the application catalog. Pass its fields to New. Entries are
// immutable; replacing a slot does not change Default, so errors built from
// the replacement panic as unregistered.
var Errors = Catalog{
	ValidationFailed: NewEntry(http.StatusBadRequest, "Invalid request body"),
	PayloadTooLarge:  NewEntry(http.StatusRequestEntityTooLarge, "Request body is too large"),
	RouteNotFound:    NewEntry(http.StatusNotFound, "Route not found"),
	MethodNotAllowed: NewEntry(http.StatusMethodNotAllowed, "Method not allowed"),
	RateLimited:      NewEntry(http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again."),

	Unauthorized:       NewEntry(http.StatusUnauthorized, "Authentication required"),
	InvalidCredentials: NewEntry(http.StatusUnauthorized, "Invalid username or password"),
	TokenExpired:       NewEntry(http.StatusUnauthorized, "Your session has expired. Please log in again."),
	InvalidToken:       NewEntry(http.StatusUnauthorized, "Invalid authentication token"),
	Forbidden:          NewEntry(http.StatusForbidden, "You don't have permission to perform this action"),

	CarNotFound:       NewEntry(http.StatusNotFound, "Car not found"),
	UserAlreadyExists: NewEntry(http.StatusConflict, "A user with these details already exists"),
	ListingConflict:   NewEntry(http.StatusConflict, "The listing was modified by another request"),

	ServiceUnavailable: NewEntry(http.StatusServiceUnavailable, "The service is temporarily unavailable. Please try again."),
	Internal:           NewEntry(http.StatusInternalServerError, "An unexpected error occurred. Please try again or contact support."),
}

// Default is the registry over Errors.
var Default = MustRegistry(map[Key]*Entry{
	"VALIDATION_FAILED":   Errors.ValidationFailed,
	"PAYLOAD_TOO_LARGE":   Errors.PayloadTooLarge,
	"ROUTE_NOT_FOUND":     Errors.RouteNotFound,
	"METHOD_NOT_ALLOWED":  Errors.MethodNotAllowed,
	"RATE_LIMITED":        Errors.RateLimited,
	"UNAUTHORIZED":        Errors.Unauthorized,
	"INVALID_CREDENTIALS": Errors.InvalidCredentials,
	"TOKEN_EXPIRED":       Errors.TokenExpired,
	"INVALID_TOKEN":       Errors.InvalidToken,
	"FORBIDDEN":           Errors.Forbidden,
	"CAR_NOT_FOUND":       Errors.CarNotFound,
	"USER_ALREADY_EXISTS": Errors.UserAlreadyExists,
	"LISTING_CONFLICT":    Errors.ListingConflict,
	"SERVICE_UNAVAILABLE": Errors.ServiceUnavailable,
	"INTERNAL_ERROR":      Errors.Internal,
})
