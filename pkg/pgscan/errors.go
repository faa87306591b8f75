package pgscan

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	resources, err := s.Scan("com.example")
//	if errors.Is(err, pgscan.ErrArchiveOpen) {
//	    // one of the archive roots is missing or corrupt
//	}
var (
	// ErrResolution indicates the loader query for search roots failed.
	ErrResolution = errors.New("resolution failed")

	// ErrMalformedLocation indicates a root URI could not be decoded.
	ErrMalformedLocation = errors.New("malformed location")

	// ErrArchiveOpen indicates an archive root could not be opened or does
	// not contain the requested internal path.
	ErrArchiveOpen = errors.New("archive open failed")

	// ErrWalk indicates a traversal failure inside a root.
	ErrWalk = errors.New("walk failed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPropertyNotFound indicates a required property is not defined.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrUnsupportedType indicates a property cannot be converted to the
	// requested Go type.
	ErrUnsupportedType = errors.New("unsupported value type")

	// ErrEmptyResult indicates a query expected a row and returned none.
	ErrEmptyResult = errors.New("empty result set")

	// ErrIncorrectResultSize indicates a query returned or affected more
	// rows than expected.
	ErrIncorrectResultSize = errors.New("incorrect result size")

	// ErrDataAccess indicates a SQL statement issued through the template
	// failed.
	ErrDataAccess = errors.New("data access failed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrPropertyNotFound),
		errors.Is(err, ErrUnsupportedType):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrResolution):
		return ExitResolutionError
	case errors.Is(err, ErrMalformedLocation):
		return ExitMalformedLocation
	case errors.Is(err, ErrArchiveOpen):
		return ExitArchiveError
	case errors.Is(err, ErrWalk):
		return ExitWalkError
	case errors.Is(err, ErrDataAccess),
		errors.Is(err, ErrEmptyResult),
		errors.Is(err, ErrIncorrectResultSize):
		return ExitDataAccessError
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ExitConnectionError
	}

	if isUsageError(err.Error()) {
		return ExitUsageError
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError matches the messages cobra produces for argument and flag
// misuse.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"requires at least",
		"required flag",
		"invalid argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
