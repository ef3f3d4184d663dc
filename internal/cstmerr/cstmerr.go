package cstmerr

import (
	"errors"
	"fmt"
)

// BaseError provides a base for custom errors, allowing for wrapped errors.
type BaseError struct {
	Msg string
	Err error // Underlying error
}

func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *BaseError) Unwrap() error {
	return e.Err
}

var (
	// ErrCheckInProgress is returned when Check is called while another check
	// on the same updater has not finished yet.
	ErrCheckInProgress = errors.New("update check already in progress")
	// ErrDownloadInProgress is surfaced when a second download is requested
	// while one is still streaming.
	ErrDownloadInProgress = errors.New("update download already in progress")
)

// ConfigError indicates a problem with configuration.
type ConfigError struct{ BaseError }

func NewConfigError(msg string, underlyingErr error) *ConfigError {
	return &ConfigError{BaseError{Msg: msg, Err: underlyingErr}}
}

// HTTPError indicates the server answered with a status other than 200.
type HTTPError struct {
	BaseError
	StatusCode int
	Message    string // Response body, if any
}

func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		BaseError:  BaseError{Msg: fmt.Sprintf("server returned status %d", statusCode)},
		StatusCode: statusCode,
		Message:    message,
	}
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return e.BaseError.Msg
	}
	return fmt.Sprintf("%s - %s", e.BaseError.Msg, e.Message)
}

// IOError indicates a network or disk failure.
type IOError struct{ BaseError }

func NewIOError(msg string, underlyingErr error) *IOError {
	return &IOError{BaseError{Msg: "I/O error: " + msg, Err: underlyingErr}}
}

// TimeoutError indicates a connect or read timeout.
type TimeoutError struct{ BaseError }

func NewTimeoutError(underlyingErr error) *TimeoutError {
	return &TimeoutError{BaseError{Msg: "Timeout error", Err: underlyingErr}}
}

// ParseError indicates the check response could not be turned into update info.
type ParseError struct{ BaseError }

func NewParseError(msg string, underlyingErr error) *ParseError {
	return &ParseError{BaseError{Msg: "Parse error: " + msg, Err: underlyingErr}}
}

// ValidationError indicates a downloaded artifact failed the structural check.
type ValidationError struct {
	BaseError
	Path string
}

func NewValidationError(path string, underlyingErr error) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{Msg: fmt.Sprintf("artifact %s is not a valid package", path), Err: underlyingErr},
		Path:      path,
	}
}

// InstallError indicates the installer could not be dispatched.
type InstallError struct{ BaseError }

func NewInstallError(msg string, underlyingErr error) *InstallError {
	return &InstallError{BaseError{Msg: "Install error: " + msg, Err: underlyingErr}}
}

// FileIOError indicates an I/O problem during file operations.
type FileIOError struct{ BaseError }

func NewFileIOError(msg string, underlyingErr error) *FileIOError {
	return &FileIOError{BaseError{Msg: "I/O error during file operation: " + msg, Err: underlyingErr}}
}

type FileDeleteError struct{ BaseError }

func NewFileDeleteError(msg string, underlyingErr error) *FileDeleteError {
	return &FileDeleteError{BaseError{Msg: "File delete error: " + msg, Err: underlyingErr}}
}

type DBError struct{ BaseError }

func NewDBError(msg string, underlyingErr error) *DBError {
	return &DBError{BaseError{Msg: "Database error: " + msg, Err: underlyingErr}}
}

// DBConnectionError indicates a problem connecting to the database.
type DBConnectionError struct{ BaseError }

func NewDBConnectionError(msg string, underlyingErr error) *DBConnectionError {
	return &DBConnectionError{BaseError{Msg: "DB connection error: " + msg, Err: underlyingErr}}
}

// DBQueryError indicates a problem executing a database query.
type DBQueryError struct{ BaseError }

func NewDBQueryError(msg string, underlyingErr error) *DBQueryError {
	return &DBQueryError{BaseError{Msg: "DB query error: " + msg, Err: underlyingErr}}
}
