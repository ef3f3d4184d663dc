package cstmerr

import (
	"errors"
	"io"
	"testing"
)

func TestBaseErrorWrapsUnderlying(t *testing.T) {
	err := NewIOError("reading body", io.ErrUnexpectedEOF)

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("IOError should unwrap to the underlying error")
	}
	if got, want := err.Error(), "I/O error: reading body: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestHTTPErrorCarriesStatus(t *testing.T) {
	var err error = NewHTTPError(500, "")

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatal("errors.As should find *HTTPError")
	}
	if httpErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", httpErr.StatusCode)
	}
	if got := err.Error(); got != "server returned status 500" {
		t.Errorf("Error() = %q", got)
	}

	withBody := NewHTTPError(404, "not found")
	if got := withBody.Error(); got != "server returned status 404 - not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationErrorKeepsPath(t *testing.T) {
	err := NewValidationError("/cache/update_v1.apk", errors.New("zip: not a valid zip file"))
	if err.Path != "/cache/update_v1.apk" {
		t.Errorf("Path = %s", err.Path)
	}
	if err.Unwrap() == nil {
		t.Error("underlying error lost")
	}
}
