package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/shared"
)

func TestRecordSendsPayload(t *testing.T) {
	var got StatusReportPayload
	var method, token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		token = r.Header.Get("Device-Token")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rep := NewReporter(srv.URL, map[string]string{"device-token": "abc"})
	finished := time.Date(2025, 10, 11, 15, 0, 0, 0, time.UTC)
	err := rep.Record(context.Background(), shared.CheckRecord{
		RunID:          "run-1",
		VersionName:    "v2",
		Outcome:        "Installing",
		ArtifactSHA256: "deadbeef",
		CreatedAt:      finished,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if method != http.MethodPut {
		t.Errorf("method = %s, want PUT", method)
	}
	if token != "abc" {
		t.Errorf("device-token = %q", token)
	}
	if got.RunID != "run-1" || got.Outcome != "Installing" || got.ArtifactSHA256 != "deadbeef" {
		t.Errorf("payload = %+v", got)
	}
	if !got.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %s", got.FinishedAt)
	}
}

func TestRecordReportsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"unknown device"}`))
	}))
	defer srv.Close()

	err := NewReporter(srv.URL, nil).Record(context.Background(), shared.CheckRecord{RunID: "r"})
	var httpErr *cstmerr.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadRequest || httpErr.Message != "unknown device" {
		t.Errorf("HTTPError = %+v", httpErr)
	}
}
