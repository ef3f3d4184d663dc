// Package report sends finished check runs to a status endpoint.
package report

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"time"

	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/logging"
	"easyupdate-go/internal/shared"

	"resty.dev/v3"
)

var log = logging.L("report")

// StatusReportPayload is the JSON body sent for every run.
type StatusReportPayload struct {
	RunID          string    `json:"runId"`
	VersionName    string    `json:"versionName"`
	Manual         bool      `json:"manual"`
	Outcome        string    `json:"outcome"`
	StatusMessage  string    `json:"statusMessage,omitempty"`
	ArtifactSHA256 string    `json:"artifactSha256,omitempty"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// StatusErr matches the JSON structure of API error messages.
type StatusErr struct {
	Message string `json:"message"`
}

// Reporter PUTs run outcomes to a status endpoint.
type Reporter struct {
	client  *resty.Client
	url     string
	headers map[string]string
}

func NewReporter(url string, headers map[string]string) *Reporter {
	transportSettings := &resty.TransportSettings{
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Reporter{
		client:  resty.NewWithTransportSettings(transportSettings),
		url:     url,
		headers: maps.Clone(headers),
	}
}

// Record implements the updater's recorder.
func (r *Reporter) Record(ctx context.Context, rec shared.CheckRecord) error {
	payload := StatusReportPayload{
		RunID:          rec.RunID,
		VersionName:    rec.VersionName,
		Manual:         rec.Manual,
		Outcome:        rec.Outcome,
		StatusMessage:  rec.Error,
		ArtifactSHA256: rec.ArtifactSHA256,
		FinishedAt:     rec.CreatedAt.UTC(),
	}
	log.Printf("Reporting status %s for run %s to %s", payload.Outcome, payload.RunID, r.url)

	var apiErr StatusErr
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeaders(r.headers).
		SetBody(payload).
		SetError(&apiErr).
		Put(r.url)
	if err != nil {
		return cstmerr.NewIOError(fmt.Sprintf("status report to %s failed", r.url), err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		errMsg := apiErr.Message
		if errMsg == "" {
			errMsg = resp.String()
		}
		log.Printf("Status report API request failed with status %d: %s", resp.StatusCode(), errMsg)
		return cstmerr.NewHTTPError(resp.StatusCode(), errMsg)
	}

	log.Debug("status report accepted", logging.KeyRunID, rec.RunID)
	return nil
}
