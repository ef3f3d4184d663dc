package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/logging"

	"github.com/dustin/go-humanize"
	"go.uber.org/atomic"
)

var log = logging.L("apiclient")

// ChunkFunc is called after every chunk written during a download with the
// bytes written so far and the declared total (-1 when unknown).
type ChunkFunc func(downloaded, total int64)

// APIClient performs the check exchange and the artifact download.
type APIClient struct {
	client      HTTPClient
	readTimeout time.Duration
}

// New creates a new APIClient on top of client.
func New(client HTTPClient) *APIClient {
	if client == nil {
		client = NewRestyAdapter()
	}
	return &APIClient{
		client:      client,
		readTimeout: ReadTimeout,
	}
}

// Exchange performs exactly one HTTP exchange. On status 200 it returns the
// body as text together with the declared length (-1 if unknown).
func (ac *APIClient) Exchange(ctx context.Context, cfg *RequestConfig) (string, int64, error) {
	log.Printf("Checking for updates at: %s (%s, body: %s)", cfg.URL, NormalizeMethod(cfg.Method), cfg.Body.Kind())

	resp, err := ac.client.Do(ctx, cfg)
	if err != nil {
		log.Printf("Error during HTTP exchange for update check: %v", err)
		return "", -1, err
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Update check request failed with status %d", resp.StatusCode)
		return "", -1, cstmerr.NewHTTPError(resp.StatusCode, "")
	}

	log.Debug("received check response", "bytes", len(resp.Body), "declared", resp.ContentLength)
	return string(resp.Body), resp.ContentLength, nil
}

// DownloadFile streams url into dst in ChunkSize pieces. It always issues a
// GET without a body, reusing headers. onChunk may be nil. A chunk that does
// not arrive within the read timeout aborts the download with a TimeoutError.
func (ac *APIClient) DownloadFile(ctx context.Context, url string, headers map[string]string,
	dst io.Writer, onChunk ChunkFunc) (int64, error) {
	log.Printf("Attempting to download from %s", url)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stalled := atomic.NewBool(false)
	watchdog := time.AfterFunc(ac.readTimeout, func() {
		stalled.Store(true)
		cancel()
	})
	defer watchdog.Stop()

	streamResp, err := ac.client.GetStream(streamCtx, url, &RequestOptions{Headers: headers})
	if err != nil {
		if stalled.Load() {
			return 0, cstmerr.NewTimeoutError(err)
		}
		return 0, err
	}
	defer streamResp.Body.Close()

	if streamResp.StatusCode != http.StatusOK {
		return 0, cstmerr.NewHTTPError(streamResp.StatusCode, "")
	}

	total := streamResp.ContentLength
	if total > 0 {
		log.Printf("Downloading %s (%s)", url, humanize.Bytes(uint64(total)))
	} else {
		total = -1
		log.Printf("Downloading %s (size unknown)", url)
	}

	buf := make([]byte, ChunkSize)
	var downloaded int64
	for {
		watchdog.Reset(ac.readTimeout)
		n, readErr := streamResp.Body.Read(buf)
		// Only the read is timed; writes and progress callbacks may block freely.
		watchdog.Stop()
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return downloaded, cstmerr.NewFileIOError("failed to write download chunk", err)
			}
			downloaded += int64(n)
			if onChunk != nil {
				onChunk(downloaded, total)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			if stalled.Load() {
				return downloaded, cstmerr.NewTimeoutError(readErr)
			}
			return downloaded, cstmerr.NewIOError(fmt.Sprintf("error reading download stream from %s", url), readErr)
		}
	}

	log.Printf("Download complete: %s written", humanize.Bytes(uint64(downloaded)))
	return downloaded, nil
}
