package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"easyupdate-go/internal/cstmerr"

	"resty.dev/v3"
)

// RestyAdapter implements the HTTPClient interface using the resty library.
type RestyAdapter struct {
	client *resty.Client
}

// NewRestyAdapter creates a new RestyAdapter with the updater's fixed
// connect and read timeouts. No overall request timeout is set so that large
// downloads are not cut off; stalled streams are handled by the caller.
func NewRestyAdapter() *RestyAdapter {
	transportSettings := &resty.TransportSettings{
		DialerTimeout:         ConnectTimeout,
		ResponseHeaderTimeout: ReadTimeout,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   ConnectTimeout,
	}
	client := resty.NewWithTransportSettings(transportSettings)
	return &RestyAdapter{
		client: client,
	}
}

// NewRestyAdapterWithClient creates a new RestyAdapter using a pre-configured *resty.Client.
func NewRestyAdapterWithClient(client *resty.Client) *RestyAdapter {
	if client == nil {
		return NewRestyAdapter()
	}
	return &RestyAdapter{client: client}
}

// Do implements the HTTPClient interface Do method.
func (ra *RestyAdapter) Do(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	method := NormalizeMethod(cfg.Method)
	req := ra.client.R().SetContext(ctx)
	if cfg.Headers != nil {
		req.SetHeaders(cfg.Headers)
	}

	payload, contentType := cfg.Body.Encode()
	if payload != nil {
		if !hasHeader(cfg.Headers, "Content-Type") {
			req.SetHeader("Content-Type", contentType)
		}
		req.SetBody(payload)
	}

	restyResp, err := req.Execute(method, cfg.URL)
	if err != nil {
		return nil, classifyTransportError(method, cfg.URL, err)
	}

	contentLength := int64(-1)
	if restyResp.RawResponse != nil {
		contentLength = restyResp.RawResponse.ContentLength
	}
	return &Response{
		StatusCode:    restyResp.StatusCode(),
		Body:          restyResp.Bytes(),
		Headers:       restyResp.Header(),
		ContentLength: contentLength,
		RequestURL:    restyResp.Request.URL,
	}, nil
}

// GetStream implements the HTTPClient interface GetStream method.
func (ra *RestyAdapter) GetStream(ctx context.Context, url string, opts *RequestOptions) (*StreamResponse, error) {
	restyReq := ra.client.R().SetContext(ctx)
	if opts != nil && opts.Headers != nil {
		restyReq.SetHeaders(opts.Headers)
	}
	// Crucial for streaming: tell Resty not to parse or automatically close the response body.
	restyReq.SetDoNotParseResponse(true)

	restyResp, err := restyReq.Get(url)
	if err != nil {
		return nil, classifyTransportError("GET", url, err)
	}

	return &StreamResponse{
		StatusCode:    restyResp.StatusCode(),
		Body:          restyResp.RawResponse.Body,
		Headers:       restyResp.Header(),
		ContentLength: restyResp.RawResponse.ContentLength,
		RequestURL:    restyResp.Request.URL,
	}, nil
}

// classifyTransportError maps a failed round trip onto the error taxonomy:
// timeouts become TimeoutError, everything else IOError.
func classifyTransportError(method, url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return cstmerr.NewTimeoutError(fmt.Errorf("HTTP %s request to %s timed out: %w", method, url, err))
	}
	return cstmerr.NewIOError(fmt.Sprintf("HTTP %s request to %s failed", method, url), err)
}
