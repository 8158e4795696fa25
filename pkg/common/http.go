package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// MaxResponseSize limits how much of a response body is read, so that a misbehaving server which streams output
// forever can't make us run out of memory.
const MaxResponseSize = 8 << 20

var ErrResponseTooLarge = errors.New("response too large")

// PostJSON serializes `body` as JSON, posts it to `endpoint` and returns the status code together with the raw response
// body. Non-2xx responses are not treated as errors: interpreting them is up to the caller. Transport errors never
// include the endpoint, since it may carry a credential in its query string.
func PostJSON(ctx context.Context, client *http.Client, endpoint string, headers map[string]string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", stripURL(err))
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	response, err := client.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", stripURL(err))
	}
	defer func() {
		_ = response.Body.Close()
	}()
	content, err := ReadAllLimited(response.Body, MaxResponseSize)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return response.StatusCode, content, nil
}

// *url.Error prints the whole request URL; keep only the underlying cause.
func stripURL(err error) error {
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return urlError.Err
	}
	return err
}

// ReadAllLimited reads at most `limit` bytes; if there's more, returns ErrResponseTooLarge.
func ReadAllLimited(reader io.Reader, limit int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > limit {
		return nil, ErrResponseTooLarge
	}
	return content, nil
}
