package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leofalp/recall/providers/ai"
)

// DoPostSync performs a synchronous HTTP POST request with JSON body and parses the response.
// The Authorization header is only attached when apiKey is non-empty, so no-auth
// backends never see a credential.
//
// Error Handling Strategy:
//   - Request construction failures are returned as plain errors (programming mistakes)
//   - Connection failures and context deadlines become *ai.TransportError (network/timeout)
//   - Non-2xx statuses become *ai.TransportError (status) carrying the code and a body preview
//   - JSON parsing errors become *ai.TransportError (malformed) with a response preview
//
// The function always closes the response body via defer, logging any close errors
// without overriding the primary error returned by the function.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any) (*http.Response, *OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, ai.NewTransportError(ai.TransportNetwork, fmt.Errorf("error sending request: %w", err))
	}
	defer func(Body io.ReadCloser) {
		if closeErr := Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}(res.Body)

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return res, nil, ai.NewTransportError(ai.TransportNetwork, fmt.Errorf("error reading response body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return res, nil, &ai.TransportError{
			Kind:       ai.TransportStatus,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("non-2xx status: %s", TruncateString(string(respBody), DefaultMaxStringLength)),
		}
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return res, nil, &ai.TransportError{
			Kind: ai.TransportMalformed,
			Err:  fmt.Errorf("error unmarshaling response body (status %d): %w; preview: %s", res.StatusCode, err, TruncateString(string(respBody), DefaultMaxStringLength)),
		}
	}

	return res, &resStruct, nil
}
