package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dirac-wms/jobsched/pkg/models"
)

// HTTPStagerClient implements StagerClient as a small JSON-over-HTTP client
// against a StorageManagerClient-compatible endpoint. The source's RPC here
// is a generic DIRAC RPCClient call; we expose it over plain net/http rather
// than gRPC (see DESIGN.md for why no generated protobuf client is used).
type HTTPStagerClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPStagerClient builds a stager client against baseURL, using a
// bounded-timeout http.Client if none is supplied.
func NewHTTPStagerClient(baseURL string, client *http.Client) *HTTPStagerClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPStagerClient{BaseURL: baseURL, HTTP: client}
}

type setRequestBody struct {
	StageRequest models.StageRequest `json:"stage_request"`
	System       string              `json:"system"`
	CallbackSpec string              `json:"callback_spec"`
	JobID        int64               `json:"job_id"`
}

type setRequestResponse struct {
	RequestID string `json:"request_id"`
}

// SetRequest POSTs the stage request to the storage manager and returns the
// request id. If the remote response omits one, a locally-generated uuid is
// used instead, matching spec.md §4.F's "store the returned request id"
// contract without requiring the remote to be authoritative about format.
func (c *HTTPStagerClient) SetRequest(ctx context.Context, req models.StageRequest, system, callbackSpec string, jobID int64) (string, error) {
	body, err := json.Marshal(setRequestBody{
		StageRequest: req,
		System:       system,
		CallbackSpec: callbackSpec,
		JobID:        jobID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrStagerUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/stage", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrStagerUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStagerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrStagerUnavailable, resp.StatusCode)
	}

	var out setRequestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrStagerUnavailable, err)
	}

	if out.RequestID == "" {
		return uuid.NewString(), nil
	}
	return out.RequestID, nil
}
