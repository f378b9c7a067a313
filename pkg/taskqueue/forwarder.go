// Package taskqueue is the minimal forwarding sink standing in for the
// downstream Task Queue stage of the pipeline (spec.md §1's "matching/
// task-queue stage"), which the scheduling core only ever needs to hand a
// job to — nothing about matching itself is in scope here.
package taskqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Forwarder hands a job off to the downstream Task Queue once the
// scheduling core has decided it is ready to run.
type Forwarder interface {
	Forward(ctx context.Context, jid int64) error
}

// HTTPForwarder implements Forwarder as a small JSON-over-HTTP call
// against a Task Queue Agent-compatible endpoint, mirroring
// collab.HTTPStagerClient's shape for the same reason: no generated RPC
// client is wired for a stage that is explicitly out of scope.
type HTTPForwarder struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPForwarder builds a forwarder against baseURL.
func NewHTTPForwarder(baseURL string, client *http.Client) *HTTPForwarder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPForwarder{BaseURL: baseURL, HTTP: client}
}

type forwardBody struct {
	JobID int64 `json:"job_id"`
}

// Forward POSTs the job id to the task queue agent's insertion endpoint.
func (f *HTTPForwarder) Forward(ctx context.Context, jid int64) error {
	body, err := json.Marshal(forwardBody{JobID: jid})
	if err != nil {
		return fmt.Errorf("encoding forward request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.BaseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("forwarding job %d: %w", jid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("forwarding job %d: unexpected status %d", jid, resp.StatusCode)
	}
	return nil
}
