package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPFileCatalog implements FileCatalog as a small JSON-over-HTTP client
// against a Distributed File Catalog-compatible endpoint, following the
// same plain-HTTP-over-gRPC choice as HTTPStagerClient.
type HTTPFileCatalog struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPFileCatalog builds a file catalog client against baseURL.
func NewHTTPFileCatalog(baseURL string, client *http.Client) *HTTPFileCatalog {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFileCatalog{BaseURL: baseURL, HTTP: client}
}

type filesToStageResponse struct {
	OfflineLFNs []string `json:"offline_lfns"`
}

// GetFilesToStage asks the file catalog which of inputData's LFNs are not
// currently on a disk-accessible storage element for proxyUserName's VO.
func (c *HTTPFileCatalog) GetFilesToStage(ctx context.Context, inputData []string, proxyUserName, proxyUserGroup string) (FilesToStageResult, error) {
	q := url.Values{}
	for _, lfn := range inputData {
		q.Add("lfn", lfn)
	}
	q.Set("user", proxyUserName)
	q.Set("group", proxyUserGroup)

	endpoint := c.BaseURL + "/files-to-stage?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FilesToStageResult{}, fmt.Errorf("%w: building request: %v", ErrFileCatalogUnavailable, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return FilesToStageResult{}, fmt.Errorf("%w: %v", ErrFileCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return FilesToStageResult{}, fmt.Errorf("%w: unexpected status %d", ErrFileCatalogUnavailable, resp.StatusCode)
	}

	var out filesToStageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return FilesToStageResult{}, fmt.Errorf("%w: decoding response: %v", ErrFileCatalogUnavailable, err)
	}
	return FilesToStageResult{OfflineLFNs: out.OfflineLFNs}, nil
}
