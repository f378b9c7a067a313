package collab_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirac-wms/jobsched/pkg/collab"
)

func TestHTTPFileCatalog_GetFilesToStage(t *testing.T) {
	t.Run("returns offline LFNs", func(t *testing.T) {
		var gotUser, gotGroup string
		var gotLFNs []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = r.URL.Query().Get("user")
			gotGroup = r.URL.Query().Get("group")
			gotLFNs = r.URL.Query()["lfn"]
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string][]string{
				"offline_lfns": {"/lfn/b"},
			})
		}))
		defer server.Close()

		c := collab.NewHTTPFileCatalog(server.URL, nil)
		result, err := c.GetFilesToStage(context.Background(), []string{"/lfn/a", "/lfn/b"}, "alice", "prod")

		require.NoError(t, err)
		assert.Equal(t, []string{"/lfn/b"}, result.OfflineLFNs)
		assert.Equal(t, "alice", gotUser)
		assert.Equal(t, "prod", gotGroup)
		assert.ElementsMatch(t, []string{"/lfn/a", "/lfn/b"}, gotLFNs)
	})

	t.Run("returns error on non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := collab.NewHTTPFileCatalog(server.URL, nil)
		_, err := c.GetFilesToStage(context.Background(), []string{"/lfn/a"}, "alice", "prod")

		assert.ErrorIs(t, err, collab.ErrFileCatalogUnavailable)
	})
}
