package preview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/IQDevs/blog/internal/metrics"
)

func startTestServer(t *testing.T, siteDir string, reg *prom.Registry) *Server {
	t.Helper()
	s := NewServer(siteDir, 0)
	if reg != nil {
		s = s.WithMetrics(reg)
	}
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestServeSiteFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2017", "03", "20", "post"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>home</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2017", "03", "20", "post", "index.html"), []byte("<html>post</html>"), 0o644))

	s := startTestServer(t, dir, nil)
	base := "http://" + s.Addr()

	resp, body := get(t, base+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "home")

	// Directory URLs resolve through index.html.
	resp, body = get(t, base+"/2017/03/20/post/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "post")

	resp, _ = get(t, base+"/missing/")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	s := startTestServer(t, t.TempDir(), nil)

	resp, body := get(t, "http://"+s.Addr()+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	require.Equal(t, "ok", health.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncRebuild("watch")

	s := startTestServer(t, t.TempDir(), reg)

	resp, body := get(t, "http://"+s.Addr()+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "blog_rebuilds_total")
}

func TestMetricsDisabledByDefault(t *testing.T) {
	s := startTestServer(t, t.TempDir(), nil)

	resp, _ := get(t, "http://"+s.Addr()+"/metrics")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
