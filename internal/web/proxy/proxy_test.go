package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type captured struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

func newUpstream(t *testing.T) (*httptest.Server, *captured) {
	t.Helper()

	got := new(captured)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Method = r.Method
		got.Path = r.URL.Path
		got.Query = r.URL.RawQuery
		got.Header = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got.Body = body

		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("from upstream"))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func newProxyServer(t *testing.T, upstream string) *httptest.Server {
	t.Helper()

	p, err := New(upstream)
	require.NoError(t, err)
	srv := httptest.NewServer(NewServer(p))
	t.Cleanup(srv.Close)
	return srv
}

func TestForwardPreservesMethodPathQuery(t *testing.T) {
	upstream, got := newUpstream(t)
	srv := newProxyServer(t, upstream.URL)

	req, err := http.NewRequest(http.MethodDelete,
		srv.URL+"/api/history/hist_1?x=1&y=2", nil)
	require.NoError(t, err)
	req.Header.Set("X-Delete-Key", "sekrit")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	require.Equal(t, http.MethodDelete, got.Method)
	require.Equal(t, "/api/history/hist_1", got.Path)
	require.Equal(t, "x=1&y=2", got.Query)
	require.Equal(t, "sekrit", got.Header.Get("X-Delete-Key"))

	// upstream status, headers, and body relayed
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
	require.Equal(t, "yes", resp.Header.Get("X-Upstream"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "from upstream", string(body))

	// CORS overridden on the way back
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestForwardBuffersJSONBody(t *testing.T) {
	upstream, got := newUpstream(t)
	srv := newProxyServer(t, upstream.URL)

	payload := map[string]any{"title": "T"}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/history", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	require.JSONEq(t, string(raw), string(got.Body))
}

func TestForwardStreamsMultipartBody(t *testing.T) {
	upstream, got := newUpstream(t)
	srv := newProxyServer(t, upstream.URL)

	buf := new(bytes.Buffer)
	form := multipart.NewWriter(buf)
	part, err := form.CreateFormFile("file", "blob.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, form.Close())
	sent := buf.Bytes()

	resp, err := http.Post(srv.URL+"/api/upload", form.FormDataContentType(), bytes.NewReader(sent))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	require.Equal(t, sent, got.Body)
}

func TestUpstreamUnavailable(t *testing.T) {
	// a closed listener: connection refused on first attempt
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	srv := newProxyServer(t, deadURL)

	resp, err := http.Get(srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	envelope := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "Failed to connect to API server", envelope.Error)
	require.NotEmpty(t, envelope.Message)
}

func TestNewRequiresUpstream(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
