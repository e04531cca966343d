package digitalocean

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/digitalocean/godo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuohuadong/outline-server/internal/attributes"
	"github.com/zuohuadong/outline-server/internal/config"
	"github.com/zuohuadong/outline-server/internal/install"
	"github.com/zuohuadong/outline-server/internal/pricing"
)

// testServer mocks the DigitalOcean API.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux

	mu    sync.Mutex
	calls []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{mux: http.NewServeMux()}
	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.calls = append(ts.calls, r.Method+" "+r.URL.Path)
		ts.mu.Unlock()
		ts.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client(t *testing.T) *Client {
	t.Helper()
	gc, err := godo.New(http.DefaultClient, godo.SetBaseURL(ts.server.URL+"/"))
	require.NoError(t, err)
	c, err := NewClient("", WithGodoClient(gc), WithTimeouts(config.TestTimeouts()))
	require.NoError(t, err)
	return c
}

func (ts *testServer) mutations() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var out []string
	for _, c := range ts.calls {
		if !strings.HasPrefix(c, http.MethodGet+" ") {
			out = append(out, c)
		}
	}
	return out
}

func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func errorResponse(w http.ResponseWriter, statusCode int, id string) {
	jsonResponse(w, statusCode, map[string]any{"id": id, "message": id})
}

func dropletJSON(status string, tags ...string) map[string]any {
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"droplet": map[string]any{
			"id":     123,
			"name":   "outline",
			"status": status,
			"tags":   tags,
			"size": map[string]any{
				"slug":          "s-1vcpu-1gb",
				"price_monthly": 6.0,
				"transfer":      1.0,
			},
			"region": map[string]any{"slug": "nyc1", "name": "New York 1"},
			"networks": map[string]any{
				"v4": []map[string]any{
					{"ip_address": "10.10.0.5", "type": "private"},
					{"ip_address": "203.0.113.5", "type": "public"},
				},
			},
		},
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)

	c, err := NewClient("dop_v1_token")
	require.NoError(t, err)
	assert.NotNil(t, c.Godo())
}

func TestDroplet_Refresh(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, dropletJSON("active",
			"outline",
			attributes.EncodeTag(attributes.KeyAPIURL, "https://203.0.113.5:8443/xyz"),
			"KV:CERTSHA256:"+hex.EncodeToString([]byte("q83vEjRWeJA=")),
			"kv:broken:zz",
		))
	})

	obs, err := ts.client(t).Droplet(123).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, install.StatusActive, obs.Status)
	assert.Equal(t, "203.0.113.5", obs.Address)
	assert.Equal(t, 2, obs.Attributes.Len(), "undecodable tags are skipped")

	fp, ok := obs.Attributes.Fingerprint()
	require.True(t, ok)
	assert.Equal(t, "q83vEjRWeJA=", fp)
}

func TestDroplet_RefreshError(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusUnauthorized, "unauthorized")
	})

	_, err := ts.client(t).Droplet(123).Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusCode(err))
	assert.Contains(t, err.Error(), "droplet 123")
}

func TestDroplet_Describe(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, dropletJSON("active"))
	})

	info, err := ts.client(t).Droplet(123).Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nyc1", info.Region)
	assert.Equal(t, pricing.USD(6), info.MonthlyCost)
	assert.Equal(t, pricing.TiB, info.MonthlyTransferBytes)
	assert.Equal(t, "203.0.113.5", info.Address)
}

func TestManagedServer_DeleteOrder(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		jsonResponse(w, http.StatusOK, dropletJSON("new"))
	})
	ts.mux.HandleFunc("/v2/reserved_ips", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"reserved_ips": []map[string]any{
				{"ip": "198.51.100.1", "droplet": map[string]any{"id": 999}},
				{"ip": "198.51.100.2", "droplet": map[string]any{"id": 123}},
				{"ip": "198.51.100.3", "droplet": nil},
			},
			"links": map[string]any{},
			"meta":  map[string]any{"total": 3},
		})
	})
	attempts := 0
	ts.mux.HandleFunc("/v2/reserved_ips/198.51.100.2", func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			errorResponse(w, http.StatusUnprocessableEntity, "unprocessable_entity")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := ts.client(t).ManagedServer(123, install.Created(),
		install.WithCheckInterval(time.Hour), install.WithRefreshInterval(time.Hour))
	require.NoError(t, srv.Delete(context.Background()))

	assert.Equal(t, []string{
		"DELETE /v2/reserved_ips/198.51.100.2",
		"DELETE /v2/reserved_ips/198.51.100.2",
		"DELETE /v2/droplets/123",
	}, ts.mutations())
	assert.Equal(t, install.StateDeleted, srv.CurrentState())
}

func TestDroplet_DeleteInstanceNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusNotFound, "not_found")
	})

	require.NoError(t, ts.client(t).Droplet(123).DeleteInstance(context.Background()))
}

func TestDroplet_DeleteInstanceForbidden(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusForbidden, "forbidden")
	})

	err := ts.client(t).Droplet(123).DeleteInstance(context.Background())
	require.Error(t, err)
	assert.Len(t, ts.mutations(), 1, "forbidden is not retried")
}

func TestManagedServer_InstallFromTags(t *testing.T) {
	ts := newTestServer(t)
	ts.mux.HandleFunc("/v2/droplets/123", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, dropletJSON("active",
			attributes.EncodeTag(attributes.KeyAPIPort, "8081"),
			attributes.EncodeTag(attributes.KeyAPIPrefix, "v1"),
			attributes.EncodeTag(attributes.KeyCertSHA256, "fp"),
		))
	})

	srv := ts.client(t).ManagedServer(123, install.Created(),
		install.WithCheckInterval(2*time.Millisecond), install.WithRefreshInterval(5*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := srv.AwaitInstalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://203.0.113.5:8081/v1/", res.Endpoint)
	assert.Equal(t, "digitalocean", srv.Monitor().Provider())
}

func TestIsRetryable(t *testing.T) {
	mk := func(code int) error {
		return &godo.ErrorResponse{Response: &http.Response{StatusCode: code}}
	}
	assert.True(t, isRetryable(mk(http.StatusTooManyRequests)))
	assert.True(t, isRetryable(mk(http.StatusBadGateway)))
	assert.False(t, isRetryable(mk(http.StatusForbidden)))
	assert.True(t, IsNotFound(mk(http.StatusNotFound)))
	assert.False(t, IsNotFound(nil))
}
