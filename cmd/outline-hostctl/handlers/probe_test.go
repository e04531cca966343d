package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuohuadong/outline-server/internal/trust"
)

func TestProbe(t *testing.T) {
	var path string
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	store := trust.NewStore()
	store.Trust(trust.Fingerprint(ts.Certificate().Raw))

	require.NoError(t, probe(context.Background(), store, ts.URL+"/secret/"))
	assert.Equal(t, "/secret/server", path)
}

func TestProbe_EndpointWithoutTrailingSlash(t *testing.T) {
	var path string
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	store := trust.NewStore()
	store.Trust(trust.Fingerprint(ts.Certificate().Raw))

	require.NoError(t, probe(context.Background(), store, ts.URL+"/secret"))
	assert.Equal(t, "/secret/server", path)
}

func TestProbe_UntrustedCertificate(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	store := trust.NewStore()
	store.Trust("q83vEjRWeJA=")

	err := probe(context.Background(), store, ts.URL+"/")
	require.Error(t, err)
	assert.ErrorIs(t, err, trust.ErrUntrustedCertificate)
}
