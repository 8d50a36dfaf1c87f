package cert

import (
	"context"
	"crypto/sha256"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFingerprint(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := &Fetcher{
		ProxyEndpoint: strings.TrimPrefix(srv.URL, "https://"),
		ServerName:    "attestation.example.com",
	}

	fingerprint, err := fetcher.FetchFingerprint(context.Background())
	require.NoError(t, err)

	expected := sha256.Sum256(srv.Certificate().RawSubjectPublicKeyInfo)
	assert.Equal(t, expected, fingerprint)
}

func TestFetchFingerprint_DialError(t *testing.T) {
	fetcher := &Fetcher{
		ProxyEndpoint: "127.0.0.1:1",
		ServerName:    "attestation.example.com",
	}

	_, err := fetcher.FetchFingerprint(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialing proxy")
}
