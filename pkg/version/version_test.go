package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/streamhub/logger"
)

func stubReleases(t *testing.T, statusCode int, body string) {
	logger.Init("2")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	previous := releasesUrl
	releasesUrl = server.URL
	t.Cleanup(func() {
		releasesUrl = previous
	})
}

func TestCheckForUpdate_NewerRelease(t *testing.T) {
	stubReleases(t, http.StatusOK, `{"tag_name": "v99.0.0"}`)

	latest, err := CheckForUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v99.0.0", latest)
}

func TestCheckForUpdate_AlreadyCurrent(t *testing.T) {
	stubReleases(t, http.StatusOK, `{"tag_name": "`+Tag+`"}`)

	latest, err := CheckForUpdate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestCheckForUpdate_OlderRelease(t *testing.T) {
	stubReleases(t, http.StatusOK, `{"tag_name": "v0.0.1"}`)

	latest, err := CheckForUpdate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestCheckForUpdate_MalformedResponse(t *testing.T) {
	stubReleases(t, http.StatusInternalServerError, `not json`)

	_, err := CheckForUpdate(context.Background())
	assert.Error(t, err)
}
