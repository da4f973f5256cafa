package engine

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPImageFetcher(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))
	defer srv.Close()

	f := NewHTTPImageFetcher()
	out, err := f.FetchImage(ctx, srv.URL+"/photo.jpg")
	assert.NoError(err)

	require.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/jpeg;base64,"))
	assert.NoError(err)
	assert.Equal(payload, decoded)
}

func TestHTTPImageFetcherHTTPError(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPImageFetcher()
	_, err := f.FetchImage(context.Background(), srv.URL+"/missing.jpg")
	assert.Error(err)
}
