package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientComplete(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "[]"}}]}`))
	}))
	defer srv.Close()

	oc := NewOpenAIClient(srv.URL, "tok", "gpt-4o-mini")

	out, err := oc.Complete(ctx, Request{
		System: []string{"prompt one", "prompt two"},
		User:   "user text",
	})
	assert.NoError(err)
	assert.Equal("[]", out)

	assert.Equal("gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 3)
	assert.Equal("system", gotReq.Messages[0].Role)
	assert.Equal("prompt one", gotReq.Messages[0].Content)
	assert.Equal("system", gotReq.Messages[1].Role)
	assert.Equal("user", gotReq.Messages[2].Role)
	assert.Equal("user text", gotReq.Messages[2].Content)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	oc := NewOpenAIClient(srv.URL, "tok", "m")
	_, err := oc.Complete(context.Background(), Request{User: "x"})
	assert.Error(err)
}

func TestOpenAIClientHTTPError(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	oc := NewOpenAIClient(srv.URL, "tok", "m")
	_, err := oc.Complete(context.Background(), Request{User: "x"})
	assert.Error(err)
}
