package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONServer(t *testing.T, handler func(w http.ResponseWriter, body *RequestBody)) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body RequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, &body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRPCPostRequest(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, body *RequestBody) {
		assert.Equal(t, "2.0", body.Version)
		assert.Equal(t, "server_state", body.Method)
		assert.Equal(t, defaultRequestID, body.ID)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"state":"full"}}`))
	})

	var result struct {
		State string `json:"state"`
	}
	err := RPCPostRequest(context.Background(), server.URL, NewRequest("server_state"), &result)
	require.NoError(t, err)
	assert.Equal(t, "full", result.State)
}

func TestRPCPostRequestBasicAuth(t *testing.T) {
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("reader:secret"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != want {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	var ok bool
	req := NewRequest("ping")
	req.SetBasicAuth("reader", "secret")
	require.NoError(t, RPCPostRequest(context.Background(), server.URL, req, &ok))
	assert.True(t, ok)

	req = NewRequest("ping")
	req.SetBasicAuth("", "")
	assert.Nil(t, req.Headers)
	err := RPCPostRequest(context.Background(), server.URL, req, &ok)
	assert.ErrorContains(t, err, "401")
}

func TestRPCPostRequestErrors(t *testing.T) {
	tests := []struct {
		response string
		want     string
	}{
		{`{"error":{"code":-32601,"message":"method not found"}}`, "method not found"},
		{`{"id":1}`, "empty result"},
		{`not json`, "unmarshal body error"},
		{`{"result":"text"}`, "unmarshal result error"},
	}
	for _, test := range tests {
		response := test.response
		server := newJSONServer(t, func(w http.ResponseWriter, body *RequestBody) {
			_, _ = w.Write([]byte(response))
		})
		var result int
		err := RPCPostRequest(context.Background(), server.URL, NewRequest("m"), &result)
		assert.ErrorContains(t, err, test.want, "response %v", test.response)
	}

	var jsonErr *JSONError
	server := newJSONServer(t, func(w http.ResponseWriter, body *RequestBody) {
		_, _ = w.Write([]byte(`{"error":{"code":-32601,"message":"method not found"}}`))
	})
	err := RPCPostRequest(context.Background(), server.URL, NewRequest("m"), new(int))
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, -32601, jsonErr.Code)
}

func TestRPCPostRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := newJSONServer(t, func(w http.ResponseWriter, body *RequestBody) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
	})
	defer close(release)

	req := NewRequest("slow")
	req.Timeout = 1
	start := time.Now()
	err := RPCPostRequest(context.Background(), server.URL, req, new(int))
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}
