package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall(t *testing.T) {
	var sawCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "client-1", r.Header.Get(ClientHeader))
		if _, err := r.Cookie("naqd_session"); err == nil {
			sawCookie = true
		}
		http.SetCookie(w, &http.Cookie{Name: "naqd_session", Value: "s1", Path: "/"})

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)

		switch req.Method {
		case "echo":
			json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": req.Params})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]interface{}{"code": -32004, "message": "المقال غير موجود"},
			})
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, "client-1")
	require.NoError(t, err)
	ctx := context.Background()

	var out map[string]string
	require.NoError(t, c.Call(ctx, "echo", map[string]string{"a": "b"}, &out))
	assert.Equal(t, map[string]string{"a": "b"}, out)

	err = c.Call(ctx, "missing", nil, nil)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32004, rpcErr.Code)
	assert.Equal(t, "المقال غير موجود", rpcErr.Error())

	assert.True(t, sawCookie, "session cookie should be sent back")
}

func TestCall_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	err = c.Call(context.Background(), "forum.list_posts", nil, nil)
	require.Error(t, err)
	var rpcErr *Error
	assert.False(t, errors.As(err, &rpcErr))
}
