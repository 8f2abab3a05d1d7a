package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Client_PUT_JSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/guilds/99/members/42", r.URL.Path)
		require.Equal(t, "Bot bot-token", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "T1", body["access_token"])

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := NewGenerator(server.URL, time.Second).
		New("/guilds/%s/members/%s", "99", "42").
		Body(JSON{"access_token": "T1"}).
		PUT(context.Background(), OAuth2("Bot", "bot-token"))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.Code)

	body, ok := resp.JSON()
	require.True(t, ok)
	require.Empty(t, body)
}

func Test_Client_POST_Form(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, "code=abc&grant_type=authorization_code", string(raw))

		w.Write([]byte(`{"access_token":"T1","expires_in":3600}`))
	}))
	defer server.Close()

	resp, err := NewGenerator("", 0).
		New(server.URL+"/oauth2/token").
		Body(Parameter{"grant_type": "authorization_code", "code": "abc"}).
		POST(context.Background())
	require.NoError(t, err)

	body, ok := resp.JSON()
	require.True(t, ok)

	token, err := body.GetString("access_token")
	require.NoError(t, err)
	require.Equal(t, "T1", token)

	expiresIn, err := body.GetInt("expires_in")
	require.NoError(t, err)
	require.Equal(t, 3600, expiresIn)
}

func Test_Client_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	_, err := NewGenerator(server.URL, 50*time.Millisecond).New("/slow").GET(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func Test_Client_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	resp, err := NewGenerator(server.URL, time.Second).New("/").GET(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.Code)
	require.Nil(t, resp.Body)
	require.Equal(t, "<html>bad gateway</html>", string(resp.RawBody))
}
