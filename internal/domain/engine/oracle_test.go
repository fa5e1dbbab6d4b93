package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPOracleSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)

		var req OracleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "e1", req.EmployeeID)

		json.NewEncoder(w).Encode(OracleResponse{
			Approved:   true,
			Message:    "approved",
			Confidence: floatPtr(0.9),
		})
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, time.Second)
	resp, err := oracle.Assess(context.Background(), OracleRequest{EmployeeID: "e1"})

	require.NoError(t, err)
	require.True(t, resp.Approved)
	require.Equal(t, 0.9, *resp.Confidence)
}

func TestHTTPOracleNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, time.Second)
	_, err := oracle.Assess(context.Background(), OracleRequest{})

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOracleUnavailable))
}

func TestHTTPOracleMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, time.Second)
	_, err := oracle.Assess(context.Background(), OracleRequest{})

	require.True(t, errors.Is(err, ErrOracleUnavailable))
}

func TestHTTPOracleTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	oracle := NewHTTPOracle(server.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := oracle.Assess(context.Background(), OracleRequest{})

	require.True(t, errors.Is(err, ErrOracleUnavailable))
	require.Less(t, time.Since(start), time.Second)
}

func TestHTTPOracleUnreachable(t *testing.T) {
	oracle := NewHTTPOracle("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := oracle.Assess(context.Background(), OracleRequest{})

	require.True(t, errors.Is(err, ErrOracleUnavailable))
}
