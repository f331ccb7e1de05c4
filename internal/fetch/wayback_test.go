// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	const original = "https://blocked.example/post?id=7"

	var gotQuery string
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wayback/available":
			gotQuery = r.URL.Query().Get("url")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"url": %q, "archived_snapshots": {"closest": {
				"available": true,
				"url": "%s/web/20240101000000/blocked",
				"timestamp": "20240101000000",
				"status": "200"}}}`, original, ts.URL)
		case "/web/20240101000000/blocked":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, samplePage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	f := New(ts.Client(), testConfig(), nil).WithWaybackAPI(ts.URL + "/wayback/available")
	res, err := f.Snapshot(context.Background(), original)
	require.NoError(t, err)

	assert.Equal(t, original, gotQuery)
	assert.Equal(t, original, res.RequestedURL)
	assert.Equal(t, ts.URL+"/web/20240101000000/blocked", res.URL)
	assert.Equal(t, samplePage, res.HTML)
}

func TestSnapshotUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no snapshots", `{"url": "x", "archived_snapshots": {}}`},
		{"not available", `{"archived_snapshots": {"closest": {"available": false, "url": "http://web.archive.org/x"}}}`},
		{"empty url", `{"archived_snapshots": {"closest": {"available": true, "url": ""}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.response)
			}))
			defer ts.Close()

			f := New(ts.Client(), testConfig(), nil).WithWaybackAPI(ts.URL)
			_, err := f.Snapshot(context.Background(), "https://gone.example/")
			assert.ErrorIs(t, err, ErrNoSnapshot)
		})
	}
}

func TestSnapshotAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"api failure", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed json", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{not json`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			f := New(ts.Client(), testConfig(), nil).WithWaybackAPI(ts.URL)
			_, err := f.Snapshot(context.Background(), "https://gone.example/")
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrNoSnapshot))
		})
	}
}

func TestSnapshotFetchFails(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" {
			fmt.Fprintf(w, `{"archived_snapshots": {"closest": {"available": true, "url": "%s/web/missing"}}}`, ts.URL)
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	f := New(ts.Client(), testConfig(), nil).WithWaybackAPI(ts.URL + "/api")
	_, err := f.Snapshot(context.Background(), "https://gone.example/")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}
