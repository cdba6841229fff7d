package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/svrmonitor/internal/domain"
)

var (
	now   = time.Date(2024, 5, 1, 12, 10, 0, 0, time.UTC)
	since = now.Add(-6 * time.Minute)
	sent  = now.Add(-time.Minute)
)

func sampleSnapshots() []domain.Snapshot {
	eps := domain.NewEndpoints([]string{"https://a.example", "https://b.example", "c.example:22"})
	return []domain.Snapshot{
		{Endpoint: eps[0], Verdict: domain.Down, ConsecutiveFailures: 25, DownSince: &since, LastAlertSentAt: &sent, Message: "timeout: deadline exceeded"},
		{Endpoint: eps[1], Verdict: domain.Down, ConsecutiveFailures: 1},
		{Endpoint: eps[2], Verdict: domain.Up},
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(sampleSnapshots(), now)
	assert.Contains(t, out, "a.example")
	assert.Contains(t, out, "DOWN")
	assert.Contains(t, out, "FAILING")
	assert.Contains(t, out, "6m0s")
	assert.Contains(t, out, sent.Format(time.RFC3339))
}

func TestRenderYAML(t *testing.T) {
	out, err := renderYAML(sampleSnapshots(), []domain.Event{{EndpointID: "a.example", Kind: domain.EventAlertSent, AlertKind: domain.AlertDown, At: sent}}, now)
	require.NoError(t, err)

	var doc yamlDoc
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Endpoints, 3)
	assert.Equal(t, "DOWN", doc.Endpoints[0].State)
	assert.Equal(t, "6m0s", doc.Endpoints[0].DownFor)
	assert.Equal(t, "UP", doc.Endpoints[2].State)
	require.Len(t, doc.Events, 1)
	assert.Equal(t, "down", doc.Events[0].Alert)
}

func TestRun_AgainstAPI(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		switch r.URL.Path {
		case "/api/endpoints":
			_ = json.NewEncoder(w).Encode(sampleSnapshots())
		case "/api/events":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_ = json.NewEncoder(w).Encode([]domain.Event{{EndpointID: "a.example", Kind: domain.EventConfirmedDown, At: since}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	var out bytes.Buffer
	err := run(context.Background(), &out, options{api: ts.URL + "/", key: "pub_test", output: "table", events: 5})
	require.NoError(t, err)
	assert.Equal(t, "pub_test", gotKey)
	assert.Contains(t, out.String(), "c.example:22")
	assert.Contains(t, out.String(), "confirmed_down")

	out.Reset()
	require.NoError(t, run(context.Background(), &out, options{api: ts.URL, output: "yaml"}))
	assert.True(t, strings.HasPrefix(out.String(), "endpoints:"))
}

func TestRun_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	err := run(context.Background(), &bytes.Buffer{}, options{api: ts.URL, output: "table"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	err = run(context.Background(), &bytes.Buffer{}, options{api: ts.URL, output: "xml"})
	assert.Error(t, err)
}
