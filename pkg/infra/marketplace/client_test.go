package marketplace_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/vsget/pkg/domain/model"
	"github.com/m-mizutani/vsget/pkg/domain/types"
	"github.com/m-mizutani/vsget/pkg/infra/marketplace"
)

var zeroDelay = marketplace.RetryPolicy{Attempts: 3, BaseDelay: 0}

const galleryResponse = `{
	"results": [{
		"extensions": [{
			"publisher": {"publisherName": "eamodio"},
			"extensionName": "gitlens",
			"displayName": "GitLens",
			"shortDescription": "Supercharge Git within VS Code",
			"versions": [{"version": "2025.3.1"}, {"version": "2025.2.9"}],
			"statistics": [
				{"statisticName": "install", "value": 40000000},
				{"statisticName": "averagerating", "value": 4.8},
				{"statisticName": "ratingcount", "value": 10000}
			],
			"lastUpdated": "2026-08-24T09:00:00Z"
		}]
	}]
}`

type capturedQuery struct {
	Filters []struct {
		Criteria []struct {
			FilterType int    `json:"filterType"`
			Value      string `json:"value"`
		} `json:"criteria"`
		PageNumber int `json:"pageNumber"`
		PageSize   int `json:"pageSize"`
	} `json:"filters"`
	AssetTypes []string `json:"assetTypes"`
	Flags      int      `json:"flags"`
}

func TestClient_Search_DecodesCandidates(t *testing.T) {
	var captured capturedQuery
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/extensionquery")
		header = r.Header.Clone()
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, galleryResponse)
	}))
	defer server.Close()

	client := marketplace.New(marketplace.WithEndpoint(server.URL))
	candidates, err := client.Search(context.Background(), model.NewSearchQuery("gitlens"))
	gt.NoError(t, err)

	gt.String(t, header.Get("Accept")).Contains("api-version=7.2-preview.1")
	gt.Value(t, header.Get("Content-Type")).Equal("application/json")
	gt.String(t, header.Get("User-Agent")).Contains("Mozilla/5.0")

	gt.Value(t, len(captured.Filters)).Equal(1)
	gt.Value(t, captured.Filters[0].Criteria[0].FilterType).Equal(8)
	gt.Value(t, captured.Filters[0].Criteria[0].Value).Equal("Microsoft.VisualStudio.Code")
	gt.Value(t, captured.Filters[0].Criteria[1].FilterType).Equal(10)
	gt.Value(t, captured.Filters[0].Criteria[1].Value).Equal("gitlens")
	gt.Value(t, captured.Filters[0].PageNumber).Equal(1)
	gt.Value(t, captured.Filters[0].PageSize).Equal(model.DefaultPageSize)
	gt.Value(t, captured.Flags).Equal(int(model.FlagsSearch))

	gt.Value(t, len(candidates)).Equal(1)
	c := candidates[0]
	gt.Value(t, c.Publisher).Equal("eamodio")
	gt.Value(t, c.ID).Equal("gitlens")
	gt.Value(t, c.DisplayName).Equal("GitLens")
	gt.Value(t, c.UniqueID()).Equal("eamodio.gitlens")
	gt.Value(t, len(c.Versions)).Equal(2)
	gt.Value(t, c.Versions[0].Version).Equal("2025.3.1")
	gt.Value(t, c.Statistics.Installs()).Equal(int64(40000000))
	gt.Value(t, c.Statistics.AverageRating()).Equal(4.8)
	gt.Value(t, c.Statistics.RatingCount()).Equal(int64(10000))
}

func TestClient_Search_EmptyTermOmitsTextCriterion(t *testing.T) {
	var captured capturedQuery
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"results":[{"extensions":[]}]}`)
	}))
	defer server.Close()

	client := marketplace.New(marketplace.WithEndpoint(server.URL))
	candidates, err := client.Search(context.Background(), model.NewSearchQuery(""))
	gt.NoError(t, err)
	gt.Value(t, len(candidates)).Equal(0)

	gt.Value(t, len(captured.Filters[0].Criteria)).Equal(1)
	gt.Value(t, captured.Filters[0].Criteria[0].FilterType).Equal(8)
}

func TestClient_Search_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, galleryResponse)
	}))
	defer server.Close()

	client := marketplace.New(
		marketplace.WithEndpoint(server.URL),
		marketplace.WithRetryPolicy(zeroDelay),
	)
	candidates, err := client.Search(context.Background(), model.NewSearchQuery("gitlens"))
	gt.NoError(t, err)
	gt.Value(t, len(candidates)).Equal(1)
	gt.Value(t, calls.Load()).Equal(int32(3))
}

func TestClient_Search_FailsAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := marketplace.New(
		marketplace.WithEndpoint(server.URL),
		marketplace.WithRetryPolicy(zeroDelay),
	)
	_, err := client.Search(context.Background(), model.NewSearchQuery("gitlens"))
	gt.Error(t, err)
	gt.Value(t, types.HasTag(err, types.TagNetwork)).Equal(true)
	gt.Value(t, calls.Load()).Equal(int32(3))
}

func TestClient_Search_NonRetryableStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := marketplace.New(
		marketplace.WithEndpoint(server.URL),
		marketplace.WithRetryPolicy(zeroDelay),
	)
	_, err := client.Search(context.Background(), model.NewSearchQuery("gitlens"))
	gt.Error(t, err)
	gt.Value(t, types.HasTag(err, types.TagNetwork)).Equal(true)
	gt.Value(t, types.HasTag(err, types.TagTimeout)).Equal(false)
	gt.Value(t, calls.Load()).Equal(int32(1))
}

func TestClient_Search_TimeoutFailsWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := marketplace.New(
		marketplace.WithEndpoint(server.URL),
		marketplace.WithRetryPolicy(zeroDelay),
		marketplace.WithSearchTimeout(30*time.Millisecond),
	)
	_, err := client.Search(context.Background(), model.NewSearchQuery("gitlens"))
	gt.Error(t, err)
	gt.Value(t, types.HasTag(err, types.TagTimeout)).Equal(true)
	gt.Value(t, calls.Load()).Equal(int32(1))
}

func TestClient_Search_ConnectionErrorConsumesBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client := marketplace.New(
		marketplace.WithEndpoint(endpoint),
		marketplace.WithRetryPolicy(zeroDelay),
	)
	_, err := client.Search(context.Background(), model.NewSearchQuery("gitlens"))
	gt.Error(t, err)
	gt.Value(t, types.HasTag(err, types.TagNetwork)).Equal(true)
}

func newTarget(t *testing.T, destDir string) *model.DownloadTarget {
	t.Helper()
	c := &model.Candidate{
		Publisher: "eamodio",
		ID:        "gitlens",
		Versions:  []model.VersionInfo{{Version: "2025.3.1"}},
	}
	target, err := model.NewDownloadTarget(c, "", destDir)
	gt.NoError(t, err)
	return target
}

func TestClient_Fetch_StreamsPayload(t *testing.T) {
	content := []byte("PK\x03\x04 fake package bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodGet)
		gt.Value(t, r.URL.Path).Equal("/publishers/eamodio/vsextensions/gitlens/2025.3.1/vspackage")

		w.Header().Set("Content-Length", fmt.Sprint(len(content)))
		w.Write(content)
	}))
	defer server.Close()

	client := marketplace.New(marketplace.WithEndpoint(server.URL))
	payload, err := client.Fetch(context.Background(), newTarget(t, t.TempDir()))
	gt.NoError(t, err)
	defer payload.Body.Close()

	gt.Value(t, payload.TotalBytes).Equal(int64(len(content)))
	got, err := io.ReadAll(payload.Body)
	gt.NoError(t, err)
	gt.Value(t, got).Equal(content)
}

func TestClient_Fetch_UnknownLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before returning forces chunked encoding, so the
		// client sees no content length.
		w.Write([]byte("part one "))
		w.(http.Flusher).Flush()
		w.Write([]byte("part two"))
	}))
	defer server.Close()

	client := marketplace.New(marketplace.WithEndpoint(server.URL))
	payload, err := client.Fetch(context.Background(), newTarget(t, t.TempDir()))
	gt.NoError(t, err)
	defer payload.Body.Close()

	gt.Value(t, payload.TotalBytes).Equal(int64(-1))
	got, err := io.ReadAll(payload.Body)
	gt.NoError(t, err)
	gt.Value(t, string(got)).Equal("part one part two")
}

func TestClient_Fetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such package", http.StatusNotFound)
	}))
	defer server.Close()

	client := marketplace.New(
		marketplace.WithEndpoint(server.URL),
		marketplace.WithRetryPolicy(zeroDelay),
	)
	_, err := client.Fetch(context.Background(), newTarget(t, t.TempDir()))
	gt.Error(t, err)
	gt.Value(t, types.HasTag(err, types.TagNetwork)).Equal(true)
}
