package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded captures one request seen by the fake backend.
type recorded struct {
	Method    string
	Path      string
	Body      map[string]any
	RequestID string
}

// fakeBackend is an httptest server that records requests and serves canned responses.
type fakeBackend struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
}

func newFakeBackend(t *testing.T, routes map[string]http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		h := h
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			rec := recorded{Method: r.Method, Path: r.URL.Path, RequestID: r.Header.Get(client.RequestIDHeader)}
			if r.Body != nil {
				data, _ := io.ReadAll(r.Body)
				if len(bytes.TrimSpace(data)) > 0 {
					_ = json.Unmarshal(data, &rec.Body)
				}
				r.Body = io.NopCloser(bytes.NewReader(data))
			}
			fb.mu.Lock()
			fb.requests = append(fb.requests, rec)
			fb.mu.Unlock()
			h(w, r)
		})
	}
	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) seen() []recorded {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recorded(nil), fb.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(fb *fakeBackend, opts ...client.Option) *client.Client {
	opts = append([]client.Option{client.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return client.New(fb.URL+"/api", opts...)
}

func TestNewDefaults(t *testing.T) {
	t.Setenv("YMF_API_URL", "")
	c := client.New("")
	assert.Equal(t, client.DefaultBaseURL, c.BaseURL())

	t.Setenv("YMF_API_URL", "http://example.test/api/")
	c = client.New("")
	assert.Equal(t, "http://example.test/api", c.BaseURL(), "trailing slash is trimmed")
}

func TestResearchListAndGet(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/research": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{
				{"id": "j1", "status": "completed", "genre_topic": "Rome", "research_summary": "s", "created_at": "2024-05-01T10:00:00Z"},
				{"id": "j2", "status": "searching", "genre_topic": "Jazz", "research_summary": nil, "created_at": "2024-05-02T10:00:00Z"},
			})
		},
		"GET /api/research/{id}": func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("id") != "j1" {
				writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "j1", "status": "completed", "genre_topic": "Rome", "created_at": "2024-05-01T10:00:00Z",
				"videos": []map[string]any{{"video_id": "v1", "title": "Rome", "view_count": 10}},
			})
		},
	})
	c := newClient(fb)
	ctx := context.Background()

	jobs, err := c.Research().ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Rome", jobs[0].Topic())
	assert.Equal(t, models.ResearchSearching, jobs[1].Status)

	detail, err := c.Research().GetJob(ctx, "j1")
	require.NoError(t, err)
	require.Len(t, detail.Videos, 1)
	assert.Equal(t, "v1", detail.Videos[0].VideoID)

	_, err = c.Research().GetJob(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotFound)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Job not found", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "GET /research/missing")
}

func TestResearchStartJob(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/research/start": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "new", "status": "pending", "genre_topic": "Rome", "created_at": "2024-05-01T10:00:00Z"})
		},
	})
	c := newClient(fb)

	job, err := c.Research().StartJob(context.Background(), client.StartResearchRequest{Topic: "  Rome  "})
	require.NoError(t, err)
	assert.Equal(t, "new", job.ID)
	assert.Equal(t, models.ResearchPending, job.Status)

	reqs := fb.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Rome", reqs[0].Body["topic"], "topic is trimmed")
	assert.Equal(t, "standard", reqs[0].Body["research_depth"])
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestResearchStartJobRejectsBlankTopic(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/research/start": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "x"})
		},
	})
	c := newClient(fb)

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := c.Research().StartJob(context.Background(), client.StartResearchRequest{Topic: topic})
		assert.ErrorIs(t, err, client.ErrInvalidRequest, "topic %q", topic)
	}
	assert.Empty(t, fb.seen(), "no request for blank topics")
}

func TestResearchDeleteJob(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"DELETE /api/research/{id}": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})
	c := newClient(fb)

	require.NoError(t, c.Research().DeleteJob(context.Background(), "j1"))
	assert.ErrorIs(t, c.Research().DeleteJob(context.Background(), ""), client.ErrInvalidRequest)

	reqs := fb.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/api/research/j1", reqs[0].Path)
}

func TestCurationEndpoints(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/curation/{$}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "c1", "research_job_id": "r1", "status": "generating_brief"}})
		},
		"GET /api/curation/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"id": "c1", "research_job_id": "r1", "status": "completed", "num_scenes": 2,
				"creative_brief": map[string]any{
					"title": "Rise of Rome", "hook": "h", "narrative_goal": "n", "music_mood": "epic",
					"color_palette": []string{"#aa0000", "gold"},
					"storyboard": []map[string]any{
						{"scene_index": 1, "narration": "a", "visual_prompt": "b", "pacing": "slow", "duration": 5},
					},
				},
			})
		},
		"POST /api/curation/start": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "c2", "research_job_id": "r1", "status": "pending"})
		},
	})
	c := newClient(fb)
	ctx := context.Background()

	jobs, err := c.Curation().ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.CurationGeneratingBrief, jobs[0].Status)

	job, err := c.Curation().GetJob(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, job.CreativeBrief)
	assert.Equal(t, "Rise of Rome", job.Title())
	assert.Equal(t, []string{"#aa0000", "gold"}, job.CreativeBrief.ColorPalette)

	started, err := c.Curation().StartCuration(ctx, client.StartCurationRequest{ResearchJobID: "r1", SelectedVideoIDs: []string{"v1", "v2"}})
	require.NoError(t, err)
	assert.Equal(t, "c2", started.ID)

	_, err = c.Curation().StartCuration(ctx, client.StartCurationRequest{})
	assert.ErrorIs(t, err, client.ErrInvalidRequest)

	reqs := fb.seen()
	require.Len(t, reqs, 3)
	assert.Equal(t, "/api/curation/", reqs[0].Path)
	assert.Equal(t, "r1", reqs[2].Body["research_job_id"])
	assert.Equal(t, []any{"v1", "v2"}, reqs[2].Body["selected_video_ids"])
}

func TestCurationStartOmitsEmptySelection(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/curation/start": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "c2", "status": "pending"})
		},
	})
	c := newClient(fb)

	_, err := c.Curation().StartCuration(context.Background(), client.StartCurationRequest{ResearchJobID: "r1"})
	require.NoError(t, err)

	reqs := fb.seen()
	require.Len(t, reqs, 1)
	_, present := reqs[0].Body["selected_video_ids"]
	assert.False(t, present)
}

func TestProductionEndpoints(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/production/{$}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "p1", "curation_job_id": "c1", "status": "processing", "num_scenes": 3, "num_tracks": 1, "created_at": "2024-05-01T10:00:00Z"}})
		},
		"GET /api/production/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"job":    map[string]any{"id": "p1", "curation_job_id": "c1", "status": "processing", "num_scenes": 2, "num_tracks": 1, "created_at": "2024-05-01T10:00:00Z"},
				"tracks": []map[string]any{{"id": "t1", "track_number": 1, "song_prompt": "epic", "suno_status": "generating"}},
				"scenes": []map[string]any{{"id": "s1", "scene_number": 1, "description": "d", "image_prompt": "p", "status": "completed", "image_url": "http://img/1.png"}},
			})
		},
		"POST /api/production/start": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": "p1", "status": "queued", "num_scenes": 2, "num_tracks": 1, "created_at": "2024-05-01T10:00:00Z"})
		},
		"GET /api/production/curation/{id}": func(w http.ResponseWriter, r *http.Request) {
			if r.PathValue("id") == "c1" {
				writeJSON(w, http.StatusOK, map[string]any{"id": "p1", "curation_job_id": "c1", "status": "processing", "created_at": "2024-05-01T10:00:00Z"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "none"})
		},
	})
	c := newClient(fb)
	ctx := context.Background()

	jobs, err := c.Production().ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, 3, jobs[0].NumScenes)

	detail, err := c.Production().GetJob(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.ProductionProcessing, detail.Job.Status)
	require.Len(t, detail.Tracks, 1)
	assert.Equal(t, models.AssetGenerating, detail.Tracks[0].SunoStatus)
	assert.InDelta(t, 0.5, detail.Progress(), 1e-9)

	started, err := c.Production().StartProduction(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.ProductionQueued, started.Status)

	byCuration, err := c.Production().GetJobByCuration(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "p1", byCuration.ID)

	_, err = c.Production().GetJobByCuration(ctx, "c9")
	assert.ErrorIs(t, err, client.ErrNotFound)

	reqs := fb.seen()
	assert.Equal(t, "c1", reqs[2].Body["curation_job_id"])
}

func TestHealth(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/health": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "error", "database": "ok", "redis": "error: refused", "cometapi": "unauthorized"})
		},
	})
	c := newClient(fb)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, h.OK())
	assert.Equal(t, "error: refused", h.Redis)
}

func TestServerErrorWithoutDetail(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/research": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		},
	})
	c := newClient(fb)

	_, err := c.Research().ListJobs(context.Background())
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Detail)
	assert.NotErrorIs(t, err, client.ErrNotFound)
}

func TestMetricsRecorded(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/research": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []any{})
		},
		"GET /api/research/{id}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
		},
	})
	m := metrics.NewCollector()
	c := newClient(fb, client.WithMetrics(m))
	ctx := context.Background()

	_, _ = c.Research().ListJobs(ctx)
	_, _ = c.Research().GetJob(ctx, "nope")

	snap := m.Snapshot()
	require.Len(t, snap.Operations, 2)
	assert.Equal(t, metrics.OpResearchGet, snap.Operations[0].Op)
	assert.Equal(t, int64(1), snap.Operations[0].Errors)
	assert.Equal(t, metrics.OpResearchList, snap.Operations[1].Op)
	assert.Equal(t, int64(0), snap.Operations[1].Errors)
}

func TestRequestLogging(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/research": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(20 * time.Millisecond)
			writeJSON(w, http.StatusOK, []any{})
		},
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := client.New(fb.URL+"/api", client.WithLogger(logger), client.WithSlowRequestThreshold(time.Millisecond))

	_, err := c.Research().ListJobs(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "slow request")
	assert.Contains(t, out, "path=/api/research")
	assert.Contains(t, out, "request_id=")
}

func TestContextCancelled(t *testing.T) {
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/research": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []any{})
		},
	})
	c := newClient(fb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Research().ListJobs(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
