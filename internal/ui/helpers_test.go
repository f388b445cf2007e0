package ui

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/prefs"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

// backend is an in-memory fake of the YM Factory API.
type backend struct {
	*httptest.Server

	mu         sync.Mutex
	research   []map[string]any
	details    map[string]map[string]any
	curation   []map[string]any
	production []map[string]any
	prodDetail map[string]map[string]any

	researchDelay  time.Duration // applied to GET /api/research
	curationStatus int           // non-zero fails GET /api/curation/

	posts   map[string][]map[string]any // path -> bodies
	deletes []string

	// gates block detail requests for an id until closed.
	gates   map[string]chan struct{}
	arrived map[string]chan struct{}
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		details:    make(map[string]map[string]any),
		prodDetail: make(map[string]map[string]any),
		posts:      make(map[string][]map[string]any),
		gates:      make(map[string]chan struct{}),
		arrived:    make(map[string]chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/research", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delay := b.researchDelay
		b.mu.Unlock()
		time.Sleep(delay)

		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.research)
	})
	mux.HandleFunc("GET /api/research/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		b.mu.Lock()
		gate, arrived := b.gates[id], b.arrived[id]
		b.mu.Unlock()
		if gate != nil {
			close(arrived)
			<-gate
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		d, ok := b.details[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
			return
		}
		writeJSON(w, http.StatusOK, d)
	})
	mux.HandleFunc("POST /api/research/start", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		job := map[string]any{"id": "new-job", "status": "pending", "genre_topic": body["topic"], "created_at": "2024-05-03T10:00:00Z"}
		b.research = append([]map[string]any{job}, b.research...)
		writeJSON(w, http.StatusOK, job)
	})
	mux.HandleFunc("DELETE /api/research/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		b.mu.Lock()
		defer b.mu.Unlock()
		b.deletes = append(b.deletes, id)
		kept := b.research[:0]
		for _, j := range b.research {
			if j["id"] != id {
				kept = append(kept, j)
			}
		}
		b.research = kept
		delete(b.details, id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	})
	mux.HandleFunc("GET /api/curation/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.curationStatus != 0 {
			writeJSON(w, b.curationStatus, map[string]string{"detail": "curation store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, b.curation)
	})
	mux.HandleFunc("GET /api/curation/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, j := range b.curation {
			if j["id"] == r.PathValue("id") {
				writeJSON(w, http.StatusOK, j)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
	})
	mux.HandleFunc("POST /api/curation/start", func(w http.ResponseWriter, r *http.Request) {
		body := b.record(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		job := map[string]any{"id": "cur-new", "research_job_id": body["research_job_id"], "status": "pending"}
		b.curation = append([]map[string]any{job}, b.curation...)
		writeJSON(w, http.StatusOK, job)
	})
	mux.HandleFunc("GET /api/production/{$}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.production)
	})
	mux.HandleFunc("GET /api/production/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		d, ok := b.prodDetail[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found"})
			return
		}
		writeJSON(w, http.StatusOK, d)
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok", "redis": "ok", "cometapi": "ok"})
	})

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func (b *backend) record(r *http.Request) map[string]any {
	var body map[string]any
	data, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(data, &body)
	b.mu.Lock()
	b.posts[r.URL.Path] = append(b.posts[r.URL.Path], body)
	b.mu.Unlock()
	return body
}

func (b *backend) postsTo(path string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.posts[path]...)
}

func (b *backend) deleted() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.deletes...)
}

// gate makes detail requests for id block until the returned func is called.
// arrived is closed when the request reaches the server.
func (b *backend) gate(id string) (arrived <-chan struct{}, release func()) {
	g, a := make(chan struct{}), make(chan struct{})
	b.mu.Lock()
	b.gates[id], b.arrived[id] = g, a
	b.mu.Unlock()
	return a, func() { close(g) }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testDeps(t *testing.T, b *backend) *Dependencies {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewCollector()
	d := &Dependencies{
		Client:    client.New(b.URL+"/api", client.WithLogger(logger), client.WithMetrics(m)),
		Intervals: query.Intervals{List: time.Millisecond, Detail: time.Millisecond},
		Prefs:     prefs.Open("", logger),
		Metrics:   m,
		Logger:    logger,
	}
	d.withDefaults()
	return d
}

// pump executes commands and feeds their messages back into a page, the
// way the bubbletea runtime would. Poll ticks are dropped so chains do not
// run forever; navigation requests are collected.
type pump struct {
	t           *testing.T
	p           page
	navigations []navigateMsg
}

func (u *pump) run(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < 50; steps++ {
		c := queue[0]
		queue = queue[1:]
		for _, msg := range execCmd(c) {
			switch msg := msg.(type) {
			case pollMsg:
			case navigateMsg:
				u.navigations = append(u.navigations, msg)
			default:
				if next := u.p.update(msg); next != nil {
					queue = append(queue, next)
				}
			}
		}
	}
}

// execCmd runs cmd, flattening batches. Commands that do not finish
// promptly (cursor blink, long ticks) are skipped.
func execCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, execCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}
