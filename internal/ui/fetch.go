package ui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

// fetchedMsg carries a query.Result[T] back into the event loop.
type fetchedMsg struct {
	key    query.Key
	token  uint64
	result any
}

// pollMsg fires when a key is due for refetching.
type pollMsg struct {
	key   query.Key
	token uint64
}

// watch arms a fresh poll chain for q and fetches it. Any older chain for
// the same key dies.
func watch[T any](d *Dependencies, q query.Query[T]) tea.Cmd {
	token := d.Tracker.Arm(q.Key)
	return fetch(d, q, token)
}

// fetch runs q in a separate goroutine (command) to avoid blocking Update().
func fetch[T any](d *Dependencies, q query.Query[T], token uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestContext()
		defer cancel()
		return fetchedMsg{key: q.Key, token: token, result: query.Run(ctx, d.Cache, q)}
	}
}

// receive applies msg to q. ok is false when msg belongs to a different
// key or to a chain that is no longer live, in which case it must be
// dropped. The returned command schedules the next poll, if any.
func receive[T any](d *Dependencies, q query.Query[T], msg fetchedMsg) (r query.Result[T], ok bool, cmd tea.Cmd) {
	if msg.key != q.Key || !d.Tracker.Live(q.Key, msg.token) {
		return r, false, nil
	}
	r, ok = msg.result.(query.Result[T])
	if !ok {
		return r, false, nil
	}
	if r.Superseded {
		if cur, found := query.Peek[T](d.Cache, q.Key); found {
			r = cur
		}
	}
	if r.Err != nil {
		d.Logger.Warn("refresh failed", "key", string(q.Key), "error", r.Err)
	}

	next := q.Next(r)
	if next <= 0 {
		d.Logger.Debug("polling stopped", "key", string(q.Key))
		return r, true, nil
	}
	token := msg.token
	return r, true, tea.Tick(next, func(time.Time) tea.Msg {
		return pollMsg{key: q.Key, token: token}
	})
}

// repoll refetches q when msg is due on its live chain.
func repoll[T any](d *Dependencies, q query.Query[T], msg pollMsg) tea.Cmd {
	if msg.key != q.Key || !d.Tracker.Live(q.Key, msg.token) {
		return nil
	}
	return fetch(d, q, msg.token)
}

// refreshLabel renders the dim inline fetch-failure line, or "".
func refreshLabel(err error, updated time.Time) string {
	if err == nil {
		return ""
	}
	line := "last refresh failed: " + err.Error()
	if !updated.IsZero() {
		line += " (showing data from " + updated.Format("15:04:05") + ")"
	}
	return defaultTheme.hintStyle().Render(line)
}

func refreshError(err error) string {
	return refreshLabel(err, time.Time{})
}
