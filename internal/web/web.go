// Package web exposes the composed agenda over a small JSON API for the
// rendering layer. It owns no entity state: the snapshot file is the
// host's, imported ICS events are refreshed on a cron schedule, and
// responses are re-derived on demand with a short-lived cache.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"dayboard/internal/agenda"
	"dayboard/internal/config"
	"dayboard/internal/ics"
	"dayboard/internal/live"
	appLog "dayboard/internal/log"
	"dayboard/internal/model"
	"dayboard/internal/store"
)

const agendaCacheTTL = 30 * time.Second

// Server provides HTTP access to the daily agenda.
type Server struct {
	cfg *config.Config
	loc *time.Location
	mux *http.ServeMux

	// drag is the single gesture controller behind the /api/drag
	// endpoints, tuned by the config's snap and scale settings.
	drag *live.Drag

	// now is injectable so handler tests can pin the wall clock.
	now func() time.Time

	// imported holds the most recent ICS expansion results.
	importedMu sync.RWMutex
	imported   []model.Event

	// agendaCache avoids recomposing on every request; the live minute
	// tick invalidates it so "today" stays fresh.
	cacheMu sync.RWMutex
	cache   *cachedAgenda
}

type cachedAgenda struct {
	key       string
	resp      AgendaResponse
	updatedAt time.Time
}

// NewServer constructs a Server using cfg's timezone for all "today"
// decisions.
func NewServer(cfg *config.Config) *Server {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		appLog.Error("web: bad timezone, falling back to local", err, "timezone", cfg.Timezone)
		loc = time.Local
	}
	s := &Server{
		cfg:  cfg,
		loc:  loc,
		mux:  http.NewServeMux(),
		drag: live.NewDrag(cfg.PixelsPerMinute, cfg.SnapMinutes),
		now:  time.Now,
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/agenda", s.handleAgenda)
	s.mux.HandleFunc("/api/drag/start", s.handleDragStart)
	s.mux.HandleFunc("/api/drag/move", s.handleDragMove)
	s.mux.HandleFunc("/api/drag/commit", s.handleDragCommit)
	s.mux.HandleFunc("/api/drag/cancel", s.handleDragCancel)
	return s
}

// Handler returns the server's http.Handler, wrapped in basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.cfg.BasicAuth != nil && s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != "" {
		appLog.Info("web: basic auth enabled")
		h = s.basicAuth(h)
	}
	return h
}

// basicAuth guards every endpoint except /health.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="dayboard", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// RefreshFeeds fetches, parses and expands the configured ICS sources,
// replacing the imported event set. Called on the refresh cron and once
// at startup.
func (s *Server) RefreshFeeds(ctx context.Context) {
	if len(s.cfg.ICS) == 0 {
		return
	}

	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, c := range s.cfg.ICS {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			id = c.Name
		}
		if id == "" {
			id = c.URL
		}
		sources = append(sources, ics.Source{ID: id, URL: c.URL})
	}

	fetcher := ics.NewFetcher(s.cfg.ICSCacheDir)
	results, errs := fetcher.FetchAll(ctx, sources)
	if len(errs) > 0 {
		appLog.Warn("web: some ICS fetches failed", "failed", len(errs), "total", len(sources))
	}

	feed := make([]ics.FeedEvent, 0)
	for _, res := range results {
		events, err := ics.Parse(res.Source, res.Body)
		if err != nil {
			continue
		}
		feed = append(feed, events...)
	}

	now := s.now().In(s.loc)
	expanded, err := ics.Expand(feed, ics.Window{
		Location: s.loc,
		Start:    now.AddDate(0, 0, -1),
		End:      now.AddDate(0, 0, s.cfg.HorizonDays),
	})
	if err != nil {
		appLog.Error("web: ICS expansion failed", err)
		return
	}

	s.importedMu.Lock()
	s.imported = expanded
	s.importedMu.Unlock()
	s.InvalidateAgenda()

	appLog.Info("web: ICS feeds refreshed", "sources", len(sources), "events", len(expanded))
}

// InvalidateAgenda drops the cached response so the next request
// re-derives status and ordering. The live ticker calls this once a
// minute while today is on screen.
func (s *Server) InvalidateAgenda() {
	s.cacheMu.Lock()
	s.cache = nil
	s.cacheMu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAgenda composes and returns the agenda for one date.
//
// GET /api/agenda?date=YYYY-MM-DD&project=all
func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	now := s.now().In(s.loc)

	q := r.URL.Query()
	date := q.Get("date")
	if date == "" {
		date = model.FormatDate(now)
	}
	if _, err := model.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	project := q.Get("project")

	key := date + "|" + project
	s.cacheMu.RLock()
	c := s.cache
	s.cacheMu.RUnlock()
	if c != nil && c.key == key && s.now().Sub(c.updatedAt) < agendaCacheTTL {
		writeJSON(w, http.StatusOK, c.resp)
		return
	}

	resp, err := s.composeAgenda(date, project, now)
	if err != nil {
		appLog.Error("web: agenda composition failed", err, "date", date)
		writeError(w, http.StatusInternalServerError, "failed to compose agenda")
		return
	}

	s.cacheMu.Lock()
	s.cache = &cachedAgenda{key: key, resp: resp, updatedAt: s.now()}
	s.cacheMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// Agenda composes the response for one date outside of an HTTP request
// (the CLI single-shot mode uses this).
func (s *Server) Agenda(date, project string) (AgendaResponse, error) {
	return s.composeAgenda(date, project, s.now().In(s.loc))
}

func (s *Server) composeAgenda(date, project string, now time.Time) (AgendaResponse, error) {
	snap, err := store.Load(s.cfg.SnapshotPath)
	if err != nil {
		return AgendaResponse{}, err
	}

	s.importedMu.RLock()
	events := make([]model.Event, 0, len(snap.Events)+len(s.imported))
	events = append(events, snap.Events...)
	events = append(events, s.imported...)
	s.importedMu.RUnlock()

	day, err := agenda.Compose(snap.Tasks, snap.Habits, events, date, project)
	if err != nil {
		return AgendaResponse{}, err
	}

	sorted := agenda.SortEvents(day.EventsForDay, date, now)
	layout := agenda.TimedLayout(day.EventsForDay, date)

	resp := AgendaResponse{
		Date:     date,
		Timezone: s.loc.String(),
		Today:    live.IsToday(date, now),
		Entries:  make([]EntryDTO, 0, len(day.Entries)),
		Events:   make([]EventDTO, 0, len(sorted)),
		Layout:   make([]LayoutDTO, 0, len(layout)),
	}

	for _, e := range day.Entries {
		dto := EntryDTO{
			ID:   e.ID(),
			Kind: string(e.Kind),
			Name: e.Name(),
		}
		switch e.Kind {
		case model.KindTask:
			dto.Completed = agenda.TaskCompletedOn(e.Task, date)
			if e.Task.Priority != nil {
				dto.Priority = e.Task.Priority
			}
			dto.DueTime = e.Task.DueTime
		case model.KindHabit:
			dto.Completed = agenda.HabitCompletedOn(e.Habit, date)
		}
		resp.Entries = append(resp.Entries, dto)
	}

	for _, ev := range sorted {
		dto := EventDTO{
			ID:        ev.ID,
			Name:      ev.Name,
			StartDate: ev.StartDate,
			EndDate:   ev.EndDateOrStart(),
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
			AllDay:    ev.IsAllDay,
			SourceID:  ev.SourceID,
		}
		if resp.Today {
			dto.Status = string(live.EventStatus(ev, now))
			dto.Countdown = live.EventCountdown(ev, now)
		}
		resp.Events = append(resp.Events, dto)
	}

	ppm := s.cfg.PixelsPerMinute
	for _, li := range layout {
		resp.Layout = append(resp.Layout, LayoutDTO{
			EventID:      li.Event.ID,
			Top:          float64(li.StartMinutes) * ppm,
			Height:       float64(li.EndMinutes-li.StartMinutes) * ppm,
			LeftPercent:  li.LeftPercent(),
			WidthPercent: li.WidthPercent(),
		})
	}

	return resp, nil
}

// AgendaResponse is the JSON shape of /api/agenda.
type AgendaResponse struct {
	Date     string      `json:"date"`
	Timezone string      `json:"timezone"`
	Today    bool        `json:"today"`
	Entries  []EntryDTO  `json:"entries"`
	Events   []EventDTO  `json:"events"`
	Layout   []LayoutDTO `json:"layout"`
}

type EntryDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Priority  *int   `json:"priority,omitempty"`
	DueTime   string `json:"due_time,omitempty"`
}

type EventDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	AllDay    bool   `json:"all_day"`
	SourceID  string `json:"source_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Countdown string `json:"countdown,omitempty"`
}

type LayoutDTO struct {
	EventID      string  `json:"event_id"`
	Top          float64 `json:"top"`
	Height       float64 `json:"height"`
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("web: failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
