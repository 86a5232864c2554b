package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"osrs-flipper/internal/chart"
	"osrs-flipper/internal/config"
	"osrs-flipper/internal/db"
	"osrs-flipper/internal/engine"
	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/view"
)

// chartWaitTimeout bounds how long a chart request waits for its history fetch.
const chartWaitTimeout = 20 * time.Second

// Server is the HTTP server that exposes the item store, the filter engine
// and per-viewer chart selections.
type Server struct {
	cfg      *config.Config
	store    *engine.Store
	history  chart.Fetcher
	db       *db.DB // optional, for the load log
	render   view.Renderer
	sessions *sessionStore
	version  string

	now func() time.Time
}

// NewServer creates a Server reading items from store and charts from history.
// database may be nil.
func NewServer(cfg *config.Config, store *engine.Store, history chart.Fetcher, database *db.DB) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		history: history,
		db:      database,
		render:  view.Renderer{IconBaseURL: cfg.IconBaseURL},
		version: "dev",
		now:     time.Now,
	}
	s.sessions = newSessionStore(func() *chart.Selector {
		return chart.NewSelector(s.history, cfg.Timeout)
	})
	return s
}

// SetVersion sets the build version shown on the dashboard.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// Handler returns the HTTP handler with all routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /fragments/list", s.handleListFragment)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/items", s.handleItems)
	mux.HandleFunc("GET /api/items/export.xlsx", s.handleExport)
	mux.HandleFunc("GET /api/items/{id}", s.handleItemDetail)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /api/chart.png", s.handleChartPNG)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// OnLoad is the loader hook: it runs the default filter pass once so the
// log shows what the dashboard opens with.
func (s *Server) OnLoad(c *engine.Collection) {
	out := engine.Filter(c.Items(), engine.DefaultCriteria(), s.now())
	logger.Stats("items_loaded", c.Len())
	logger.Stats("items_fresh", len(out))
	if len(out) > 0 {
		top := out[0]
		logger.Info("Filter", fmt.Sprintf("Top flip: %s (+%s, ROI %.1f%%)", top.Name, engine.Simplify(top.Profit), top.ROI))
	}
}

// filtered runs the filter engine over the current snapshot.
func (s *Server) filtered(r *http.Request) (engine.Criteria, []engine.Item) {
	c := engine.ParseCriteria(r.URL.Query())
	return c, engine.Filter(s.store.Snapshot().Items(), c, s.now())
}

func (s *Server) page(r *http.Request) view.Page {
	c, items := s.filtered(r)
	state, _ := s.store.Status()
	return view.Page{
		Version:  s.version,
		Criteria: c,
		State:    state,
		List:     s.render.List(items),
		Items:    s.store.Snapshot().Len(),
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.sessions.get(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WritePage(w, s.page(r)); err != nil {
		logger.Error("API", fmt.Sprintf("render page: %v", err))
	}
}

func (s *Server) handleListFragment(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WriteList(w, s.page(r)); err != nil {
		logger.Error("API", fmt.Sprintf("render list: %v", err))
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, loadErr := s.store.Status()
	snap := s.store.Snapshot()

	result := map[string]interface{}{
		"state": state,
		"items": snap.Len(),
	}
	if !snap.LoadedAt().IsZero() {
		result["loaded_at"] = snap.LoadedAt().Unix()
	}
	if loadErr != nil {
		result["error"] = loadErr.Error()
	}
	if s.db != nil {
		result["loads"] = s.db.RecentLoads(5)
	}
	writeJSON(w, result)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	c, items := s.filtered(r)
	writeJSON(w, map[string]interface{}{
		"criteria": c,
		"list":     s.render.List(items),
	})
}

// handleItemDetail renders the stat panel and starts this viewer's chart
// fetch. Lookup uses the full collection, not the filtered list.
func (s *Server) handleItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "invalid item id")
		return
	}
	item, ok := s.store.Snapshot().Get(id)
	if !ok {
		writeError(w, 404, "item not found")
		return
	}
	sess := s.sessions.get(w, r)
	d := s.render.Detail(item)
	d.ChartToken = sess.selector.Select(item.ID, item.Name)
	writeJSON(w, d)
}

// waitChart resolves the chart for the request's token, writing the error
// response itself when there is none.
func (s *Server) waitChart(w http.ResponseWriter, r *http.Request) (*chart.Chart, bool) {
	sess := s.sessions.get(w, r)
	token := sess.selector.Token()
	if v := r.URL.Query().Get("token"); v != "" {
		t, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, 400, "invalid token")
			return nil, false
		}
		token = t
	}
	if token == 0 {
		w.WriteHeader(http.StatusNoContent)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), chartWaitTimeout)
	defer cancel()
	c, err := sess.selector.Wait(ctx, token)
	switch {
	case err == nil:
		return c, true
	case errors.Is(err, chart.ErrSuperseded):
		writeError(w, http.StatusConflict, "selection superseded")
	case errors.Is(err, chart.ErrNoChart):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, chart.ErrUnknownSelection):
		writeError(w, 404, "unknown selection")
	default:
		writeError(w, http.StatusGatewayTimeout, "history not ready")
	}
	return nil, false
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.waitChart(w, r)
	if !ok {
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	c, ok := s.waitChart(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(c, &buf, chart.Width, chart.Height); err != nil {
		if errors.Is(err, chart.ErrNoChart) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		logger.Warn("Chart", fmt.Sprintf("render item %d: %v", c.ItemID, err))
		writeError(w, 500, "render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
