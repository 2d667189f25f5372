package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"dbcatalog/internal/lint"
	"dbcatalog/internal/logger"
	"dbcatalog/internal/metadata"
	"dbcatalog/pkg/config"
)

const defaultPort = 8080

func newServeCmd(a *app) *cobra.Command {
	var webdir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve catalogs and lints over HTTP",
		Long: `Starts an HTTP server. POST /api/connect selects the database to crawl;
GET /api/catalog and GET /api/lint crawl it on every request.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := newServer(a)
			if a.cfg.Database.Type != "" {
				if _, _, err := config.BuildDriverAndDSN(a.cfg.Database); err != nil {
					a.log.Error("configured database unusable", "error", err)
				} else {
					s.setActive(a.cfg.Database)
				}
			}

			addr := fmt.Sprintf(":%d", cmp.Or(a.cfg.Server.Port, defaultPort))
			srv := &http.Server{
				Addr:         addr,
				Handler:      s.routes(webdir),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 5 * time.Minute,
			}
			a.log.Info("listening", "addr", addr, "web", webdir)
			a.log.Info("registered dialects", "dialects", dialectViews())
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().Int("listen", 0, fmt.Sprintf("http port (default %d)", defaultPort))
	cmd.Flags().StringVar(&webdir, "web", "", "static web ui directory")
	return cmd
}

// server keeps the active connection settings. Every request opens its own
// connection and crawls afresh.
type server struct {
	app *app

	mu     sync.RWMutex
	active *config.DBConfig
}

func newServer(a *app) *server {
	return &server{app: a}
}

func (s *server) setActive(c config.DBConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &c
}

func (s *server) getActive() (config.DBConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return config.DBConfig{}, false
	}
	return *s.active, true
}

func (s *server) routes(webdir string) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/getConnect", s.handleGetConnect)
		r.Post("/connect", s.handleConnect)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/lint", s.handleLint)
		r.Get("/dialects", s.handleDialects)
		r.Get("/linters", s.handleLinters)
	})
	if webdir != "" {
		r.Handle("/*", http.FileServer(http.Dir(webdir)))
	}
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response", "error", err)
	}
}

// handleGetConnect returns the active connection settings without the
// password.
func (s *server) handleGetConnect(w http.ResponseWriter, _ *http.Request) {
	c, _ := s.getActive()
	c.Type = config.NormalizeDriver(c.Type)
	c.Password = ""
	writeJSON(w, struct {
		OK     bool            `json:"ok"`
		Config config.DBConfig `json:"config"`
	}{OK: true, Config: c})
}

// handleConnect tests the posted settings by crawling with them, and makes
// them active on success.
func (s *server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req config.DBConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, _, err := config.BuildDriverAndDSN(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Timeout = cmp.Or(req.Timeout, s.app.cfg.Database.Timeout)

	v, err := s.crawl(r, req)
	if err != nil {
		http.Error(w, "connection failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.setActive(req)
	writeJSON(w, struct {
		OK bool `json:"ok"`
		crawlView
	}{OK: true, crawlView: v})
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getActive()
	if !ok {
		http.Error(w, "no active connection; POST /api/connect to create one", http.StatusBadRequest)
		return
	}
	v, err := s.crawl(r, c)
	if err != nil {
		http.Error(w, "failed to crawl: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, v)
}

func (s *server) crawl(r *http.Request, c config.DBConfig) (crawlView, error) {
	h, err := s.app.connect(r.Context(), c)
	if err != nil {
		return crawlView{}, err
	}
	defer h.Close()
	cat, rep, err := s.app.crawl(r.Context(), h, r.URL.Query().Get("name"))
	if err != nil {
		return crawlView{}, err
	}
	return crawlView{Catalog: newCatalogView(cat), Report: rep}, nil
}

// handleLint crawls the active database and lints it. offline=true skips
// linters that query the database.
func (s *server) handleLint(w http.ResponseWriter, r *http.Request) {
	c, ok := s.getActive()
	if !ok {
		http.Error(w, "no active connection; POST /api/connect to create one", http.StatusBadRequest)
		return
	}
	offline, _ := strconv.ParseBool(r.URL.Query().Get("offline"))

	e, err := s.app.engine()
	if err != nil {
		http.Error(w, "linter configuration: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h, err := s.app.connect(r.Context(), c)
	if err != nil {
		http.Error(w, "connection failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer h.Close()
	cat, _, err := s.app.crawl(r.Context(), h, r.URL.Query().Get("name"))
	if err != nil {
		http.Error(w, "failed to crawl: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var conn metadata.Querier
	if !offline {
		conn = h.DB
	}
	res, err := e.Lint(r.Context(), cat, conn)
	if err != nil {
		http.Error(w, "failed to lint: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, newLintResultView(res))
}

func (s *server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, dialectViews())
}

type linterView struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Severity    lint.Severity `json:"severity"`
	Options     []string      `json:"options,omitempty"`
	OptIn       bool          `json:"opt_in,omitempty"`
}

func (s *server) handleLinters(w http.ResponseWriter, _ *http.Request) {
	var out []linterView
	for _, def := range lint.GetAll() {
		out = append(out, linterView{
			ID:          def.ID,
			Description: def.Description,
			Severity:    def.Severity,
			Options:     def.ConfigKeys,
			OptIn:       def.OptIn,
		})
	}
	writeJSON(w, out)
}
