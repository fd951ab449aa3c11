// Package server exposes resolved project state over HTTP: component
// status as JSON, dependency graphs as DOT, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/anvil-platform/forge/internal/graph"
	"github.com/anvil-platform/forge/internal/manifest"
	"github.com/anvil-platform/forge/internal/model"
	"github.com/anvil-platform/forge/internal/project"
	"github.com/anvil-platform/forge/internal/resolver"
	"github.com/anvil-platform/forge/internal/status"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	project *project.Project
	logger  logr.Logger
}

func New(p *project.Project, logger logr.Logger) *Server {
	return &Server{project: p, logger: logger.WithName("server")}
}

// Handler returns the router. Everything under /api is read-only.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withLogger)

	r.Handle("/healthz", healthz.CheckHandler{Checker: healthz.Ping})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1/targets", func(r chi.Router) {
		r.Get("/", s.listTargets)
		r.Route("/{target}", func(r chi.Router) {
			r.Get("/components", s.listComponents)
			r.Get("/components/{component}", s.getComponent)
			r.Get("/interfaces/{interface}/providers", s.listProviders)
			r.Get("/graph.dot", s.getGraph)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.WithValues("method", r.Method, "path", r.URL.Path, "requestID", middleware.GetReqID(r.Context()))
		logger.V(1).Info("request")
		next.ServeHTTP(w, r.WithContext(log.IntoContext(r.Context(), logger)))
	})
}

func (s *Server) listTargets(w http.ResponseWriter, r *http.Request) {
	ids, err := s.project.TargetIDs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"targets": ids})
}

func (s *Server) resolve(r *http.Request) (*resolver.Resolution, error) {
	return s.project.Resolve(r.Context(), chi.URLParam(r, "target"))
}

func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list := status.List(res)
	if raw := r.URL.Query().Get("enabled"); raw != "" {
		want, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "enabled: " + err.Error()})
			return
		}
		items := list.Items[:0]
		for i := range list.Items {
			if status.IsEnabled(&list.Items[i]) == want {
				items = append(items, list.Items[i])
			}
		}
		list.Items = items
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "component")
	st, err := res.State(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := res.Lookup(id, model.AnyKind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status.Component(res, c, st))
}

type provider struct {
	Name    string `json:"name"`
	Chosen  bool   `json:"chosen"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

type providerList struct {
	Interface string     `json:"interface"`
	Route     string     `json:"route,omitempty"`
	Providers []provider `json:"providers"`
}

// listProviders answers which components declare an interface and which one
// the target routes it to. An interface nobody provides yields an empty list.
func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	iface := chi.URLParam(r, "interface")
	out := providerList{Interface: iface, Providers: []provider{}}
	out.Route, _ = res.Target().Route(iface)
	for c, st := range res.Providers(iface) {
		out.Providers = append(out.Providers, provider{
			Name:    c.ID,
			Chosen:  res.Target().IsChosen(iface, c.ID),
			Enabled: st.Enabled,
			Reason:  st.Reason,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolve(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := graph.Options{Scope: q.Get("scope")}
	for name, dst := range map[string]*bool{"only_libs": &opts.HideExecutables, "show_disabled": &opts.ShowDisabled} {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: name + ": " + err.Error()})
				return
			}
			*dst = v
		}
	}

	g, err := graph.Build(res, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := g.WriteDOT(w); err != nil {
		log.FromContext(r.Context()).Error(err, "writing graph")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		log.FromContext(r.Context()).Error(err, "request failed")
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, project.ErrInvalidTarget):
		return http.StatusUnprocessableEntity
	case errors.Is(err, manifest.ErrTargetNotFound), errors.Is(err, resolver.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrKindMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
