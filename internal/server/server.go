// Package server wires gin as the HTTP harness around the gateway's own
// route matcher and request pipeline: every request falls through gin's
// router (nothing is registered on it) into a single NoRoute handler that
// performs §4.6 matching and dispatches to internal/pipeline.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schema-gateway/gateway/internal/config"
	"github.com/schema-gateway/gateway/internal/gwerrors"
	"github.com/schema-gateway/gateway/internal/logger"
	"github.com/schema-gateway/gateway/internal/pipeline"
	"github.com/schema-gateway/gateway/internal/routematch"
)

// Server is the configured gin engine plus the state the catch-all handler
// needs to match and dispatch requests.
type Server struct {
	Engine *gin.Engine

	routes   []config.Route
	entries  []routematch.Entry
	pipeline *pipeline.Pipeline
	log      *logger.Logger
}

// New builds a Server for table, ready to ListenAndServe.
func New(table *config.RouteTable, p *pipeline.Pipeline, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logger.Middleware(log))
	engine.Use(gin.Recovery())

	s := &Server{
		Engine:   engine,
		routes:   table.Routes,
		entries:  entriesFor(table.Routes),
		pipeline: p,
		log:      log,
	}

	engine.NoRoute(s.dispatch)
	return s
}

func entriesFor(routes []config.Route) []routematch.Entry {
	entries := make([]routematch.Entry, len(routes))
	for i, r := range routes {
		entries[i] = routematch.Entry{Template: r.Path, Method: r.Method}
	}
	return entries
}

// dispatch performs route lookup and hands matched requests to
// internal/pipeline for validation, forwarding, and response handling.
func (s *Server) dispatch(c *gin.Context) {
	result := routematch.Match(s.entries, c.Request.Method, c.Request.URL.Path)

	switch result.Outcome {
	case routematch.NotFound:
		writeNotFound(c.Writer)
		return
	case routematch.MethodNotAllowed:
		writeMethodNotAllowed(c.Writer)
		return
	}

	route := &s.routes[result.Index]
	s.pipeline.Handle(c.Writer, c.Request, route, result.Params)
}

func writeNotFound(w http.ResponseWriter) {
	writeErrorBody(w, http.StatusNotFound, "route not found")
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeErrorBody(w, http.StatusMethodNotAllowed, "method not allowed for this route")
}

func writeErrorBody(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(gwerrors.Body{Error: message})
}
