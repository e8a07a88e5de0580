// Command gateway runs the schema-validating proxy: it loads a route table
// from a YAML config file and serves it on the configured port, or, with
// --validate-config, just checks the config and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schema-gateway/gateway/internal/config"
	"github.com/schema-gateway/gateway/internal/logger"
	"github.com/schema-gateway/gateway/internal/pipeline"
	"github.com/schema-gateway/gateway/internal/proxy"
	"github.com/schema-gateway/gateway/internal/schemacache"
	"github.com/schema-gateway/gateway/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the route table config file")
	port := flag.Uint("port", 8080, "port to listen on")
	validateOnly := flag.Bool("validate-config", false, "load and validate config, then exit")
	flag.Parse()

	data, err := os.ReadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	table, err := config.Load(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	for _, warning := range missingSchemaWarnings(table) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	if *validateOnly {
		fmt.Println("config ok")
		return
	}

	log := logger.New(logger.DefaultConfig())
	logger.SetGlobal(log)

	cache := schemacache.New()
	p := pipeline.New(cache, proxy.New(proxy.DefaultTimeout))
	srv := server.New(table, p, log)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: srv.Engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("gateway listening", "port", *port, "config", *configPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
}

// missingSchemaWarnings checks that every route's JSON Schema file exists.
// A missing file is only a warning, not a startup failure, since a
// permissive route forwards anyway even when schema loading fails.
func missingSchemaWarnings(table *config.RouteTable) []string {
	var warnings []string
	for _, route := range table.Routes {
		if !route.HasSchema() {
			continue
		}
		if _, err := os.Stat(route.Schema); err != nil {
			warnings = append(warnings, fmt.Sprintf("route %s %s: schema file %s: %v", route.Method, route.Path, route.Schema, err))
		}
	}
	return warnings
}
