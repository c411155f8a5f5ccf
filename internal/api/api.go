// Package api assembles the HTTP API module from the domain handlers.
package api

import (
	"log/slog"
	"net/http"

	"causemap/internal/config"
	"causemap/internal/fishbone"
	"causemap/internal/listmode"
	"causemap/internal/pipeline"
	"causemap/internal/prompts"
	"causemap/pkg/middleware"
	"causemap/pkg/module"
	"causemap/pkg/routes"
)

// Runtime carries the systems the API serves.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Lists    listmode.System
	Fishbone fishbone.System
	Prompts  prompts.System
	Pipeline *pipeline.Runtime
}

// NewModule builds the /api module: domain routes behind the request logger
// and CORS middleware.
func NewModule(rt *Runtime) *module.Module {
	mux := http.NewServeMux()

	listHandler := listmode.NewHandler(rt.Lists, rt.Config.API.Pagination, rt.Logger)
	fishboneHandler := fishbone.NewHandler(rt.Fishbone, rt.Logger)
	promptsHandler := prompts.NewHandler(rt.Prompts, rt.Logger)
	pipelineHandler := pipeline.NewHandler(rt.Pipeline, rt.Config.API.MaxUploadBytes(), rt.Logger)

	groups := []routes.Group{
		listHandler.Routes(),
		fishboneHandler.Routes(),
		promptsHandler.Routes(),
	}
	groups = append(groups, pipelineHandler.Routes()...)
	routes.Register(mux, groups...)

	m := module.New("/api", mux)
	m.Use(middleware.Logger(rt.Logger))
	m.Use(middleware.CORS(&rt.Config.API.CORS))

	return m
}
