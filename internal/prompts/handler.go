package prompts

import (
	"log/slog"
	"net/http"

	"causemap/pkg/handlers"
	"causemap/pkg/routes"
)

// Handler exposes the available diagram modes and their resolved prompt text.
type Handler struct {
	system System
	logger *slog.Logger
}

// NewHandler creates a prompts HTTP handler.
func NewHandler(system System, logger *slog.Logger) *Handler {
	return &Handler{
		system: system,
		logger: logger.With("handler", "prompts"),
	}
}

// Routes returns the prompts route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "", Handler: h.modes},
			{Method: http.MethodGet, Pattern: "/{mode}", Handler: h.template},
		},
	}
}

func (h *Handler) modes(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, []Mode{ModeFlat, ModeTree})
}

func (h *Handler) template(w http.ResponseWriter, r *http.Request) {
	mode, err := ParseMode(r.PathValue("mode"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := h.system.Template(mode)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"mode":     mode.String(),
		"template": text,
	})
}
