package fishbone

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"causemap/pkg/export"
	"causemap/pkg/handlers"
	"causemap/pkg/routes"
)

// Handler exposes fishbone session operations over HTTP.
type Handler struct {
	system System
	logger *slog.Logger
}

// NewHandler creates a fishbone HTTP handler.
func NewHandler(system System, logger *slog.Logger) *Handler {
	return &Handler{
		system: system,
		logger: logger.With("handler", "fishbone"),
	}
}

// Routes returns the fishbone route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/fishbone",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "/sessions", Handler: h.sessions},
			{Method: http.MethodGet, Pattern: "/sessions/{name}", Handler: h.fetch},
			{Method: http.MethodDelete, Pattern: "/sessions/{name}", Handler: h.delete},
			{Method: http.MethodGet, Pattern: "/sessions/{name}/comment", Handler: h.comment},
			{Method: http.MethodPut, Pattern: "/sessions/{name}/comment", Handler: h.upsertComment},
			{Method: http.MethodGet, Pattern: "/sessions/{name}/export", Handler: h.exportCSV},
		},
	}
}

// MapHTTPStatus translates fishbone errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptySession),
		errors.Is(err, ErrEmptyMainCause),
		errors.Is(err, ErrEmptyDetail),
		errors.Is(err, ErrNoRows):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	names, err := h.system.Sessions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, names)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	records, err := h.system.FetchSession(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.system.DeleteSession(r.Context(), name); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	comment, err := h.system.Comment(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"comment": comment})
}

func (h *Handler) upsertComment(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var body struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.system.UpsertComment(r.Context(), name, body.Comment); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	records, err := h.system.FetchSession(r.Context(), name)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	table := &export.Table{
		Header: []string{"main_cause", "sub_cause", "detail", "group_name", "row_comment"},
	}
	for _, rec := range records {
		table.Rows = append(table.Rows, []string{
			rec.MainCause, rec.SubCause, rec.Detail, rec.GroupName, rec.RowComment,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", name+".csv"))

	if err := table.WriteCSV(w); err != nil {
		h.logger.Error("csv export failed", "session", name, "error", err)
	}
}
