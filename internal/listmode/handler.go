package listmode

import (
	"fmt"
	"log/slog"
	"net/http"

	"causemap/pkg/export"
	"causemap/pkg/handlers"
	"causemap/pkg/pagination"
	"causemap/pkg/routes"
)

// Handler exposes list-mode session operations over HTTP.
type Handler struct {
	system System
	pager  pagination.Config
	logger *slog.Logger
}

// NewHandler creates a list-mode HTTP handler.
func NewHandler(system System, pager pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		system: system,
		pager:  pager,
		logger: logger.With("handler", "listmode"),
	}
}

// Routes returns the session route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "", Handler: h.sessions},
			{Method: http.MethodGet, Pattern: "/all", Handler: h.fetchAllSessions},
			{Method: http.MethodGet, Pattern: "/{id}/records", Handler: h.list},
			{Method: http.MethodGet, Pattern: "/{id}/categories", Handler: h.categories},
			{Method: http.MethodGet, Pattern: "/{id}/views", Handler: h.views},
			{Method: http.MethodGet, Pattern: "/{id}/export", Handler: h.exportCSV},
			{Method: http.MethodDelete, Pattern: "/{id}", Handler: h.delete},
		},
	}
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.system.Sessions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) fetchAllSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.system.FetchAllSessions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req := pagination.PageRequestFromQuery(r.URL.Query(), h.pager)

	page, err := h.system.List(r.Context(), id, req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	categories, err := h.system.DistinctCategories(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) views(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	views, err := h.system.Views(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	records, err := h.system.FetchAll(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	table := &export.Table{
		Header: []string{"group_no", "description", "category_name", "activity_name"},
	}
	for _, rec := range records {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", rec.GroupNo),
			rec.Description,
			rec.CategoryName,
			rec.ActivityName,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", id+".csv"))

	if err := table.WriteCSV(w); err != nil {
		h.logger.Error("csv export failed", "session", id, "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.system.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
