package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"causemap/internal/extraction"
	"causemap/internal/prompts"
	"causemap/internal/review"
	"causemap/pkg/handlers"
	"causemap/pkg/routes"
)

// Handler exposes the extraction pipeline over HTTP. Uploads are multipart
// forms carrying a session name and an image; review corrections and saves
// are JSON.
type Handler struct {
	runtime   *Runtime
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler creates a pipeline HTTP handler. maxUpload bounds the accepted
// multipart form size in bytes.
func NewHandler(runtime *Runtime, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		runtime:   runtime,
		maxUpload: maxUpload,
		logger:    logger.With("handler", "pipeline"),
	}
}

// Routes returns the extraction and review route groups.
func (h *Handler) Routes() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/extract",
			Routes: []routes.Route{
				{Method: http.MethodPost, Pattern: "/flat", Handler: h.startFlat},
				{Method: http.MethodPost, Pattern: "/tree", Handler: h.startTree},
			},
		},
		{
			Prefix: "/reviews",
			Routes: []routes.Route{
				{Method: http.MethodGet, Pattern: "/{id}", Handler: h.getReview},
				{Method: http.MethodPut, Pattern: "/{id}", Handler: h.updateReview},
				{Method: http.MethodGet, Pattern: "/{id}/image", Handler: h.reviewImage},
				{Method: http.MethodPost, Pattern: "/{id}/save", Handler: h.saveReview},
				{Method: http.MethodDelete, Pattern: "/{id}", Handler: h.discardReview},
			},
		},
	}
}

// upload extracts the session name and image from a multipart form.
func (h *Handler) upload(r *http.Request) (string, string, extraction.Image, error) {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return "", "", extraction.Image{}, fmt.Errorf("parse upload: %w", err)
	}

	session := r.FormValue("session")

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", "", extraction.Image{}, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", extraction.Image{}, fmt.Errorf("read image: %w", err)
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	return session, header.Filename, extraction.Image{Data: data, MIME: mime}, nil
}

func (h *Handler) startFlat(w http.ResponseWriter, r *http.Request) {
	session, filename, img, err := h.upload(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	staged, err := h.runtime.StartFlat(r.Context(), StartFlatCommand{
		SessionName: session,
		Filename:    filename,
		Image:       img,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, staged)
}

func (h *Handler) startTree(w http.ResponseWriter, r *http.Request) {
	session, filename, img, err := h.upload(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	staged, err := h.runtime.StartTree(r.Context(), StartTreeCommand{
		SessionName: session,
		Filename:    filename,
		Image:       img,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, staged)
}

func (h *Handler) reviewID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("id"))
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := h.reviewID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	staged, err := h.runtime.Reviews.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, staged)
}

func (h *Handler) updateReview(w http.ResponseWriter, r *http.Request) {
	id, err := h.reviewID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Items        []review.Item     `json:"items"`
		TreeItems    []review.TreeItem `json:"tree_items"`
		ActivityName *string           `json:"activity_name"`
		GroupName    *string           `json:"group_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	err = h.runtime.Reviews.Update(id, func(rev *review.Review) error {
		if rev.Stage.Terminal() {
			return review.ErrInvalidTransition
		}
		if body.Items != nil {
			rev.Items = body.Items
		}
		if body.TreeItems != nil {
			rev.TreeItems = body.TreeItems
		}
		if body.ActivityName != nil {
			rev.ActivityName = *body.ActivityName
		}
		if body.GroupName != nil {
			rev.GroupName = *body.GroupName
		}
		return nil
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	staged, err := h.runtime.Reviews.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, staged)
}

func (h *Handler) saveReview(w http.ResponseWriter, r *http.Request) {
	id, err := h.reviewID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Attended       bool   `json:"attended"`
		ActivityName   string `json:"activity_name"`
		GroupName      string `json:"group_name"`
		SessionComment string `json:"session_comment"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	staged, err := h.runtime.Reviews.Get(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var summary *Summary
	switch staged.Mode {
	case prompts.ModeFlat:
		summary, err = h.runtime.CompleteFlat(r.Context(), CompleteFlatCommand{
			ReviewID:     id,
			ActivityName: body.ActivityName,
			GroupName:    body.GroupName,
			Attended:     body.Attended,
		})
	case prompts.ModeTree:
		summary, err = h.runtime.CompleteTree(r.Context(), CompleteTreeCommand{
			ReviewID:       id,
			GroupName:      body.GroupName,
			SessionComment: body.SessionComment,
		})
	default:
		err = fmt.Errorf("invalid diagram mode: %q", staged.Mode)
	}

	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}

func (h *Handler) reviewImage(w http.ResponseWriter, r *http.Request) {
	id, err := h.reviewID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	body, contentType, err := h.runtime.DownloadImage(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("image stream failed", "review", id, "error", err)
	}
}

func (h *Handler) discardReview(w http.ResponseWriter, r *http.Request) {
	id, err := h.reviewID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.runtime.Discard(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
