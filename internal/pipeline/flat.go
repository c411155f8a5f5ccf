package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"causemap/internal/extraction"
	"causemap/internal/listmode"
	"causemap/internal/prompts"
	"causemap/internal/review"
	"causemap/pkg/formatting"
	"causemap/pkg/storage"
)

// StartFlatCommand begins a flat list extraction.
type StartFlatCommand struct {
	SessionName string
	Filename    string
	Image       extraction.Image
}

// CompleteFlatCommand persists a reviewed flat session. Attended controls the
// group number fallback: interactive reviewers are asked to fix underivable
// group labels, automated callers fall back to group 0. ActivityName and
// GroupName override the staged diagram-level labels when non-empty.
type CompleteFlatCommand struct {
	ReviewID     uuid.UUID
	Items        []review.Item
	ActivityName string
	GroupName    string
	Attended     bool
}

// StartFlat provisions the session, archives the image, extracts the list,
// and stages the items for review.
func (rt *Runtime) StartFlat(ctx context.Context, cmd StartFlatCommand) (*review.Review, error) {
	sessionID := formatting.Sanitize(cmd.SessionName)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSession, cmd.SessionName)
	}

	if len(cmd.Image.Data) == 0 {
		return nil, ErrEmptyImage
	}

	if err := rt.Lists.Provision(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("provision stage: %w", err)
	}

	imageKey := rt.archive(ctx, sessionID, cmd.Filename, cmd.Image)

	result, err := rt.Extractor.ExtractFlat(ctx, cmd.Image)
	if err != nil {
		return nil, fmt.Errorf("extract stage: %w", err)
	}

	// category choices offered to the reviewer are the ones the session
	// already holds; assignment itself happens during review
	categories, err := rt.Lists.DistinctCategories(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("category stage: %w", err)
	}

	items := make([]review.Item, 0, len(result.Items))
	for _, extracted := range result.Items {
		items = append(items, review.Item{
			Include:     true,
			Description: extracted.Description,
		})
	}

	staged := rt.Reviews.Create(prompts.ModeFlat, sessionID)
	err = rt.Reviews.Update(staged.ID, func(r *review.Review) error {
		r.Items = items
		r.Categories = categories
		r.ActivityName = result.ActivityName
		r.GroupName = result.GroupName
		r.ImageKey = imageKey
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stage review: %w", err)
	}

	if _, err := rt.Reviews.Advance(staged.ID, review.EventExtractedFlat); err != nil {
		return nil, fmt.Errorf("stage review: %w", err)
	}

	staged, err = rt.Reviews.Get(staged.ID)
	if err != nil {
		return nil, fmt.Errorf("stage review: %w", err)
	}

	rt.Logger.Info("flat extraction staged",
		"session", sessionID,
		"review", staged.ID,
		"items", len(items))

	return staged, nil
}

// CompleteFlat validates the reviewer's accepted items, persists them, and
// materializes category views.
func (rt *Runtime) CompleteFlat(ctx context.Context, cmd CompleteFlatCommand) (*Summary, error) {
	staged, err := rt.Reviews.Get(cmd.ReviewID)
	if err != nil {
		return nil, err
	}
	if staged.Stage.Terminal() {
		return nil, review.ErrInvalidTransition
	}

	items := cmd.Items
	if items == nil {
		items = staged.Items
	}

	accepted := review.AcceptedItems(items)
	if err := review.ValidateItems(accepted); err != nil {
		return nil, err
	}

	activityName := staged.ActivityName
	if cmd.ActivityName != "" {
		activityName = cmd.ActivityName
	}
	groupName := staged.GroupName
	if cmd.GroupName != "" {
		groupName = cmd.GroupName
	}

	// the group number is resolved once per submission from the diagram's
	// group label; attended reviewers must supply a usable label, unattended
	// callers fall back to group 0
	groupNo, ok := formatting.GroupNumber(groupName)
	if !ok {
		if cmd.Attended {
			return nil, fmt.Errorf("%w: %q", review.ErrGroupNumberRequired, groupName)
		}
		groupNo = 0
	}

	records := make([]listmode.Record, 0, len(accepted))
	for _, item := range accepted {
		records = append(records, listmode.Record{
			GroupNo:      groupNo,
			Description:  item.Description,
			CategoryName: item.Category,
			ActivityName: activityName,
		})
	}

	inserted, err := rt.Lists.Insert(ctx, staged.SessionID, records)
	if err != nil {
		return nil, fmt.Errorf("persist stage: %w", err)
	}

	views, err := rt.Lists.MaterializeViews(ctx, staged.SessionID)
	if err != nil {
		return nil, fmt.Errorf("view stage: %w", err)
	}

	if _, err := rt.Reviews.Advance(cmd.ReviewID, review.EventSaved); err != nil {
		return nil, err
	}

	rt.Logger.Info("flat session saved",
		"session", staged.SessionID,
		"inserted", inserted,
		"views", len(views))

	return &Summary{
		SessionID: staged.SessionID,
		Inserted:  inserted,
		Views:     views,
	}, nil
}

// archive stores the uploaded image under a unique per-upload key without
// blocking the pipeline. Failures are logged; the extraction itself never
// depends on the archive. Returns the blob key, or an empty string when
// archival is disabled or failed.
func (rt *Runtime) archive(ctx context.Context, sessionID, filename string, img extraction.Image) string {
	if rt.Archive == nil {
		return ""
	}

	key := storage.Key(sessionID, uuid.NewString()+imageExt(filename, img.MIME))
	if err := rt.Archive.Archive(ctx, key, img.Data, img.MIME); err != nil {
		rt.Logger.Warn("image archival failed", "key", key, "error", err)
		return ""
	}

	return key
}

// imageExt picks a file extension from the upload name, falling back to the
// declared content type.
func imageExt(filename, mime string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}

	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
