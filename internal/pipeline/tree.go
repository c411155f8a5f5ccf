package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"causemap/internal/extraction"
	"causemap/internal/fishbone"
	"causemap/internal/prompts"
	"causemap/internal/review"
	"causemap/pkg/formatting"
)

// StartTreeCommand begins a fishbone extraction.
type StartTreeCommand struct {
	SessionName string
	Filename    string
	Image       extraction.Image
}

// CompleteTreeCommand persists a reviewed fishbone session.
type CompleteTreeCommand struct {
	ReviewID uuid.UUID
	Items    []review.TreeItem
	// GroupName overrides the staged diagram-level group label when non-empty.
	GroupName string
	// SessionComment, when set, is stored as the session-level comment.
	SessionComment string
}

// StartTree archives the image, extracts the fishbone hierarchy, flattens it,
// and stages the rows for review.
func (rt *Runtime) StartTree(ctx context.Context, cmd StartTreeCommand) (*review.Review, error) {
	sessionID := formatting.Sanitize(cmd.SessionName)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSession, cmd.SessionName)
	}

	if len(cmd.Image.Data) == 0 {
		return nil, ErrEmptyImage
	}

	imageKey := rt.archive(ctx, sessionID, cmd.Filename, cmd.Image)

	result, err := rt.Extractor.ExtractTree(ctx, cmd.Image)
	if err != nil {
		return nil, fmt.Errorf("extract stage: %w", err)
	}

	rows := fishbone.Flatten(result)
	items := make([]review.TreeItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, review.TreeItem{
			Include:   true,
			MainCause: row.MainCause,
			SubCause:  row.SubCause,
			Detail:    row.Detail,
		})
	}

	staged := rt.Reviews.Create(prompts.ModeTree, sessionID)
	err = rt.Reviews.Update(staged.ID, func(r *review.Review) error {
		r.TreeItems = items
		r.ProblemStatement = result.ProblemStatement
		r.GroupName = result.GroupName
		r.ImageKey = imageKey
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stage review: %w", err)
	}

	if _, err := rt.Reviews.Advance(staged.ID, review.EventExtractedTree); err != nil {
		return nil, fmt.Errorf("stage review: %w", err)
	}

	staged, err = rt.Reviews.Get(staged.ID)
	if err != nil {
		return nil, fmt.Errorf("stage review: %w", err)
	}

	rt.Logger.Info("tree extraction staged",
		"session", sessionID,
		"review", staged.ID,
		"rows", len(items))

	return staged, nil
}

// CompleteTree validates the reviewer's accepted rows and persists them along
// with the optional session comment.
func (rt *Runtime) CompleteTree(ctx context.Context, cmd CompleteTreeCommand) (*Summary, error) {
	staged, err := rt.Reviews.Get(cmd.ReviewID)
	if err != nil {
		return nil, err
	}
	if staged.Stage.Terminal() {
		return nil, review.ErrInvalidTransition
	}

	items := cmd.Items
	if items == nil {
		items = staged.TreeItems
	}

	accepted := review.AcceptedTreeItems(items)
	if err := review.ValidateTreeItems(accepted); err != nil {
		return nil, err
	}

	groupName := staged.GroupName
	if cmd.GroupName != "" {
		groupName = cmd.GroupName
	}

	records := make([]fishbone.Record, 0, len(accepted))
	for _, item := range accepted {
		records = append(records, fishbone.Record{
			SessionName:      staged.SessionID,
			ProblemStatement: staged.ProblemStatement,
			MainCause:        item.MainCause,
			SubCause:         item.SubCause,
			Detail:           item.Detail,
			GroupName:        groupName,
			RowComment:       item.RowComment,
		})
	}

	inserted, err := rt.Fishbone.Insert(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("persist stage: %w", err)
	}

	if cmd.SessionComment != "" {
		if err := rt.Fishbone.UpsertComment(ctx, staged.SessionID, cmd.SessionComment); err != nil {
			return nil, fmt.Errorf("comment stage: %w", err)
		}
	}

	if _, err := rt.Reviews.Advance(cmd.ReviewID, review.EventSaved); err != nil {
		return nil, err
	}

	rt.Logger.Info("tree session saved",
		"session", staged.SessionID,
		"inserted", inserted)

	return &Summary{
		SessionID: staged.SessionID,
		Inserted:  inserted,
	}, nil
}
