// Package review holds extraction results while a human corrects them. Nothing
// reaches the database until a reviewer accepts the content, so reviews live in
// process memory with a bounded lifetime.
package review

import "fmt"

// Item is a flat-mode entry under review. Include marks whether the reviewer
// kept the entry; excluded entries are never persisted. The category is
// assigned by the reviewer; the activity and group labels live on the review
// itself because they apply to the whole diagram.
type Item struct {
	Include     bool   `json:"include"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TreeItem is a flattened fishbone row under review.
type TreeItem struct {
	Include    bool   `json:"include"`
	MainCause  string `json:"main_cause"`
	SubCause   string `json:"sub_cause"`
	Detail     string `json:"detail"`
	RowComment string `json:"row_comment"`
}

// AcceptedItems filters items to those the reviewer included.
func AcceptedItems(items []Item) []Item {
	accepted := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Include {
			accepted = append(accepted, item)
		}
	}
	return accepted
}

// AcceptedTreeItems filters tree items to those the reviewer included.
func AcceptedTreeItems(items []TreeItem) []TreeItem {
	accepted := make([]TreeItem, 0, len(items))
	for _, item := range items {
		if item.Include {
			accepted = append(accepted, item)
		}
	}
	return accepted
}

// ValidateItems checks accepted flat items before persistence. Every item must
// carry a description and a category assignment.
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return ErrNoAccepted
	}
	for i, item := range items {
		if item.Description == "" {
			return fmt.Errorf("item %d: %w", i, ErrEmptyDescription)
		}
		if item.Category == "" {
			return fmt.Errorf("item %d: %w", i, ErrEmptyCategory)
		}
	}
	return nil
}

// ValidateTreeItems checks accepted tree items before persistence. Every item
// must carry a main cause and a detail.
func ValidateTreeItems(items []TreeItem) error {
	if len(items) == 0 {
		return ErrNoAccepted
	}
	for i, item := range items {
		if item.MainCause == "" {
			return fmt.Errorf("item %d: %w", i, ErrEmptyMainCause)
		}
		if item.Detail == "" {
			return fmt.Errorf("item %d: %w", i, ErrEmptyDetail)
		}
	}
	return nil
}
