package review

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"causemap/internal/prompts"
)

// Review is an in-flight review session keyed by ID. ActivityName and
// GroupName are diagram-level labels seeded by extraction and editable by the
// reviewer before the save. ImageKey holds the archive location of the
// uploaded image when archival is enabled.
type Review struct {
	ID               uuid.UUID    `json:"id"`
	Mode             prompts.Mode `json:"mode"`
	SessionID        string       `json:"session_id"`
	Stage            Stage        `json:"stage"`
	ActivityName     string       `json:"activity_name,omitempty"`
	GroupName        string       `json:"group_name,omitempty"`
	ProblemStatement string       `json:"problem_statement,omitempty"`
	ImageKey         string       `json:"image_key,omitempty"`
	Categories       []string     `json:"categories,omitempty"`
	Items            []Item       `json:"items,omitempty"`
	TreeItems        []TreeItem   `json:"tree_items,omitempty"`
	Created          time.Time    `json:"created"`

	expires time.Time
}

// Store holds in-flight reviews with a bounded lifetime. Reviews that are
// never completed expire and are dropped.
type Store struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*Review
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a review store with the given time-to-live per review.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		reviews: make(map[uuid.UUID]*Review),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create registers a new review in StageSetup and returns it.
func (s *Store) Create(mode prompts.Mode, sessionID string) *Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	review := &Review{
		ID:        uuid.New(),
		Mode:      mode,
		SessionID: sessionID,
		Stage:     StageSetup,
		Created:   now,
		expires:   now.Add(s.ttl),
	}

	s.reviews[review.ID] = review
	return review
}

// Get returns the review for the given ID. Expired reviews are dropped and
// reported as ErrExpired.
func (s *Store) Get(id uuid.UUID) (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}

	if s.now().After(review.expires) {
		delete(s.reviews, id)
		return nil, ErrExpired
	}

	return review, nil
}

// Update applies fn to the review under the store lock.
func (s *Store) Update(id uuid.UUID, fn func(*Review) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[id]
	if !ok {
		return ErrNotFound
	}

	if s.now().After(review.expires) {
		delete(s.reviews, id)
		return ErrExpired
	}

	return fn(review)
}

// Advance applies event to the review's stage.
func (s *Store) Advance(id uuid.UUID, event Event) (Stage, error) {
	var stage Stage
	err := s.Update(id, func(r *Review) error {
		next, err := Transition(r.Stage, event)
		if err != nil {
			return err
		}
		r.Stage = next
		stage = next
		return nil
	})
	return stage, err
}

// Delete removes the review.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
}

// Sweep drops expired reviews and returns the number removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, review := range s.reviews {
		if now.After(review.expires) {
			delete(s.reviews, id)
			removed++
		}
	}

	return removed
}
