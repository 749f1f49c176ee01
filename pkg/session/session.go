// Package session persists stair configurations between visits.
//
// A Session wraps the Configuration a user is editing (model, multiplier,
// component settings, textures, and end pieces) with an id and an expiry.
// Implementations of Store exist for different deployments:
//   - MemoryStore: in-process storage for tests and single-shot commands
//   - RedisStore: Redis-backed storage for multi-instance servers
//   - FileStore: JSON files for the CLI
//
// # Usage
//
//	store, err := session.NewFileStore("") // ~/.config/stairbuilder/sessions/
//	if err != nil {
//	    return err
//	}
//	sess := session.New(cfg, session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	// Later: reload and check that the model still exists.
//	sess, err = session.Restore(ctx, store, sess.ID, repo)
package session

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/layout"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = stderrors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = stderrors.New("expired")
)

// DefaultTTL is how long a saved configuration is kept.
const DefaultTTL = 30 * 24 * time.Hour

// Configuration is the full state of the configurator for one stair.
type Configuration struct {
	ModelID               string            `json:"modelId"`
	GlobalScale           float64           `json:"globalScale"`
	GlobalArrayMultiplier float64           `json:"globalArrayMultiplier"`
	ComponentSettings     layout.Settings   `json:"componentSettings"`
	ComponentTextures     map[string]string `json:"componentTextures"`
	SelectedAngleType     string            `json:"selectedAngleType,omitempty"`
	SelectedBottomAngle   layout.AngleSide  `json:"selectedBottomAngle,omitempty"`
	SelectedTopAngle      layout.AngleSide  `json:"selectedTopAngle,omitempty"`
}

// DefaultAngleType is the angle type selected for a new configuration.
const DefaultAngleType = "middle"

// Validate checks the fields a user can type in.
func (c Configuration) Validate() error {
	if err := errors.ValidateModelID(c.ModelID); err != nil {
		return err
	}
	if err := errors.ValidateMultiplier(c.GlobalArrayMultiplier); err != nil {
		return err
	}
	for _, side := range []layout.AngleSide{c.SelectedBottomAngle, c.SelectedTopAngle} {
		if _, err := layout.ParseAngleSide(string(side)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSettings, err, "invalid end piece")
		}
	}
	return nil
}

// Session stores one configuration.
type Session struct {
	ID            string        `json:"id"`
	Configuration Configuration `json:"configuration"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch replaces the configuration and extends the expiry by ttl.
func (s *Session) Touch(cfg Configuration, ttl time.Duration) {
	now := time.Now()
	s.Configuration = cfg
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error
}

// New creates a session for cfg with a random id.
func New(cfg Configuration, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:            uuid.NewString(),
		Configuration: cfg,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// ModelChecker reports whether a model exists. catalog.Repository
// implements it.
type ModelChecker interface {
	ModelExists(ctx context.Context, id string) (bool, error)
}

// Restore loads a session and checks that its model is still in the
// catalog. A missing session is SESSION_NOT_FOUND; a session whose model was
// deleted is MODEL_NOT_FOUND.
func Restore(ctx context.Context, store Store, id string, models ModelChecker) (*Session, error) {
	sess, err := store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load session %s", id)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session not found: %s", id)
	}
	ok, err := models.ModelExists(ctx, sess.Configuration.ModelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeModelNotFound, "saved configuration refers to unknown model %s", sess.Configuration.ModelID)
	}
	return sess, nil
}
