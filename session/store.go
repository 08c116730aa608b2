package session

import (
	"adboard/models"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps sessions in memory. Besides identity, each session
// carries the per-provider credentials issued at the most recent
// sign-in, which the token layer uses as a recovery source when a
// stored refresh token is rejected.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
	}
}

func (s *Store) Create(userID, email, name, picture string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := uuid.New().String()
	sess := &models.Session{
		ID:          sessionID,
		UserID:      userID,
		Email:       email,
		Name:        name,
		Picture:     picture,
		Credentials: make(map[string]models.ProviderCredentials),
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
		CreatedAt:   time.Now(),
		LastUsedAt:  time.Now(),
	}

	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *Store) Get(sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[sessionID]
	if !exists {
		return nil, nil
	}

	if time.Now().After(sess.ExpiresAt) {
		return nil, nil
	}

	return sess, nil
}

func (s *Store) Update(sessionID string, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.LastUsedAt = time.Now()
	s.sessions[sessionID] = sess
	return nil
}

func (s *Store) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// SetCredentials records the credentials issued for a provider during
// the user's latest sign-in on every live session of that user.
func (s *Store) SetCredentials(userID, provider string, creds models.ProviderCredentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.UserID != userID {
			continue
		}
		if sess.Credentials == nil {
			sess.Credentials = make(map[string]models.ProviderCredentials)
		}
		sess.Credentials[provider] = creds
	}
}

// LastCredentials returns the credentials captured at the user's most
// recent sign-in for the given provider, if a live session still holds
// them.
func (s *Store) LastCredentials(userID, provider string) (models.ProviderCredentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Session
	for _, sess := range s.sessions {
		if sess.UserID != userID || time.Now().After(sess.ExpiresAt) {
			continue
		}
		if _, ok := sess.Credentials[provider]; !ok {
			continue
		}
		if latest == nil || sess.CreatedAt.After(latest.CreatedAt) {
			latest = sess
		}
	}
	if latest == nil {
		return models.ProviderCredentials{}, false
	}
	return latest.Credentials[provider], true
}

func (s *Store) CleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if time.Now().After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			s.CleanupExpired()
		}
	}()
}
