// Package service implements the backend operations against the shared
// store: auth, users, channels, dms, the message engine, notifications,
// standups and admin. Exported methods take the store lock; unexported
// *Locked helpers assume the caller holds it.
package service

import (
	"time"

	"go.uber.org/zap"

	"streams-service/internal/apperr"
	"streams-service/internal/logger"
	"streams-service/internal/models"
	"streams-service/internal/observability"
	"streams-service/internal/store"
	"streams-service/internal/token"
)

// Notifier receives every notification appended to a user's log, for
// live delivery beyond the store (websocket streams, event exchange).
type Notifier interface {
	NotificationAdded(kind string, userID int, n models.Notification)
}

// Service carries the store and the collaborators every operation
// shares. The clock and timer are injectable so tests can drive
// scheduled sends and standup expiry deterministically.
type Service struct {
	store    *store.Store
	signer   *token.Signer
	notifier Notifier
	snap     *store.Snapshotter

	now   func() time.Time
	after func(d time.Duration, fn func())
}

// New constructs a Service. notifier and snap may be nil.
func New(st *store.Store, signer *token.Signer, notifier Notifier, snap *store.Snapshotter) *Service {
	return &Service{
		store:    st,
		signer:   signer,
		notifier: notifier,
		snap:     snap,
		now:      time.Now,
		after:    func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// ValidateToken resolves a bearer token to a user id. The session must
// still be active and belong to the token's user.
func (s *Service) ValidateToken(raw string) (int, error) {
	claims, err := s.signer.Parse(raw)
	if err != nil {
		return 0, apperr.Accessf("invalid token")
	}

	s.store.RLock()
	defer s.store.RUnlock()
	userID, ok := s.store.SessionUser(claims.SessionID)
	if !ok || userID != claims.UserID {
		return 0, apperr.Accessf("session is no longer active")
	}
	return userID, nil
}

// Clear wipes the store. Used by tests and the clear route.
func (s *Service) Clear() {
	s.store.Lock()
	s.store.Clear()
	s.store.Unlock()

	observability.SetEntitiesExist("channels", 0)
	observability.SetEntitiesExist("dms", 0)
	observability.SetEntitiesExist("messages", 0)
	s.persist()
}

// persist writes a best-effort snapshot off the request path. Callers
// invoke it after releasing the store lock.
func (s *Service) persist() {
	if s.snap == nil {
		return
	}
	go func() {
		if err := s.snap.Save(s.store); err != nil {
			logger.Log.Warn("snapshot_save_failed", zap.Error(err))
		}
	}()
}

// notifyLocked appends a notification to the target's log and hands it
// to the notifier. Delivery beyond the log is best effort.
func (s *Service) notifyLocked(kind string, loc *models.Location, targetID int, message string) {
	u := s.store.FindUser(targetID)
	if u == nil {
		return
	}
	n := models.NewNotification(loc.Type, loc.ID, message)
	u.Notifications = append([]models.Notification{n}, u.Notifications...)
	observability.IncNotification(kind)
	if s.notifier != nil {
		s.notifier.NotificationAdded(kind, targetID, n)
	}
}

func (s *Service) nowUnix() int64 {
	return s.now().Unix()
}
