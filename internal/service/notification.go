package service

import "streams-service/internal/models"

// notificationsReadLimit caps how many log entries a read surfaces.
// The log itself is unbounded.
const notificationsReadLimit = 20

// Notifications returns the caller's most recent notifications, newest
// first.
func (s *Service) Notifications(actorID int) []models.Notification {
	s.store.RLock()
	defer s.store.RUnlock()

	u := s.store.FindUser(actorID)
	if u == nil {
		return []models.Notification{}
	}
	n := len(u.Notifications)
	if n > notificationsReadLimit {
		n = notificationsReadLimit
	}
	out := make([]models.Notification, n)
	copy(out, u.Notifications[:n])
	return out
}
