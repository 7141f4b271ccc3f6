// Package store holds the single shared registry of all entities. The
// store owns every user, location and message; everything else refers
// to entities by id. One coarse lock serializes all access, from
// foreground requests and from the timer-driven actors (scheduled
// sends, standup expiry) alike.
package store

import (
	"sync"

	"streams-service/internal/models"
)

// WorkspaceStats tracks how many channels, dms and messages exist,
// with a timestamped history per kind.
type WorkspaceStats struct {
	ChannelsExist []models.StatPoint `json:"channels_exist"`
	DMsExist      []models.StatPoint `json:"dms_exist"`
	MessagesExist []models.StatPoint `json:"messages_exist"`
}

// State is the serializable contents of the store. Snapshots marshal
// it as a whole.
type State struct {
	Users        []*models.User `json:"users"`
	RemovedUsers []*models.User `json:"removed_users"`

	// Handles maps a handle to its live user's id.
	Handles map[string]int `json:"handles"`

	Channels map[int]*models.Location `json:"channels"`
	DMs      map[int]*models.Location `json:"dms"`

	// Messages is the global message index: id to owning location.
	Messages map[int]models.MessageRef `json:"messages"`

	// Monotonic id counters. Ids are never reused.
	ChannelNum int `json:"channel_num"`
	DMNum      int `json:"dm_num"`
	MessageNum int `json:"message_num"`
	SessionNum int `json:"session_num"`

	// AdminNum counts global owners. It never drops below one while
	// any user exists.
	AdminNum int `json:"admin_num"`

	// ActiveSessions maps a session id to the user it belongs to.
	ActiveSessions map[int]int `json:"active_sessions"`

	// ResetCodes maps a password-reset code to a user id.
	ResetCodes map[int]int `json:"reset_codes"`

	Workspace WorkspaceStats `json:"workspace"`
}

// Store wraps State with the process-wide lock.
type Store struct {
	mu    sync.RWMutex
	State State
}

func New() *Store {
	s := &Store{}
	s.State = emptyState()
	return s
}

func emptyState() State {
	return State{
		Users:          []*models.User{},
		RemovedUsers:   []*models.User{},
		Handles:        map[string]int{},
		Channels:       map[int]*models.Location{},
		DMs:            map[int]*models.Location{},
		Messages:       map[int]models.MessageRef{},
		ActiveSessions: map[int]int{},
		ResetCodes:     map[int]int{},
	}
}

func (s *Store) Lock()    { s.mu.Lock() }
func (s *Store) Unlock()  { s.mu.Unlock() }
func (s *Store) RLock()   { s.mu.RLock() }
func (s *Store) RUnlock() { s.mu.RUnlock() }

// Clear resets the store to empty. Callers must hold the lock.
func (s *Store) Clear() {
	s.State = emptyState()
}

// FindUser returns the live user with the given id, or nil.
func (s *Store) FindUser(id int) *models.User {
	for _, u := range s.State.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// FindRemovedUser returns the removed user with the given id, or nil.
func (s *Store) FindRemovedUser(id int) *models.User {
	for _, u := range s.State.RemovedUsers {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UserByEmail returns the live user registered under email, or nil.
func (s *Store) UserByEmail(email string) *models.User {
	for _, u := range s.State.Users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// Location resolves a location reference, returning nil when it does
// not exist.
func (s *Store) Location(t models.LocationType, id int) *models.Location {
	if t == models.LocationChannel {
		return s.State.Channels[id]
	}
	return s.State.DMs[id]
}

// NextChannelID reserves the next channel id.
func (s *Store) NextChannelID() int {
	s.State.ChannelNum++
	return s.State.ChannelNum
}

// NextDMID reserves the next dm id.
func (s *Store) NextDMID() int {
	s.State.DMNum++
	return s.State.DMNum
}

// NextMessageID reserves the next message id. Scheduled sends reserve
// their id here at schedule time, long before delivery.
func (s *Store) NextMessageID() int {
	s.State.MessageNum++
	return s.State.MessageNum
}

// NewSession registers a fresh session for userID and returns its id.
func (s *Store) NewSession(userID int) int {
	s.State.SessionNum++
	s.State.ActiveSessions[s.State.SessionNum] = userID
	return s.State.SessionNum
}

// SessionUser looks up the user a session belongs to.
func (s *Store) SessionUser(sessionID int) (int, bool) {
	userID, ok := s.State.ActiveSessions[sessionID]
	return userID, ok
}

// DropSession invalidates a single session.
func (s *Store) DropSession(sessionID int) {
	delete(s.State.ActiveSessions, sessionID)
}

// DropUserSessions invalidates every session belonging to userID.
func (s *Store) DropUserSessions(userID int) {
	for sessionID, uid := range s.State.ActiveSessions {
		if uid == userID {
			delete(s.State.ActiveSessions, sessionID)
		}
	}
}

// BumpChannelsExist records a change in the number of channels.
func (s *Store) BumpChannelsExist(delta int, now int64) {
	s.State.Workspace.ChannelsExist = models.AppendPoint(s.State.Workspace.ChannelsExist, delta, now)
}

// BumpDMsExist records a change in the number of dms.
func (s *Store) BumpDMsExist(delta int, now int64) {
	s.State.Workspace.DMsExist = models.AppendPoint(s.State.Workspace.DMsExist, delta, now)
}

// BumpMessagesExist records a change in the number of messages.
func (s *Store) BumpMessagesExist(delta int, now int64) {
	s.State.Workspace.MessagesExist = models.AppendPoint(s.State.Workspace.MessagesExist, delta, now)
}
