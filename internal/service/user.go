package service

import (
	"streams-service/internal/apperr"
	"streams-service/internal/models"
)

// Profile returns the public profile for a live or removed user. A
// removed user resolves with its redacted name so historical message
// authorship stays displayable.
func (s *Service) Profile(userID int) (models.Profile, error) {
	s.store.RLock()
	defer s.store.RUnlock()

	if u := s.store.FindUser(userID); u != nil {
		return u.Profile(), nil
	}
	if u := s.store.FindRemovedUser(userID); u != nil {
		return u.Profile(), nil
	}
	return models.Profile{}, apperr.Inputf("user does not exist")
}

// UsersAll lists the profile of every live user.
func (s *Service) UsersAll() []models.Profile {
	s.store.RLock()
	defer s.store.RUnlock()

	profiles := make([]models.Profile, 0, len(s.store.State.Users))
	for _, u := range s.store.State.Users {
		profiles = append(profiles, u.Profile())
	}
	return profiles
}

// SetName updates the caller's display name.
func (s *Service) SetName(actorID int, nameFirst, nameLast string) error {
	if len(nameFirst) < 1 || len(nameFirst) > 50 {
		return apperr.Inputf("first name must be between 1 and 50 characters")
	}
	if len(nameLast) < 1 || len(nameLast) > 50 {
		return apperr.Inputf("last name must be between 1 and 50 characters")
	}

	s.store.Lock()
	u := s.store.FindUser(actorID)
	u.NameFirst = nameFirst
	u.NameLast = nameLast
	s.store.Unlock()

	s.persist()
	return nil
}

// SetEmail updates the caller's email, keeping emails unique across
// live users.
func (s *Service) SetEmail(actorID int, email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Inputf("email is not valid")
	}

	s.store.Lock()
	if other := s.store.UserByEmail(email); other != nil && other.ID != actorID {
		s.store.Unlock()
		return apperr.Inputf("email is already registered")
	}
	u := s.store.FindUser(actorID)
	u.Email = email
	s.store.Unlock()

	s.persist()
	return nil
}

// SetHandle updates the caller's handle and the handle index.
func (s *Service) SetHandle(actorID int, handle string) error {
	if len(handle) < 3 || len(handle) > 20 {
		return apperr.Inputf("handle must be between 3 and 20 characters")
	}
	for _, r := range handle {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !alnum {
			return apperr.Inputf("handle must be alphanumeric")
		}
	}

	s.store.Lock()
	if ownerID, taken := s.store.State.Handles[handle]; taken && ownerID != actorID {
		s.store.Unlock()
		return apperr.Inputf("handle is already taken")
	}
	u := s.store.FindUser(actorID)
	delete(s.store.State.Handles, u.Handle)
	u.Handle = handle
	s.store.State.Handles[handle] = u.ID
	s.store.Unlock()

	s.persist()
	return nil
}

// UserStatsResult is a user's activity history plus involvement rate.
type UserStatsResult struct {
	ChannelsJoined  []models.StatPoint `json:"channels_joined"`
	DMsJoined       []models.StatPoint `json:"dms_joined"`
	MessagesSent    []models.StatPoint `json:"messages_sent"`
	InvolvementRate float64            `json:"involvement_rate"`
}

// UserStats reports the caller's activity history. Involvement is the
// user's share of everything that currently exists, capped at 1 since
// deleted messages still count toward the user's sent total.
func (s *Service) UserStats(actorID int) UserStatsResult {
	s.store.RLock()
	defer s.store.RUnlock()

	u := s.store.FindUser(actorID)
	numerator := lastValue(u.Stats.ChannelsJoined) + lastValue(u.Stats.DMsJoined) + lastValue(u.Stats.MessagesSent)
	denominator := lastValue(s.store.State.Workspace.ChannelsExist) +
		lastValue(s.store.State.Workspace.DMsExist) +
		lastValue(s.store.State.Workspace.MessagesExist)

	rate := 0.0
	if denominator > 0 {
		rate = float64(numerator) / float64(denominator)
		if rate > 1 {
			rate = 1
		}
	}
	return UserStatsResult{
		ChannelsJoined:  u.Stats.ChannelsJoined,
		DMsJoined:       u.Stats.DMsJoined,
		MessagesSent:    u.Stats.MessagesSent,
		InvolvementRate: rate,
	}
}

// WorkspaceStatsResult is the workspace-wide existence history plus
// utilization rate.
type WorkspaceStatsResult struct {
	ChannelsExist   []models.StatPoint `json:"channels_exist"`
	DMsExist        []models.StatPoint `json:"dms_exist"`
	MessagesExist   []models.StatPoint `json:"messages_exist"`
	UtilizationRate float64            `json:"utilization_rate"`
}

// WorkspaceStats reports workspace-wide activity. Utilization is the
// share of live users who belong to at least one channel or dm.
func (s *Service) WorkspaceStats() WorkspaceStatsResult {
	s.store.RLock()
	defer s.store.RUnlock()

	active := 0
	for _, u := range s.store.State.Users {
		if len(u.Channels) > 0 || len(u.DMs) > 0 {
			active++
		}
	}
	rate := 0.0
	if len(s.store.State.Users) > 0 {
		rate = float64(active) / float64(len(s.store.State.Users))
	}
	return WorkspaceStatsResult{
		ChannelsExist:   s.store.State.Workspace.ChannelsExist,
		DMsExist:        s.store.State.Workspace.DMsExist,
		MessagesExist:   s.store.State.Workspace.MessagesExist,
		UtilizationRate: rate,
	}
}

func lastValue(history []models.StatPoint) int {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1].Value
}
