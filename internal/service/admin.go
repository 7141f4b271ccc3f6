package service

import (
	"streams-service/internal/apperr"
	"streams-service/internal/models"
)

// redactedBody replaces every message a removed user authored.
const redactedBody = "Removed user"

// AdminRemoveUser removes a user from the platform. Their messages are
// redacted in place, they leave every channel and dm, their sessions
// are dropped, and the record moves to the removed collection with its
// email and handle freed for reuse. The only global owner cannot be
// removed. The cascade runs eagerly with no rollback.
func (s *Service) AdminRemoveUser(actorID, targetID int) error {
	s.store.Lock()
	actor := s.store.FindUser(actorID)
	if actor == nil || actor.Perm != models.PermOwner {
		s.store.Unlock()
		return apperr.Accessf("caller is not a global owner")
	}
	target := s.store.FindUser(targetID)
	if target == nil {
		s.store.Unlock()
		return apperr.Inputf("user does not exist")
	}
	if target.Perm == models.PermOwner && s.store.State.AdminNum == 1 {
		s.store.Unlock()
		return apperr.Inputf("user is the only global owner")
	}

	// Ids in the sent set may refer to messages deleted since; skip
	// those.
	for id := range target.SentMessages {
		ref, ok := s.store.State.Messages[id]
		if !ok {
			continue
		}
		loc := s.store.Location(ref.Type, ref.LocationID)
		if loc == nil {
			continue
		}
		if msg, ok := loc.Messages[id]; ok {
			msg.Body = redactedBody
			msg.Tags = nil
		}
	}

	for channelID := range target.Channels {
		if ch := s.store.State.Channels[channelID]; ch != nil {
			ch.RemoveMember(targetID)
		}
	}
	for dmID := range target.DMs {
		if dm := s.store.State.DMs[dmID]; dm != nil {
			dm.RemoveMember(targetID)
		}
	}
	target.Channels = map[int]models.Role{}
	target.DMs = map[int]models.Role{}

	target.NameFirst = "Removed"
	target.NameLast = "user"
	s.store.DropUserSessions(targetID)
	delete(s.store.State.Handles, target.Handle)
	if target.Perm == models.PermOwner {
		s.store.State.AdminNum--
	}

	for i, u := range s.store.State.Users {
		if u.ID == targetID {
			s.store.State.Users = append(s.store.State.Users[:i], s.store.State.Users[i+1:]...)
			break
		}
	}
	s.store.State.RemovedUsers = append(s.store.State.RemovedUsers, target)
	s.store.Unlock()

	s.persist()
	return nil
}

// AdminChangePermission sets a user's platform-wide permission level.
// The only global owner cannot be demoted.
func (s *Service) AdminChangePermission(actorID, targetID int, perm models.Permission) error {
	s.store.Lock()
	actor := s.store.FindUser(actorID)
	if actor == nil || actor.Perm != models.PermOwner {
		s.store.Unlock()
		return apperr.Accessf("caller is not a global owner")
	}
	target := s.store.FindUser(targetID)
	if target == nil {
		s.store.Unlock()
		return apperr.Inputf("user does not exist")
	}
	// Setting the level a user already holds is a no-op, not an error.
	if target.Perm == perm {
		s.store.Unlock()
		return nil
	}
	if perm != models.PermOwner && perm != models.PermMember {
		s.store.Unlock()
		return apperr.Inputf("permission id is not valid")
	}
	if target.Perm == models.PermOwner && s.store.State.AdminNum == 1 {
		s.store.Unlock()
		return apperr.Inputf("user is the only global owner")
	}

	target.Perm = perm
	if perm == models.PermOwner {
		s.store.State.AdminNum++
	} else {
		s.store.State.AdminNum--
	}
	s.store.Unlock()

	s.persist()
	return nil
}
