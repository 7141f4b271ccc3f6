package service

import (
	"fmt"
	"sort"
	"strings"

	"streams-service/internal/apperr"
	"streams-service/internal/models"
	"streams-service/internal/observability"
)

// DMSummary is the list-view shape of a dm.
type DMSummary struct {
	ID   int    `json:"dm_id"`
	Name string `json:"name"`
}

// DMDetails is the member view of a dm.
type DMDetails struct {
	Name    string           `json:"name"`
	Members []models.Profile `json:"members"`
}

// DMCreate opens a dm between the caller and the listed users. The
// caller becomes the owner; every other member gets an invite
// notification. The name is the sorted comma-join of all member
// handles.
func (s *Service) DMCreate(actorID int, userIDs []int) (int, error) {
	s.store.Lock()
	creator := s.store.FindUser(actorID)

	members := []*models.User{creator}
	seen := map[int]bool{actorID: true}
	for _, id := range userIDs {
		if seen[id] {
			s.store.Unlock()
			return 0, apperr.Inputf("duplicate user in dm member list")
		}
		u := s.store.FindUser(id)
		if u == nil {
			s.store.Unlock()
			return 0, apperr.Inputf("user does not exist")
		}
		seen[id] = true
		members = append(members, u)
	}

	handles := make([]string, 0, len(members))
	for _, u := range members {
		handles = append(handles, u.Handle)
	}
	sort.Strings(handles)

	now := s.nowUnix()
	id := s.store.NextDMID()
	dm := &models.Location{
		ID:       id,
		Type:     models.LocationDM,
		Name:     strings.Join(handles, ", "),
		Messages: map[int]*models.Message{},
	}
	s.store.State.DMs[id] = dm

	for _, u := range members {
		role := models.RoleMember
		if u.ID == actorID {
			role = models.RoleOwner
		}
		dm.AddMember(u.ID, role)
		u.DMs[id] = role
		u.Stats.DMsJoined = models.AppendPoint(u.Stats.DMsJoined, 1, now)
	}
	for _, u := range members {
		if u.ID != actorID {
			s.notifyLocked("invite", dm, u.ID,
				fmt.Sprintf("%s added you to %s", creator.Handle, dm.Name))
		}
	}
	s.store.BumpDMsExist(1, now)
	total := len(s.store.State.DMs)
	s.store.Unlock()

	observability.SetEntitiesExist("dms", total)
	s.persist()
	return id, nil
}

// DMList lists the dms the caller belongs to.
func (s *Service) DMList(actorID int) []DMSummary {
	s.store.RLock()
	defer s.store.RUnlock()

	out := []DMSummary{}
	for id := 1; id <= s.store.State.DMNum; id++ {
		dm, ok := s.store.State.DMs[id]
		if ok && dm.HasMember(actorID) {
			out = append(out, DMSummary{ID: dm.ID, Name: dm.Name})
		}
	}
	return out
}

// DMDetails returns the roster of a dm the caller belongs to.
func (s *Service) DMDetails(actorID, dmID int) (DMDetails, error) {
	s.store.RLock()
	defer s.store.RUnlock()

	dm := s.store.State.DMs[dmID]
	if dm == nil {
		return DMDetails{}, apperr.Inputf("dm does not exist")
	}
	if !dm.HasMember(actorID) {
		return DMDetails{}, apperr.Accessf("user is not a member of the dm")
	}
	return DMDetails{Name: dm.Name, Members: s.profilesLocked(dm.MemberIDs)}, nil
}

// DMLeave removes the caller from a dm. When the owner leaves the dm
// becomes ownerless; it is not reassigned.
func (s *Service) DMLeave(actorID, dmID int) error {
	s.store.Lock()
	dm := s.store.State.DMs[dmID]
	if dm == nil {
		s.store.Unlock()
		return apperr.Inputf("dm does not exist")
	}
	if !dm.HasMember(actorID) {
		s.store.Unlock()
		return apperr.Accessf("user is not a member of the dm")
	}

	dm.RemoveMember(actorID)
	u := s.store.FindUser(actorID)
	delete(u.DMs, dmID)
	u.Stats.DMsJoined = models.AppendPoint(u.Stats.DMsJoined, -1, s.nowUnix())
	s.store.Unlock()

	s.persist()
	return nil
}

// DMRemove deletes a dm and every message in it. Only the owner may
// remove a dm.
func (s *Service) DMRemove(actorID, dmID int) error {
	s.store.Lock()
	dm := s.store.State.DMs[dmID]
	if dm == nil {
		s.store.Unlock()
		return apperr.Inputf("dm does not exist")
	}
	if !dm.HasOwner(actorID) {
		s.store.Unlock()
		return apperr.Accessf("user is not the owner of the dm")
	}

	now := s.nowUnix()
	for id := range dm.Messages {
		delete(s.store.State.Messages, id)
		s.store.BumpMessagesExist(-1, now)
	}
	for _, memberID := range dm.MemberIDs {
		u := s.store.FindUser(memberID)
		if u == nil {
			continue
		}
		delete(u.DMs, dmID)
		u.Stats.DMsJoined = models.AppendPoint(u.Stats.DMsJoined, -1, now)
	}
	delete(s.store.State.DMs, dmID)
	s.store.BumpDMsExist(-1, now)
	messagesTotal := len(s.store.State.Messages)
	dmsTotal := len(s.store.State.DMs)
	s.store.Unlock()

	observability.SetEntitiesExist("messages", messagesTotal)
	observability.SetEntitiesExist("dms", dmsTotal)
	s.persist()
	return nil
}
