package service

import (
	"fmt"

	"streams-service/internal/apperr"
	"streams-service/internal/models"
	"streams-service/internal/observability"
)

// ChannelSummary is the list-view shape of a channel.
type ChannelSummary struct {
	ID   int    `json:"channel_id"`
	Name string `json:"name"`
}

// ChannelDetails is the member view of a channel.
type ChannelDetails struct {
	Name         string           `json:"name"`
	IsPublic     bool             `json:"is_public"`
	OwnerMembers []models.Profile `json:"owner_members"`
	AllMembers   []models.Profile `json:"all_members"`
}

// ChannelCreate creates a channel with the caller as its first member
// and owner.
func (s *Service) ChannelCreate(actorID int, name string, isPublic bool) (int, error) {
	if len(name) < 1 || len(name) > 20 {
		return 0, apperr.Inputf("channel name must be between 1 and 20 characters")
	}

	s.store.Lock()
	now := s.nowUnix()
	id := s.store.NextChannelID()
	ch := &models.Location{
		ID:       id,
		Type:     models.LocationChannel,
		Name:     name,
		Messages: map[int]*models.Message{},
		IsPublic: isPublic,
		Standup:  &models.Standup{},
	}
	ch.AddMember(actorID, models.RoleOwner)
	s.store.State.Channels[id] = ch

	u := s.store.FindUser(actorID)
	u.Channels[id] = models.RoleOwner
	u.Stats.ChannelsJoined = models.AppendPoint(u.Stats.ChannelsJoined, 1, now)
	s.store.BumpChannelsExist(1, now)
	total := len(s.store.State.Channels)
	s.store.Unlock()

	observability.SetEntitiesExist("channels", total)
	s.persist()
	return id, nil
}

// ChannelsListMine lists the channels the caller belongs to.
func (s *Service) ChannelsListMine(actorID int) []ChannelSummary {
	s.store.RLock()
	defer s.store.RUnlock()

	out := []ChannelSummary{}
	for id := 1; id <= s.store.State.ChannelNum; id++ {
		ch, ok := s.store.State.Channels[id]
		if ok && ch.HasMember(actorID) {
			out = append(out, ChannelSummary{ID: ch.ID, Name: ch.Name})
		}
	}
	return out
}

// ChannelsListAll lists every channel, joined or not.
func (s *Service) ChannelsListAll() []ChannelSummary {
	s.store.RLock()
	defer s.store.RUnlock()

	out := []ChannelSummary{}
	for id := 1; id <= s.store.State.ChannelNum; id++ {
		if ch, ok := s.store.State.Channels[id]; ok {
			out = append(out, ChannelSummary{ID: ch.ID, Name: ch.Name})
		}
	}
	return out
}

// ChannelDetails returns the rosters of a channel the caller belongs
// to. Member profiles are computed from the canonical user records.
func (s *Service) ChannelDetails(actorID, channelID int) (ChannelDetails, error) {
	s.store.RLock()
	defer s.store.RUnlock()

	ch := s.store.State.Channels[channelID]
	if ch == nil {
		return ChannelDetails{}, apperr.Inputf("channel does not exist")
	}
	if !ch.HasMember(actorID) {
		return ChannelDetails{}, apperr.Accessf("user is not a member of the channel")
	}
	return ChannelDetails{
		Name:         ch.Name,
		IsPublic:     ch.IsPublic,
		OwnerMembers: s.profilesLocked(ch.OwnerIDs),
		AllMembers:   s.profilesLocked(ch.MemberIDs),
	}, nil
}

// ChannelJoin adds the caller to a channel. Private channels admit
// global owners only.
func (s *Service) ChannelJoin(actorID, channelID int) error {
	s.store.Lock()
	ch := s.store.State.Channels[channelID]
	if ch == nil {
		s.store.Unlock()
		return apperr.Inputf("channel does not exist")
	}
	if ch.HasMember(actorID) {
		s.store.Unlock()
		return apperr.Inputf("user is already a member of the channel")
	}
	u := s.store.FindUser(actorID)
	if !ch.IsPublic && u.Perm != models.PermOwner {
		s.store.Unlock()
		return apperr.Accessf("channel is private")
	}
	s.joinChannelLocked(u, ch)
	s.store.Unlock()

	s.persist()
	return nil
}

// ChannelInvite adds a user to a channel on behalf of a member and
// notifies them.
func (s *Service) ChannelInvite(actorID, channelID, userID int) error {
	s.store.Lock()
	ch := s.store.State.Channels[channelID]
	if ch == nil {
		s.store.Unlock()
		return apperr.Inputf("channel does not exist")
	}
	target := s.store.FindUser(userID)
	if target == nil {
		s.store.Unlock()
		return apperr.Inputf("user does not exist")
	}
	if ch.HasMember(userID) {
		s.store.Unlock()
		return apperr.Inputf("user is already a member of the channel")
	}
	if !ch.HasMember(actorID) {
		s.store.Unlock()
		return apperr.Accessf("inviter is not a member of the channel")
	}

	s.joinChannelLocked(target, ch)
	inviter := s.store.FindUser(actorID)
	s.notifyLocked("invite", ch, userID,
		fmt.Sprintf("%s added you to %s", inviter.Handle, ch.Name))
	s.store.Unlock()

	s.persist()
	return nil
}

// ChannelLeave removes the caller from a channel. Messages they sent
// stay behind.
func (s *Service) ChannelLeave(actorID, channelID int) error {
	s.store.Lock()
	ch := s.store.State.Channels[channelID]
	if ch == nil {
		s.store.Unlock()
		return apperr.Inputf("channel does not exist")
	}
	if !ch.HasMember(actorID) {
		s.store.Unlock()
		return apperr.Accessf("user is not a member of the channel")
	}

	ch.RemoveMember(actorID)
	u := s.store.FindUser(actorID)
	delete(u.Channels, channelID)
	u.Stats.ChannelsJoined = models.AppendPoint(u.Stats.ChannelsJoined, -1, s.nowUnix())
	s.store.Unlock()

	s.persist()
	return nil
}

// ChannelAddOwner grants the owner role to a member.
func (s *Service) ChannelAddOwner(actorID, channelID, userID int) error {
	s.store.Lock()
	defer func() { s.store.Unlock(); s.persist() }()

	ch := s.store.State.Channels[channelID]
	if ch == nil {
		return apperr.Inputf("channel does not exist")
	}
	target := s.store.FindUser(userID)
	if target == nil {
		return apperr.Inputf("user does not exist")
	}
	if !ch.HasMember(userID) {
		return apperr.Inputf("user is not a member of the channel")
	}
	if ch.HasOwner(userID) {
		return apperr.Inputf("user is already an owner of the channel")
	}
	if !s.hasOwnerPermsLocked(actorID, ch) {
		return apperr.Accessf("caller does not have owner permissions in the channel")
	}

	ch.OwnerIDs = append(ch.OwnerIDs, userID)
	target.Channels[channelID] = models.RoleOwner
	return nil
}

// ChannelRemoveOwner strips the owner role, never from the last owner.
func (s *Service) ChannelRemoveOwner(actorID, channelID, userID int) error {
	s.store.Lock()
	defer func() { s.store.Unlock(); s.persist() }()

	ch := s.store.State.Channels[channelID]
	if ch == nil {
		return apperr.Inputf("channel does not exist")
	}
	target := s.store.FindUser(userID)
	if target == nil {
		return apperr.Inputf("user does not exist")
	}
	if !ch.HasOwner(userID) {
		return apperr.Inputf("user is not an owner of the channel")
	}
	if len(ch.OwnerIDs) == 1 {
		return apperr.Inputf("user is the only owner of the channel")
	}
	if !s.hasOwnerPermsLocked(actorID, ch) {
		return apperr.Accessf("caller does not have owner permissions in the channel")
	}

	ch.OwnerIDs = removeFromIDs(ch.OwnerIDs, userID)
	target.Channels[channelID] = models.RoleMember
	return nil
}

func (s *Service) joinChannelLocked(u *models.User, ch *models.Location) {
	ch.AddMember(u.ID, models.RoleMember)
	u.Channels[ch.ID] = models.RoleMember
	u.Stats.ChannelsJoined = models.AppendPoint(u.Stats.ChannelsJoined, 1, s.nowUnix())
}

// hasOwnerPermsLocked reports whether the actor may administer the
// channel: channel owner, or a global owner who is a member.
func (s *Service) hasOwnerPermsLocked(actorID int, ch *models.Location) bool {
	if ch.HasOwner(actorID) {
		return true
	}
	u := s.store.FindUser(actorID)
	return u != nil && u.Perm == models.PermOwner && ch.HasMember(actorID)
}

func (s *Service) profilesLocked(ids []int) []models.Profile {
	out := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if u := s.store.FindUser(id); u != nil {
			out = append(out, u.Profile())
		}
	}
	return out
}

func removeFromIDs(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
