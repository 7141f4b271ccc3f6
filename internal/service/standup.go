package service

import (
	"strings"
	"time"

	"streams-service/internal/apperr"
	"streams-service/internal/models"
	"streams-service/internal/observability"
)

// StandupStart opens a standup in a channel for length seconds and
// returns the finish time. One standup may be active per channel.
func (s *Service) StandupStart(actorID, channelID, length int) (int64, error) {
	s.store.Lock()
	ch := s.store.State.Channels[channelID]
	if ch == nil {
		s.store.Unlock()
		return 0, apperr.Inputf("channel does not exist")
	}
	if length < 0 {
		s.store.Unlock()
		return 0, apperr.Inputf("standup length must not be negative")
	}
	if ch.Standup.Active {
		s.store.Unlock()
		return 0, apperr.Inputf("a standup is already active in the channel")
	}
	if !ch.HasMember(actorID) {
		s.store.Unlock()
		return 0, apperr.Accessf("user is not a member of the channel")
	}

	finish := s.nowUnix() + int64(length)
	ch.Standup.Active = true
	ch.Standup.FinishAt = finish
	ch.Standup.CreatorID = actorID
	ch.Standup.Queue = []models.StandupLine{}
	s.store.Unlock()

	s.after(time.Duration(length)*time.Second, func() { s.flushStandup(channelID) })
	return finish, nil
}

// StandupActive reports whether a standup is running in the channel and
// when it finishes. The finish time is zero while inactive.
func (s *Service) StandupActive(actorID, channelID int) (bool, int64, error) {
	s.store.RLock()
	defer s.store.RUnlock()

	ch := s.store.State.Channels[channelID]
	if ch == nil {
		return false, 0, apperr.Inputf("channel does not exist")
	}
	if !ch.HasMember(actorID) {
		return false, 0, apperr.Accessf("user is not a member of the channel")
	}
	if !ch.Standup.Active {
		return false, 0, nil
	}
	return true, ch.Standup.FinishAt, nil
}

// StandupSend queues a line onto the channel's active standup. The line
// is not a message of its own; it appears in the flush summary.
func (s *Service) StandupSend(actorID, channelID int, text string) error {
	s.store.Lock()
	ch := s.store.State.Channels[channelID]
	if ch == nil {
		s.store.Unlock()
		return apperr.Inputf("channel does not exist")
	}
	if len(text) > maxMessageLen {
		s.store.Unlock()
		return apperr.Inputf("message must not exceed %d characters", maxMessageLen)
	}
	if !ch.Standup.Active {
		s.store.Unlock()
		return apperr.Inputf("no standup is active in the channel")
	}
	if !ch.HasMember(actorID) {
		s.store.Unlock()
		return apperr.Accessf("user is not a member of the channel")
	}

	ch.Standup.Queue = append(ch.Standup.Queue, models.StandupLine{AuthorID: actorID, Text: text})
	s.store.Unlock()

	s.persist()
	return nil
}

// flushStandup fires when a standup expires. The queued lines are
// joined into one summary message sent by the standup creator,
// oversize-exempt. An empty queue sends nothing.
func (s *Service) flushStandup(channelID int) {
	s.store.Lock()
	ch := s.store.State.Channels[channelID]
	if ch == nil || !ch.Standup.Active {
		s.store.Unlock()
		return
	}

	lines := make([]string, 0, len(ch.Standup.Queue))
	for _, line := range ch.Standup.Queue {
		handle := "unknown"
		if u := s.store.FindUser(line.AuthorID); u != nil {
			handle = u.Handle
		} else if u := s.store.FindRemovedUser(line.AuthorID); u != nil {
			handle = u.Handle
		}
		lines = append(lines, handle+": "+line.Text)
	}
	creatorID := ch.Standup.CreatorID
	ch.Standup.Active = false
	ch.Standup.FinishAt = 0
	ch.Standup.Queue = nil

	if len(lines) == 0 {
		s.store.Unlock()
		return
	}
	id := s.store.NextMessageID()
	_, err := s.sendLocked(creatorID, ch, strings.Join(lines, "\n"), id, true)
	total := len(s.store.State.Messages)
	s.store.Unlock()

	if err != nil {
		return
	}
	observability.SetEntitiesExist("messages", total)
	s.persist()
}
