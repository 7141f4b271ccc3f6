package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"streams-service/internal/apperr"
	"streams-service/internal/logger"
	"streams-service/internal/models"
	"streams-service/internal/observability"
)

const maxMessageLen = 1000

// messagesPageSize is the window returned by a single messages call.
const messagesPageSize = 50

// MessagesPage is one recency-ordered window of a location's messages.
// End is the start of the next window, or -1 when this window reaches
// the oldest message.
type MessagesPage struct {
	Messages []models.MessageView `json:"messages"`
	Start    int                  `json:"start"`
	End      int                  `json:"end"`
}

// Send posts a message to a channel or dm and returns its id.
func (s *Service) Send(actorID int, locType models.LocationType, locID int, body string) (int, error) {
	s.store.Lock()
	loc := s.store.Location(locType, locID)
	if loc == nil {
		s.store.Unlock()
		return 0, apperr.Inputf("%s does not exist", locType)
	}
	id := s.store.NextMessageID()
	if _, err := s.sendLocked(actorID, loc, body, id, false); err != nil {
		s.store.Unlock()
		return 0, err
	}
	total := len(s.store.State.Messages)
	s.store.Unlock()

	observability.SetEntitiesExist("messages", total)
	s.persist()
	return id, nil
}

// Messages returns one window of a location's messages, newest first.
func (s *Service) Messages(actorID int, locType models.LocationType, locID, start int) (MessagesPage, error) {
	s.store.RLock()
	defer s.store.RUnlock()

	loc := s.store.Location(locType, locID)
	if loc == nil {
		return MessagesPage{}, apperr.Inputf("%s does not exist", locType)
	}
	if start > len(loc.Messages) {
		return MessagesPage{}, apperr.Inputf("start is greater than the number of messages")
	}
	if !loc.HasMember(actorID) {
		return MessagesPage{}, apperr.Accessf("user is not a member of the %s", locType)
	}

	ordered := make([]*models.Message, 0, len(loc.Messages))
	for _, m := range loc.Messages {
		ordered = append(ordered, m)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt != ordered[j].CreatedAt {
			return ordered[i].CreatedAt > ordered[j].CreatedAt
		}
		return ordered[i].ID > ordered[j].ID
	})

	end := start + messagesPageSize
	if end >= len(ordered) {
		end = -1
	}
	window := ordered[start:]
	if end != -1 {
		window = ordered[start : start+messagesPageSize]
	}
	views := make([]models.MessageView, 0, len(window))
	for _, m := range window {
		views = append(views, m.View(actorID))
	}
	return MessagesPage{Messages: views, Start: start, End: end}, nil
}

// Edit replaces a message's body. An empty body deletes the message.
func (s *Service) Edit(actorID, messageID int, newBody string) error {
	if len(newBody) > maxMessageLen {
		return apperr.Inputf("message must not exceed %d characters", maxMessageLen)
	}
	if newBody == "" {
		return s.Remove(actorID, messageID)
	}

	s.store.Lock()
	loc, msg, err := s.resolveMessageLocked(actorID, messageID)
	if err != nil {
		s.store.Unlock()
		return err
	}
	if !s.canMutateLocked(actorID, loc, msg) {
		s.store.Unlock()
		return apperr.Accessf("user may not edit this message")
	}

	msg.Body = newBody
	s.tagScanLocked(actorID, loc, msg)
	// The stored tag list resets on every edit, so a mention that is
	// dropped and later re-added notifies again.
	msg.Tags = nil
	s.store.Unlock()

	s.persist()
	return nil
}

// Remove deletes a message from its location and the global index.
func (s *Service) Remove(actorID, messageID int) error {
	s.store.Lock()
	loc, msg, err := s.resolveMessageLocked(actorID, messageID)
	if err != nil {
		s.store.Unlock()
		return err
	}
	if !s.canMutateLocked(actorID, loc, msg) {
		s.store.Unlock()
		return apperr.Accessf("user may not remove this message")
	}

	delete(loc.Messages, msg.ID)
	delete(s.store.State.Messages, msg.ID)
	s.store.BumpMessagesExist(-1, s.nowUnix())
	total := len(s.store.State.Messages)
	s.store.Unlock()

	observability.SetEntitiesExist("messages", total)
	s.persist()
	return nil
}

// React records the caller's reaction and notifies the author.
func (s *Service) React(actorID, messageID, reactID int) error {
	if reactID != models.ReactThumbsUp {
		return apperr.Inputf("react id is not valid")
	}

	s.store.Lock()
	loc, msg, err := s.resolveMessageLocked(actorID, messageID)
	if err != nil {
		s.store.Unlock()
		return err
	}
	if msg.HasReact(reactID, actorID) {
		s.store.Unlock()
		return apperr.Inputf("user has already reacted to this message")
	}

	msg.Reacts[reactID] = append(msg.Reacts[reactID], actorID)
	// The author is notified even after leaving the location; only a
	// removed author gets nothing.
	if author := s.store.FindUser(msg.AuthorID); author != nil {
		reactor := s.store.FindUser(actorID)
		s.notifyLocked("react", loc, author.ID,
			fmt.Sprintf("%s reacted to your message in %s", reactor.Handle, loc.Name))
	}
	s.store.Unlock()

	s.persist()
	return nil
}

// Unreact withdraws the caller's reaction.
func (s *Service) Unreact(actorID, messageID, reactID int) error {
	if reactID != models.ReactThumbsUp {
		return apperr.Inputf("react id is not valid")
	}

	s.store.Lock()
	_, msg, err := s.resolveMessageLocked(actorID, messageID)
	if err != nil {
		s.store.Unlock()
		return err
	}
	if !msg.HasReact(reactID, actorID) {
		s.store.Unlock()
		return apperr.Inputf("user has not reacted to this message")
	}

	msg.Reacts[reactID] = removeFromIDs(msg.Reacts[reactID], actorID)
	s.store.Unlock()

	s.persist()
	return nil
}

// Pin marks a message as pinned.
func (s *Service) Pin(actorID, messageID int) error {
	return s.setPinned(actorID, messageID, true)
}

// Unpin clears a message's pinned flag.
func (s *Service) Unpin(actorID, messageID int) error {
	return s.setPinned(actorID, messageID, false)
}

func (s *Service) setPinned(actorID, messageID int, pinned bool) error {
	s.store.Lock()
	loc, msg, err := s.resolveMessageLocked(actorID, messageID)
	if err != nil {
		s.store.Unlock()
		return err
	}
	if !s.canMutateLocked(actorID, loc, msg) {
		s.store.Unlock()
		return apperr.Accessf("user may not pin this message")
	}
	if msg.Pinned == pinned {
		s.store.Unlock()
		if pinned {
			return apperr.Inputf("message is already pinned")
		}
		return apperr.Inputf("message is not pinned")
	}

	msg.Pinned = pinned
	s.store.Unlock()

	s.persist()
	return nil
}

// SendLater validates and reserves a message id now, then delivers the
// message through the ordinary send path when sendAt arrives. Tag
// notifications fire at delivery time.
func (s *Service) SendLater(actorID int, locType models.LocationType, locID int, body string, sendAt int64) (int, error) {
	s.store.Lock()
	loc := s.store.Location(locType, locID)
	if loc == nil {
		s.store.Unlock()
		return 0, apperr.Inputf("%s does not exist", locType)
	}
	if !loc.HasMember(actorID) {
		s.store.Unlock()
		return 0, apperr.Accessf("user is not a member of the %s", locType)
	}
	if len(body) < 1 || len(body) > maxMessageLen {
		s.store.Unlock()
		return 0, apperr.Inputf("message must be between 1 and %d characters", maxMessageLen)
	}
	delay := time.Duration(sendAt-s.nowUnix()) * time.Second
	if delay <= 0 {
		s.store.Unlock()
		return 0, apperr.Inputf("send time is in the past")
	}
	id := s.store.NextMessageID()
	s.store.Unlock()

	s.after(delay, func() { s.deliverScheduled(actorID, locType, locID, body, id) })
	return id, nil
}

// deliverScheduled fires once per scheduled send. The location or the
// author's membership may have gone away since scheduling; delivery is
// then dropped.
func (s *Service) deliverScheduled(actorID int, locType models.LocationType, locID int, body string, id int) {
	s.store.Lock()
	loc := s.store.Location(locType, locID)
	if loc == nil {
		s.store.Unlock()
		return
	}
	_, err := s.sendLocked(actorID, loc, body, id, false)
	total := len(s.store.State.Messages)
	s.store.Unlock()

	if err != nil {
		logger.Log.Warn("scheduled_send_dropped",
			zap.Int("message_id", id),
			zap.Error(err),
		)
		return
	}
	observability.SetEntitiesExist("messages", total)
	s.persist()
}

// Share cross-posts a message into another location the caller belongs
// to. Exactly one of channelID and dmID must be set; the other is -1.
// Only the caption is length-checked; the composite body is sent
// oversize-exempt.
func (s *Service) Share(actorID, ogMessageID int, caption string, channelID, dmID int) (int, error) {
	if (channelID == -1) == (dmID == -1) {
		return 0, apperr.Inputf("exactly one share target must be given")
	}

	locType, locID := models.LocationChannel, channelID
	if channelID == -1 {
		locType, locID = models.LocationDM, dmID
	}

	s.store.Lock()
	target := s.store.Location(locType, locID)
	if target == nil {
		s.store.Unlock()
		return 0, apperr.Inputf("%s does not exist", locType)
	}
	if !target.HasMember(actorID) {
		s.store.Unlock()
		return 0, apperr.Accessf("user is not a member of the %s", locType)
	}
	_, og, err := s.resolveMessageLocked(actorID, ogMessageID)
	if err != nil {
		s.store.Unlock()
		return 0, err
	}
	if len(caption) > maxMessageLen {
		s.store.Unlock()
		return 0, apperr.Inputf("message must not exceed %d characters", maxMessageLen)
	}

	body := og.Body
	if caption != "" {
		body = og.Body + "\n\n" + caption
	}
	id := s.store.NextMessageID()
	if _, err := s.sendLocked(actorID, target, body, id, true); err != nil {
		s.store.Unlock()
		return 0, err
	}
	total := len(s.store.State.Messages)
	s.store.Unlock()

	observability.SetEntitiesExist("messages", total)
	s.persist()
	return id, nil
}

// Search returns every message containing the query across the
// locations the caller belongs to.
func (s *Service) Search(actorID int, query string) ([]models.MessageView, error) {
	if len(query) < 1 || len(query) > maxMessageLen {
		return nil, apperr.Inputf("query must be between 1 and %d characters", maxMessageLen)
	}

	s.store.RLock()
	defer s.store.RUnlock()

	out := []models.MessageView{}
	search := func(locs map[int]*models.Location) {
		for _, loc := range locs {
			if !loc.HasMember(actorID) {
				continue
			}
			for _, m := range loc.Messages {
				if strings.Contains(m.Body, query) {
					out = append(out, m.View(actorID))
				}
			}
		}
	}
	search(s.store.State.Channels)
	search(s.store.State.DMs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// sendLocked is the single entry point every message creation goes
// through: sends, scheduled deliveries, shares and standup flushes.
func (s *Service) sendLocked(authorID int, loc *models.Location, body string, id int, allowOversize bool) (*models.Message, error) {
	if !allowOversize && (len(body) < 1 || len(body) > maxMessageLen) {
		return nil, apperr.Inputf("message must be between 1 and %d characters", maxMessageLen)
	}
	if !loc.HasMember(authorID) {
		return nil, apperr.Accessf("user is not a member of the %s", loc.Type)
	}

	now := s.nowUnix()
	msg := &models.Message{
		ID:        id,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		Reacts:    map[int][]int{models.ReactThumbsUp: {}},
	}
	loc.Messages[id] = msg
	s.store.State.Messages[id] = models.MessageRef{
		Type:       loc.Type,
		LocationID: loc.ID,
		AuthorID:   authorID,
	}

	author := s.store.FindUser(authorID)
	author.SentMessages[id] = true
	author.Stats.MessagesSent = models.AppendPoint(author.Stats.MessagesSent, 1, now)
	s.store.BumpMessagesExist(1, now)

	s.tagScanLocked(authorID, loc, msg)
	return msg, nil
}

// resolveMessageLocked finds a message the actor can see. A message in
// a location the actor has not joined is indistinguishable from a
// nonexistent one.
func (s *Service) resolveMessageLocked(actorID, messageID int) (*models.Location, *models.Message, error) {
	ref, ok := s.store.State.Messages[messageID]
	if !ok {
		return nil, nil, apperr.Inputf("message does not exist")
	}
	loc := s.store.Location(ref.Type, ref.LocationID)
	if loc == nil || !loc.HasMember(actorID) {
		return nil, nil, apperr.Inputf("message does not exist")
	}
	msg, ok := loc.Messages[messageID]
	if !ok {
		return nil, nil, apperr.Inputf("message does not exist")
	}
	return loc, msg, nil
}

// canMutateLocked gates edits, removals and pins: the author, a
// location owner, or a global owner.
func (s *Service) canMutateLocked(actorID int, loc *models.Location, msg *models.Message) bool {
	u := s.store.FindUser(actorID)
	if u == nil {
		return false
	}
	if u.SentMessages[msg.ID] {
		return true
	}
	if loc.HasOwner(actorID) {
		return true
	}
	return u.Perm == models.PermOwner
}

// tagScanLocked scans the body for @handle mentions. A mention tags a
// user when the maximal alphanumeric run after '@' is a registered
// handle, that user is a member of the location, and the handle is not
// already tagged on this message. Each new tag fires one notification.
func (s *Service) tagScanLocked(taggerID int, loc *models.Location, msg *models.Message) {
	tagger := s.store.FindUser(taggerID)
	if tagger == nil {
		return
	}

	preview := msg.Body
	if len(preview) > 20 {
		preview = preview[:20]
	}

	body := msg.Body
	for i := 0; i < len(body); i++ {
		if body[i] != '@' {
			continue
		}
		j := i + 1
		for j < len(body) && isAlnum(body[j]) {
			j++
		}
		handle := body[i+1 : j]
		i = j - 1
		if handle == "" {
			continue
		}
		userID, ok := s.store.State.Handles[handle]
		if !ok || !loc.HasMember(userID) || containsString(msg.Tags, handle) {
			continue
		}
		msg.Tags = append(msg.Tags, handle)
		s.notifyLocked("tag", loc, userID,
			fmt.Sprintf("%s tagged you in %s: %s", tagger.Handle, loc.Name, preview))
	}
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
