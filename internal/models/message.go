package models

// ReactThumbsUp is the only defined reaction kind.
const ReactThumbsUp = 1

// Message is a message stored inside a location's message map.
type Message struct {
	ID        int    `json:"message_id"`
	AuthorID  int    `json:"u_id"`
	Body      string `json:"message"`
	CreatedAt int64  `json:"time_created"`

	// Reacts maps a reaction kind to the ids of users who reacted.
	Reacts map[int][]int `json:"reacts"`

	Pinned bool `json:"is_pinned"`

	// Tags holds the handles successfully mentioned in the current
	// body text.
	Tags []string `json:"tags,omitempty"`
}

// MessageRef locates a message from the global index.
type MessageRef struct {
	Type       LocationType `json:"location_type"`
	LocationID int          `json:"location_id"`
	AuthorID   int          `json:"u_id"`
}

// ReactView renders one reaction kind for a particular viewer.
type ReactView struct {
	ReactID           int   `json:"react_id"`
	UserIDs           []int `json:"u_ids"`
	IsThisUserReacted bool  `json:"is_this_user_reacted"`
}

// MessageView is the API shape of a message.
type MessageView struct {
	ID        int         `json:"message_id"`
	AuthorID  int         `json:"u_id"`
	Body      string      `json:"message"`
	CreatedAt int64       `json:"time_created"`
	Reacts    []ReactView `json:"reacts"`
	Pinned    bool        `json:"is_pinned"`
}

// View renders the message for viewerID.
func (m *Message) View(viewerID int) MessageView {
	reacts := make([]ReactView, 0, len(m.Reacts))
	for reactID, userIDs := range m.Reacts {
		view := ReactView{ReactID: reactID, UserIDs: userIDs}
		if view.UserIDs == nil {
			view.UserIDs = []int{}
		}
		for _, id := range userIDs {
			if id == viewerID {
				view.IsThisUserReacted = true
				break
			}
		}
		reacts = append(reacts, view)
	}
	return MessageView{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		Reacts:    reacts,
		Pinned:    m.Pinned,
	}
}

// HasReact reports whether userID reacted with reactID.
func (m *Message) HasReact(reactID, userID int) bool {
	for _, id := range m.Reacts[reactID] {
		if id == userID {
			return true
		}
	}
	return false
}
