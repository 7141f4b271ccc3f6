package models

// LocationType distinguishes the two message containers.
type LocationType string

const (
	LocationChannel LocationType = "channel"
	LocationDM      LocationType = "dm"
)

// StandupLine is one queued contribution to an active standup.
type StandupLine struct {
	AuthorID int    `json:"u_id"`
	Text     string `json:"text"`
}

// Standup is a channel's standup sub-state.
type Standup struct {
	Active    bool          `json:"is_active"`
	FinishAt  int64         `json:"time_finish"`
	CreatorID int           `json:"creator_id"`
	Queue     []StandupLine `json:"queue"`
}

// Location is a channel or DM. Channels and DMs share message-handling
// semantics; they differ only in membership and ownership rules.
type Location struct {
	ID   int          `json:"id"`
	Type LocationType `json:"type"`
	Name string       `json:"name"`

	// MemberIDs keeps join order; OwnerIDs is the subset with the
	// owner role. Member profiles are computed from the canonical user
	// records at read time, never copied in.
	MemberIDs []int `json:"member_ids"`
	OwnerIDs  []int `json:"owner_ids"`

	Messages map[int]*Message `json:"messages"`

	// Channel-only fields.
	IsPublic bool     `json:"is_public,omitempty"`
	Standup  *Standup `json:"standup,omitempty"`
}

// HasMember reports whether userID is a member.
func (l *Location) HasMember(userID int) bool {
	for _, id := range l.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasOwner reports whether userID holds the owner role.
func (l *Location) HasOwner(userID int) bool {
	for _, id := range l.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// AddMember appends userID to the roster, as owner when role is
// RoleOwner.
func (l *Location) AddMember(userID int, role Role) {
	l.MemberIDs = append(l.MemberIDs, userID)
	if role == RoleOwner {
		l.OwnerIDs = append(l.OwnerIDs, userID)
	}
}

// RemoveMember drops userID from both rosters.
func (l *Location) RemoveMember(userID int) {
	l.MemberIDs = removeID(l.MemberIDs, userID)
	l.OwnerIDs = removeID(l.OwnerIDs, userID)
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
