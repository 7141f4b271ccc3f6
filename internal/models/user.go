package models

// Permission is a user's platform-wide permission level.
type Permission int

const (
	PermOwner  Permission = 1
	PermMember Permission = 2
)

// Role is a user's role inside a single channel or DM.
type Role int

const (
	RoleOwner  Role = 1
	RoleMember Role = 2
)

// StatPoint is one entry in a counter history.
type StatPoint struct {
	Value     int   `json:"value"`
	Timestamp int64 `json:"time_stamp"`
}

// AppendPoint extends a counter history by delta relative to its last
// value.
func AppendPoint(history []StatPoint, delta int, now int64) []StatPoint {
	last := 0
	if n := len(history); n > 0 {
		last = history[n-1].Value
	}
	return append(history, StatPoint{Value: last + delta, Timestamp: now})
}

// UserStats is a user's activity history.
type UserStats struct {
	ChannelsJoined []StatPoint `json:"channels_joined"`
	DMsJoined      []StatPoint `json:"dms_joined"`
	MessagesSent   []StatPoint `json:"messages_sent"`
}

// User is the canonical user record. The store owns it; locations refer
// to users by id only.
type User struct {
	ID           int        `json:"u_id"`
	Email        string     `json:"email"`
	PasswordHash []byte     `json:"password_hash"`
	NameFirst    string     `json:"name_first"`
	NameLast     string     `json:"name_last"`
	Handle       string     `json:"handle_str"`
	Perm         Permission `json:"permission"`

	// Channels and DMs map a location id to this user's role in it.
	Channels map[int]Role `json:"channels"`
	DMs      map[int]Role `json:"dms"`

	// SentMessages holds the ids of messages this user authored. It
	// backs the edit/delete authorization check.
	SentMessages map[int]bool `json:"sent_messages"`

	// Notifications is most-recent-first; only the newest 20 are ever
	// surfaced.
	Notifications []Notification `json:"notifications"`

	Stats UserStats `json:"stats"`
}

// Profile is the public view of a user.
type Profile struct {
	ID        int    `json:"u_id"`
	Email     string `json:"email"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
	Handle    string `json:"handle_str"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		NameFirst: u.NameFirst,
		NameLast:  u.NameLast,
		Handle:    u.Handle,
	}
}
