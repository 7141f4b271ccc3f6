package models

// Notification is one entry in a user's notification log. Exactly one
// of ChannelID and DMID refers to a location; the other is -1. The
// message text is rendered once at creation and never changes.
type Notification struct {
	ChannelID int    `json:"channel_id"`
	DMID      int    `json:"dm_id"`
	Message   string `json:"notification_message"`
}

// NewNotification builds a notification pointing at the given location.
func NewNotification(locType LocationType, locID int, message string) Notification {
	n := Notification{ChannelID: -1, DMID: -1, Message: message}
	if locType == LocationChannel {
		n.ChannelID = locID
	} else {
		n.DMID = locID
	}
	return n
}
