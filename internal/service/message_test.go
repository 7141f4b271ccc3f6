package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"streams-service/internal/apperr"
	"streams-service/internal/models"
)

// channelWith registers the named users and puts them all in one
// public channel created by the first.
func channelWith(t *testing.T, f *fixture, names ...string) (int, []int) {
	t.Helper()
	ids := make([]int, 0, len(names))
	for _, name := range names {
		first := strings.ToUpper(name[:1]) + name[1:]
		ids = append(ids, f.register(t, name+"@example.com", first, "Test"))
	}
	ch, err := f.svc.ChannelCreate(ids[0], "general", true)
	require.NoError(t, err)
	for _, id := range ids[1:] {
		require.NoError(t, f.svc.ChannelJoin(id, ch))
	}
	return ch, ids
}

func TestSendThenGetReturnsMessage(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	id, err := f.svc.Send(ids[0], models.LocationChannel, ch, "hello world")
	require.NoError(t, err)

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Equal(t, 0, page.Start)
	require.Equal(t, -1, page.End)
	require.Len(t, page.Messages, 1)
	require.Equal(t, id, page.Messages[0].ID)
	require.Equal(t, "hello world", page.Messages[0].Body)
	require.Equal(t, ids[0], page.Messages[0].AuthorID)
}

func TestSendValidation(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	outsider := f.register(t, "outsider@example.com", "Out", "Sider")

	_, err := f.svc.Send(ids[0], models.LocationChannel, 999, "hi")
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.Send(ids[0], models.LocationChannel, ch, "")
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.Send(ids[0], models.LocationChannel, ch, strings.Repeat("x", 1001))
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.Send(outsider, models.LocationChannel, ch, "hi")
	require.True(t, apperr.IsAccess(err))
}

func TestMessagesPagination(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	for i := 0; i < 55; i++ {
		f.clock++
		_, err := f.svc.Send(ids[0], models.LocationChannel, ch, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 50)
	require.Equal(t, 50, page.End)
	// Newest first.
	require.Equal(t, "msg 54", page.Messages[0].Body)

	page, err = f.svc.Messages(ids[0], models.LocationChannel, ch, 50)
	require.NoError(t, err)
	require.Len(t, page.Messages, 5)
	require.Equal(t, -1, page.End)
	require.Equal(t, "msg 0", page.Messages[4].Body)

	_, err = f.svc.Messages(ids[0], models.LocationChannel, ch, 56)
	require.True(t, apperr.IsInput(err))
}

func TestEditReplacesBody(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	id, err := f.svc.Send(ids[0], models.LocationChannel, ch, "before")
	require.NoError(t, err)
	require.NoError(t, f.svc.Edit(ids[0], id, "after"))

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Equal(t, "after", page.Messages[0].Body)
}

func TestEditToEmptyIsRemove(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	id, err := f.svc.Send(ids[0], models.LocationChannel, ch, "doomed")
	require.NoError(t, err)
	require.NoError(t, f.svc.Edit(ids[0], id, ""))

	require.True(t, apperr.IsInput(f.svc.Edit(ids[0], id, "resurrect")))
	require.True(t, apperr.IsInput(f.svc.Remove(ids[0], id)))
	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)
}

func TestEditAuthorization(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	id, err := f.svc.Send(bob, models.LocationChannel, ch, "bob's message")
	require.NoError(t, err)

	// carol neither authored it nor owns anything.
	require.True(t, apperr.IsAccess(f.svc.Edit(carol, id, "hijacked")))
	// The author may edit.
	require.NoError(t, f.svc.Edit(bob, id, "bob again"))
	// The channel owner may edit.
	require.NoError(t, f.svc.Edit(alice, id, "owner edit"))

	// A non-member's edit reads as a missing message, not as denied
	// access.
	outsider := f.register(t, "outsider@example.com", "Out", "Sider")
	require.True(t, apperr.IsInput(f.svc.Edit(outsider, id, "x")))
}

func TestRemoveUpdatesCountsAndIndex(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	id, err := f.svc.Send(ids[0], models.LocationChannel, ch, "hello")
	require.NoError(t, err)
	before := lastValue(f.store.State.Workspace.MessagesExist)

	require.NoError(t, f.svc.Remove(ids[0], id))

	require.NotContains(t, f.store.State.Messages, id)
	require.Equal(t, before-1, lastValue(f.store.State.Workspace.MessagesExist))
}

func TestReactRoundTrip(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	id, err := f.svc.Send(alice, models.LocationChannel, ch, "react to me")
	require.NoError(t, err)

	require.NoError(t, f.svc.React(bob, id, models.ReactThumbsUp))
	require.True(t, apperr.IsInput(f.svc.React(bob, id, models.ReactThumbsUp)))

	page, err := f.svc.Messages(bob, models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages[0].Reacts, 1)
	require.Equal(t, []int{bob}, page.Messages[0].Reacts[0].UserIDs)
	require.True(t, page.Messages[0].Reacts[0].IsThisUserReacted)

	require.NoError(t, f.svc.Unreact(bob, id, models.ReactThumbsUp))
	require.True(t, apperr.IsInput(f.svc.Unreact(bob, id, models.ReactThumbsUp)))

	page, err = f.svc.Messages(bob, models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages[0].Reacts[0].UserIDs)
	require.False(t, page.Messages[0].Reacts[0].IsThisUserReacted)
}

func TestReactRejectsUnknownReactKind(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	id, err := f.svc.Send(ids[0], models.LocationChannel, ch, "hello")
	require.NoError(t, err)
	require.True(t, apperr.IsInput(f.svc.React(ids[0], id, 2)))
	require.True(t, apperr.IsInput(f.svc.Unreact(ids[0], id, 2)))
}

func TestReactNotifiesAuthor(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	id, err := f.svc.Send(alice, models.LocationChannel, ch, "react to me")
	require.NoError(t, err)
	require.NoError(t, f.svc.React(bob, id, models.ReactThumbsUp))

	notifs := f.svc.Notifications(alice)
	require.Len(t, notifs, 1)
	require.Equal(t, "bobtest reacted to your message in general", notifs[0].Message)
}

func TestReactNotifiesAuthorAfterLeaving(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	id, err := f.svc.Send(bob, models.LocationChannel, ch, "parting words")
	require.NoError(t, err)
	require.NoError(t, f.svc.ChannelLeave(bob, ch))
	require.NoError(t, f.svc.React(alice, id, models.ReactThumbsUp))

	notifs := f.svc.Notifications(bob)
	require.Len(t, notifs, 1)
	require.Equal(t, "alicetest reacted to your message in general", notifs[0].Message)
}

func TestPinToggle(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	id, err := f.svc.Send(ids[0], models.LocationChannel, ch, "pin me")
	require.NoError(t, err)

	require.True(t, apperr.IsInput(f.svc.Unpin(ids[0], id)))
	require.NoError(t, f.svc.Pin(ids[0], id))
	require.True(t, apperr.IsInput(f.svc.Pin(ids[0], id)))

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.True(t, page.Messages[0].Pinned)

	require.NoError(t, f.svc.Unpin(ids[0], id))
	require.True(t, apperr.IsInput(f.svc.Unpin(ids[0], id)))
}

func TestTagNotification(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	_, err := f.svc.Send(alice, models.LocationChannel, ch, "hello @bobtest")
	require.NoError(t, err)

	notifs := f.svc.Notifications(bob)
	require.Len(t, notifs, 1)
	require.Equal(t, "alicetest tagged you in general: hello @bobtest", notifs[0].Message)
}

func TestTagRequiresMembership(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	bob := f.register(t, "bob@example.com", "Bob", "Test")

	_, err := f.svc.Send(ids[0], models.LocationChannel, ch, "hello @bobtest")
	require.NoError(t, err)
	require.Empty(t, f.svc.Notifications(bob))
}

func TestTagFiresOncePerHandle(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	bob := ids[1]

	_, err := f.svc.Send(ids[0], models.LocationChannel, ch, "@bobtest and again @bobtest")
	require.NoError(t, err)
	require.Len(t, f.svc.Notifications(bob), 1)
}

func TestEditNotifiesOnlyNewTags(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob", "carol")
	alice, bob, carol := ids[0], ids[1], ids[2]

	id, err := f.svc.Send(alice, models.LocationChannel, ch, "hi @bobtest")
	require.NoError(t, err)
	require.Len(t, f.svc.Notifications(bob), 1)

	require.NoError(t, f.svc.Edit(alice, id, "hi @bobtest and @caroltest"))
	require.Len(t, f.svc.Notifications(bob), 1)
	require.Len(t, f.svc.Notifications(carol), 1)
}

func TestReaddedMentionNotifiesAgain(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	id, err := f.svc.Send(alice, models.LocationChannel, ch, "hi @bobtest")
	require.NoError(t, err)
	require.NoError(t, f.svc.Edit(alice, id, "no mention"))
	require.NoError(t, f.svc.Edit(alice, id, "back again @bobtest"))

	require.Len(t, f.svc.Notifications(bob), 2)
}

func TestTagTruncatesPreviewToTwentyChars(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	bob := ids[1]

	_, err := f.svc.Send(ids[0], models.LocationChannel, ch, "@bobtest this is a very long message body")
	require.NoError(t, err)

	notifs := f.svc.Notifications(bob)
	require.Len(t, notifs, 1)
	require.Equal(t, "alicetest tagged you in general: @bobtest this is a v", notifs[0].Message)
}

func TestSendLaterDeliversOnTimer(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	id, err := f.svc.SendLater(alice, models.LocationChannel, ch, "future @bobtest", f.clock+2)
	require.NoError(t, err)
	require.Len(t, f.timers, 1)

	// Not delivered yet, and no tag notification either.
	page, err := f.svc.Messages(alice, models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)
	require.Empty(t, f.svc.Notifications(bob))

	f.clock += 2
	f.fireTimers()

	page, err = f.svc.Messages(alice, models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	require.Equal(t, id, page.Messages[0].ID)
	require.Len(t, f.svc.Notifications(bob), 1)
}

func TestSendLaterRejectsPastDeadline(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	_, err := f.svc.SendLater(ids[0], models.LocationChannel, ch, "late", f.clock-1)
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.SendLater(ids[0], models.LocationChannel, ch, "now", f.clock)
	require.True(t, apperr.IsInput(err))
}

func TestSendLaterChecksMembershipBeforeLength(t *testing.T) {
	f := newFixture()
	ch, _ := channelWith(t, f, "alice")
	outsider := f.register(t, "outsider@example.com", "Out", "Sider")

	_, err := f.svc.SendLater(outsider, models.LocationChannel, ch, strings.Repeat("x", 1001), f.clock+60)
	require.True(t, apperr.IsAccess(err))
}

func TestSendLaterIDIsReservedImmediately(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	scheduled, err := f.svc.SendLater(ids[0], models.LocationChannel, ch, "later", f.clock+10)
	require.NoError(t, err)
	direct, err := f.svc.Send(ids[0], models.LocationChannel, ch, "now")
	require.NoError(t, err)
	require.Greater(t, direct, scheduled)
}

func TestSendLaterDropsDeliveryWhenAuthorLeft(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	bob := ids[1]

	_, err := f.svc.SendLater(bob, models.LocationChannel, ch, "later", f.clock+2)
	require.NoError(t, err)
	require.NoError(t, f.svc.ChannelLeave(bob, ch))

	f.clock += 2
	f.fireTimers()

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)
}

func TestShare(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice := ids[0]

	dm, err := f.svc.DMCreate(alice, nil)
	require.NoError(t, err)
	og, err := f.svc.Send(alice, models.LocationChannel, ch, "original text")
	require.NoError(t, err)

	shared, err := f.svc.Share(alice, og, "my caption", -1, dm)
	require.NoError(t, err)

	page, err := f.svc.Messages(alice, models.LocationDM, dm, 0)
	require.NoError(t, err)
	require.Equal(t, shared, page.Messages[0].ID)
	require.Contains(t, page.Messages[0].Body, "original text")
	require.Contains(t, page.Messages[0].Body, "my caption")
}

func TestShareTargetMustBeExactlyOne(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	og, err := f.svc.Send(ids[0], models.LocationChannel, ch, "original")
	require.NoError(t, err)

	_, err = f.svc.Share(ids[0], og, "", -1, -1)
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.Share(ids[0], og, "", ch, 1)
	require.True(t, apperr.IsInput(err))
}

func TestShareChecksCaptionLengthOnly(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	alice := ids[0]

	og, err := f.svc.Send(alice, models.LocationChannel, ch, strings.Repeat("a", 1000))
	require.NoError(t, err)

	// The composite body exceeds 1000 chars but only the caption is
	// length-checked.
	_, err = f.svc.Share(alice, og, strings.Repeat("b", 1000), ch, -1)
	require.NoError(t, err)

	_, err = f.svc.Share(alice, og, strings.Repeat("b", 1001), ch, -1)
	require.True(t, apperr.IsInput(err))
}

func TestShareRequiresVisibilityOfOriginal(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	bob := f.register(t, "bob@example.com", "Bob", "Test")

	og, err := f.svc.Send(ids[0], models.LocationChannel, ch, "secret")
	require.NoError(t, err)

	own, err := f.svc.ChannelCreate(bob, "bobs", true)
	require.NoError(t, err)
	_, err = f.svc.Share(bob, og, "", own, -1)
	require.True(t, apperr.IsInput(err))
}

func TestShareRequiresTargetMembership(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	bob := ids[1]

	og, err := f.svc.Send(bob, models.LocationChannel, ch, "mine")
	require.NoError(t, err)

	other, err := f.svc.ChannelCreate(ids[0], "private", false)
	require.NoError(t, err)
	_, err = f.svc.Share(bob, og, "", other, -1)
	require.True(t, apperr.IsAccess(err))

	// Membership is checked before the caption length, so a non-member
	// with an oversize caption is denied access, not told the caption
	// is too long.
	_, err = f.svc.Share(bob, og, strings.Repeat("b", 1001), other, -1)
	require.True(t, apperr.IsAccess(err))
}

func TestSearch(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice := ids[0]

	_, err := f.svc.Send(alice, models.LocationChannel, ch, "needle in channel")
	require.NoError(t, err)
	dm, err := f.svc.DMCreate(alice, nil)
	require.NoError(t, err)
	_, err = f.svc.Send(alice, models.LocationDM, dm, "dm needle too")
	require.NoError(t, err)
	_, err = f.svc.Send(alice, models.LocationChannel, ch, "nothing here")
	require.NoError(t, err)

	views, err := f.svc.Search(alice, "needle")
	require.NoError(t, err)
	require.Len(t, views, 2)

	// bob is not in the dm, so only the channel message matches.
	views, err = f.svc.Search(ids[1], "needle")
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestSearchValidatesQuery(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")

	_, err := f.svc.Search(alice, "")
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.Search(alice, strings.Repeat("q", 1001))
	require.True(t, apperr.IsInput(err))
}
