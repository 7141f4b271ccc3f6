package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"streams-service/internal/apperr"
	"streams-service/internal/models"
)

func TestDMCreateNameIsSortedHandles(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Zoe", "Young")
	bob := f.register(t, "bob@example.com", "Bob", "Jones")

	dm, err := f.svc.DMCreate(alice, []int{bob})
	require.NoError(t, err)

	details, err := f.svc.DMDetails(alice, dm)
	require.NoError(t, err)
	require.Equal(t, "bobjones, zoeyoung", details.Name)
	require.Len(t, details.Members, 2)
}

func TestDMCreateRejectsBadMemberLists(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")
	bob := f.register(t, "bob@example.com", "Bob", "Jones")

	_, err := f.svc.DMCreate(alice, []int{999})
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.DMCreate(alice, []int{bob, bob})
	require.True(t, apperr.IsInput(err))
}

func TestDMCreateNotifiesInvitedMembers(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")
	bob := f.register(t, "bob@example.com", "Bob", "Jones")

	dm, err := f.svc.DMCreate(alice, []int{bob})
	require.NoError(t, err)

	require.Empty(t, f.svc.Notifications(alice))
	notifs := f.svc.Notifications(bob)
	require.Len(t, notifs, 1)
	require.Equal(t, "alicesmith added you to alicesmith, bobjones", notifs[0].Message)
	require.Equal(t, dm, notifs[0].DMID)
	require.Equal(t, -1, notifs[0].ChannelID)
}

func TestDMLeaveOwnerMakesDMOwnerless(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")
	bob := f.register(t, "bob@example.com", "Bob", "Jones")

	dm, err := f.svc.DMCreate(alice, []int{bob})
	require.NoError(t, err)

	require.NoError(t, f.svc.DMLeave(alice, dm))
	require.Empty(t, f.store.State.DMs[dm].OwnerIDs)

	// The dm stays usable for the remaining member.
	_, err = f.svc.Send(bob, models.LocationDM, dm, "still here")
	require.NoError(t, err)
}

func TestDMLeaveErrors(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")
	carol := f.register(t, "carol@example.com", "Carol", "White")

	dm, err := f.svc.DMCreate(alice, nil)
	require.NoError(t, err)

	require.True(t, apperr.IsInput(f.svc.DMLeave(alice, 999)))
	require.True(t, apperr.IsAccess(f.svc.DMLeave(carol, dm)))
}

func TestDMRemove(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")
	bob := f.register(t, "bob@example.com", "Bob", "Jones")

	dm, err := f.svc.DMCreate(alice, []int{bob})
	require.NoError(t, err)
	msgID, err := f.svc.Send(alice, models.LocationDM, dm, "hello")
	require.NoError(t, err)

	require.True(t, apperr.IsAccess(f.svc.DMRemove(bob, dm)))
	require.NoError(t, f.svc.DMRemove(alice, dm))

	_, err = f.svc.DMDetails(alice, dm)
	require.True(t, apperr.IsInput(err))
	require.NotContains(t, f.store.State.Messages, msgID)
	require.NotContains(t, f.store.FindUser(bob).DMs, dm)
}

func TestDMList(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice@example.com", "Alice", "Smith")
	bob := f.register(t, "bob@example.com", "Bob", "Jones")
	carol := f.register(t, "carol@example.com", "Carol", "White")

	first, err := f.svc.DMCreate(alice, []int{bob})
	require.NoError(t, err)
	_, err = f.svc.DMCreate(bob, []int{carol})
	require.NoError(t, err)

	mine := f.svc.DMList(alice)
	require.Len(t, mine, 1)
	require.Equal(t, first, mine[0].ID)
	require.Len(t, f.svc.DMList(bob), 2)
}
