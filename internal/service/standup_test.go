package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"streams-service/internal/apperr"
	"streams-service/internal/models"
)

func TestStandupLifecycle(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	alice, bob := ids[0], ids[1]

	finish, err := f.svc.StandupStart(alice, ch, 60)
	require.NoError(t, err)
	require.Equal(t, f.clock+60, finish)

	active, activeFinish, err := f.svc.StandupActive(alice, ch)
	require.NoError(t, err)
	require.True(t, active)
	require.Equal(t, finish, activeFinish)

	require.NoError(t, f.svc.StandupSend(alice, ch, "did the thing"))
	require.NoError(t, f.svc.StandupSend(bob, ch, "reviewed it"))

	f.clock += 60
	f.fireTimers()

	active, _, err = f.svc.StandupActive(alice, ch)
	require.NoError(t, err)
	require.False(t, active)

	page, err := f.svc.Messages(alice, models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	require.Equal(t, "alicetest: did the thing\nbobtest: reviewed it", page.Messages[0].Body)
	require.Equal(t, alice, page.Messages[0].AuthorID)
}

func TestStandupStartValidation(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	outsider := f.register(t, "outsider@example.com", "Out", "Sider")

	_, err := f.svc.StandupStart(ids[0], 999, 60)
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.StandupStart(ids[0], ch, -1)
	require.True(t, apperr.IsInput(err))
	_, err = f.svc.StandupStart(outsider, ch, 60)
	require.True(t, apperr.IsAccess(err))

	_, err = f.svc.StandupStart(ids[0], ch, 60)
	require.NoError(t, err)
	_, err = f.svc.StandupStart(ids[0], ch, 60)
	require.True(t, apperr.IsInput(err))
}

func TestStandupSendValidation(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")
	outsider := f.register(t, "outsider@example.com", "Out", "Sider")

	require.True(t, apperr.IsInput(f.svc.StandupSend(ids[0], ch, "no standup yet")))

	_, err := f.svc.StandupStart(ids[0], ch, 60)
	require.NoError(t, err)

	require.True(t, apperr.IsInput(f.svc.StandupSend(ids[0], ch, strings.Repeat("x", 1001))))
	require.True(t, apperr.IsAccess(f.svc.StandupSend(outsider, ch, "hi")))
}

func TestStandupEmptyQueueSendsNothing(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	_, err := f.svc.StandupStart(ids[0], ch, 10)
	require.NoError(t, err)
	f.clock += 10
	f.fireTimers()

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)
}

func TestStandupSummaryIsOversizeExempt(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice")

	_, err := f.svc.StandupStart(ids[0], ch, 10)
	require.NoError(t, err)
	require.NoError(t, f.svc.StandupSend(ids[0], ch, strings.Repeat("a", 1000)))
	require.NoError(t, f.svc.StandupSend(ids[0], ch, strings.Repeat("b", 1000)))

	f.clock += 10
	f.fireTimers()

	page, err := f.svc.Messages(ids[0], models.LocationChannel, ch, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	require.Greater(t, len(page.Messages[0].Body), 1000)
}

func TestStandupSummaryTagsMentions(t *testing.T) {
	f := newFixture()
	ch, ids := channelWith(t, f, "alice", "bob")
	bob := ids[1]

	_, err := f.svc.StandupStart(ids[0], ch, 10)
	require.NoError(t, err)
	require.NoError(t, f.svc.StandupSend(ids[0], ch, "ping @bobtest"))

	f.clock += 10
	f.fireTimers()

	// The summary goes through the ordinary send path, so the mention
	// inside it still tags bob.
	require.Len(t, f.svc.Notifications(bob), 1)
}
