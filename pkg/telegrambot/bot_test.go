package telegrambot

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"vpn-bus-api/internal/config"
	"vpn-bus-api/internal/correlation"
	"vpn-bus-api/internal/handlers"
	"vpn-bus-api/internal/permissions"
)

type fakeContext struct {
	telebot.Context
	sender *telebot.User
	sent   []any
}

func (c *fakeContext) Sender() *telebot.User { return c.sender }
func (c *fakeContext) Text() string          { return "/start" }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

type staticAccess map[int64]permissions.AccessType

func (s staticAccess) GetAccessType(ctx context.Context, userID int64) permissions.AccessType {
	return s[userID]
}

type recordingHandler struct {
	accessType permissions.AccessType
	contexts   []context.Context
}

func (h *recordingHandler) Handle(ctx context.Context, c telebot.Context) error {
	h.contexts = append(h.contexts, ctx)
	return nil
}

func (h *recordingHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == h.accessType
}

func newTestBot(access staticAccess) (*Bot, map[permissions.AccessType]*recordingHandler) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bot := newBot(nil, &config.Config{}, handlers.NewHandlerFactory(handlers.Dependencies{}, logger), access, logger)

	recorders := map[permissions.AccessType]*recordingHandler{}
	for _, accessType := range []permissions.AccessType{permissions.Admin, permissions.Member, permissions.None} {
		recorder := &recordingHandler{accessType: accessType}
		recorders[accessType] = recorder
		bot.handlers[accessType] = recorder
	}
	return bot, recorders
}

func TestNewBot_CreatesHandlerPerAccessType(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	bot := newBot(nil, &config.Config{}, handlers.NewHandlerFactory(handlers.Dependencies{}, logger), staticAccess{}, logger)

	require.Len(t, bot.handlers, 3)
	assert.True(t, bot.handlers[permissions.Admin].CanHandle(permissions.Admin))
	assert.True(t, bot.handlers[permissions.Member].CanHandle(permissions.Member))
	assert.True(t, bot.handlers[permissions.None].CanHandle(permissions.None))
}

func TestHandleUpdate_DispatchesByAccessType(t *testing.T) {
	bot, recorders := newTestBot(staticAccess{1: permissions.Admin, 2: permissions.Member})

	require.NoError(t, bot.handleUpdate(&fakeContext{sender: &telebot.User{ID: 1}}))
	require.NoError(t, bot.handleUpdate(&fakeContext{sender: &telebot.User{ID: 2}}))
	require.NoError(t, bot.handleUpdate(&fakeContext{sender: &telebot.User{ID: 3}}))

	assert.Len(t, recorders[permissions.Admin].contexts, 1)
	assert.Len(t, recorders[permissions.Member].contexts, 1)
	assert.Len(t, recorders[permissions.None].contexts, 1)
}

func TestHandleUpdate_FreshCorrelationIDPerUpdate(t *testing.T) {
	bot, recorders := newTestBot(staticAccess{1: permissions.Member})

	require.NoError(t, bot.handleUpdate(&fakeContext{sender: &telebot.User{ID: 1}}))
	require.NoError(t, bot.handleUpdate(&fakeContext{sender: &telebot.User{ID: 1}}))

	contexts := recorders[permissions.Member].contexts
	require.Len(t, contexts, 2)
	first, second := correlation.ID(contexts[0]), correlation.ID(contexts[1])
	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}

func TestHandleUpdate_MissingHandler(t *testing.T) {
	bot, _ := newTestBot(staticAccess{1: permissions.Member})
	delete(bot.handlers, permissions.Member)

	c := &fakeContext{sender: &telebot.User{ID: 1}}
	require.NoError(t, bot.handleUpdate(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "permission")
}

func TestHandleUpdate_IgnoresUpdatesWithoutSender(t *testing.T) {
	bot, recorders := newTestBot(staticAccess{})

	require.NoError(t, bot.handleUpdate(&fakeContext{}))
	assert.Empty(t, recorders[permissions.None].contexts)
}
