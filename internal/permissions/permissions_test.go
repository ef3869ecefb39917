package permissions

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
)

type fakeDirectory map[string]models.Status

func (f fakeDirectory) FindByChatID(_ context.Context, chatID string) (*models.User, error) {
	status, ok := f[chatID]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "user", Key: chatID}
	}
	return &models.User{ChatID: chatID, Status: status}, nil
}

func TestGetAccessType(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := fakeDirectory{"2": models.StatusActive, "3": models.StatusDisactive}
	controller := NewController([]int64{1}, users, logger)
	ctx := context.Background()

	assert.Equal(t, Admin, controller.GetAccessType(ctx, 1))
	assert.Equal(t, Member, controller.GetAccessType(ctx, 2))
	assert.Equal(t, None, controller.GetAccessType(ctx, 3))
	assert.Equal(t, None, controller.GetAccessType(ctx, 4))
	assert.Equal(t, "member", Member.String())
}

func TestTokenAuthorizer(t *testing.T) {
	auth := NewTokenAuthorizer("secret")

	assert.True(t, auth.Authorize("Bearer secret"))
	assert.False(t, auth.Authorize("Bearer wrong"))
	assert.False(t, auth.Authorize("secret"))
	assert.False(t, auth.Authorize(""))

	assert.False(t, NewTokenAuthorizer("").Authorize("Bearer "))
}
