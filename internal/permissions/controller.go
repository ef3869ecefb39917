package permissions

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/models"
)

// AccessType represents the access level of a chat user
type AccessType int

const (
	// None represents an unregistered chat user
	None AccessType = iota
	// Admin represents admin access
	Admin
	// Member represents a registered, active user
	Member
)

// String returns the access type name
func (a AccessType) String() string {
	switch a {
	case Admin:
		return "admin"
	case Member:
		return "member"
	default:
		return "none"
	}
}

// UserDirectory looks up registered users by chat id
type UserDirectory interface {
	FindByChatID(ctx context.Context, chatID string) (*models.User, error)
}

// PermissionController manages chat user permissions
type PermissionController struct {
	adminIDs map[int64]bool
	users    UserDirectory
	logger   *logrus.Logger
}

// NewController creates a new permission controller
func NewController(adminIDs []int64, users UserDirectory, logger *logrus.Logger) *PermissionController {
	adminIDMap := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		adminIDMap[id] = true
	}

	logger.Infof("Initialized permission controller with %d admins", len(adminIDs))

	return &PermissionController{
		adminIDs: adminIDMap,
		users:    users,
		logger:   logger,
	}
}

// GetAccessType determines the access type of a chat user
func (p *PermissionController) GetAccessType(ctx context.Context, userID int64) AccessType {
	if p.IsAdmin(userID) {
		return Admin
	}

	if p.IsMember(ctx, userID) {
		return Member
	}

	return None
}

// IsAdmin checks if a user is an admin
func (p *PermissionController) IsAdmin(userID int64) bool {
	isAdmin := p.adminIDs[userID]
	p.logger.Debugf("Checking if user %d is admin: %v", userID, isAdmin)
	return isAdmin
}

// IsMember checks if a user is registered and active
func (p *PermissionController) IsMember(ctx context.Context, userID int64) bool {
	if p.users == nil {
		return false
	}
	user, err := p.users.FindByChatID(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		p.logger.Debugf("User %d is not a member: %v", userID, err)
		return false
	}
	return user.Status == models.StatusActive
}
