package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/constants"
	"vpn-bus-api/internal/models"
)

// UserStateService keeps the conversation state of chat users
type UserStateService struct {
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewUserStateService creates a new user state service
func NewUserStateService(logger *logrus.Logger) *UserStateService {
	return &UserStateService{
		cache:  cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger: logger,
	}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("user_state_%d", userID)
}

// GetState gets a user's state; unknown users are in the default state
func (s *UserStateService) GetState(userID int64) models.UserState {
	if data, found := s.cache.Get(stateKey(userID)); found {
		if state, ok := data.(models.UserState); ok {
			return state
		}
		s.logger.Warnf("Dropping state of unexpected type for user %d", userID)
		s.cache.Delete(stateKey(userID))
	}
	return models.UserState{State: models.Default}
}

// SetState sets a user's state and refreshes its expiry
func (s *UserStateService) SetState(userID int64, state models.UserState) {
	s.cache.Set(stateKey(userID), state, cache.DefaultExpiration)
	s.logger.Debugf("Set state for user %d: %+v", userID, state)
}

// ClearState resets a user to the default state
func (s *UserStateService) ClearState(userID int64) {
	s.cache.Delete(stateKey(userID))
	s.logger.Debugf("Cleared state for user %d", userID)
}

// WithSelectedAccount remembers the account the user works with
func (s *UserStateService) WithSelectedAccount(userID, accountID int64) {
	state := s.GetState(userID)
	state.SelectedAccount = &accountID
	s.SetState(userID, state)
}

// WithConversationState updates a user's conversation state and keeps the
// selected account
func (s *UserStateService) WithConversationState(userID int64, conversationState models.ConversationState) {
	state := s.GetState(userID)
	state.State = conversationState
	s.SetState(userID, state)
}
