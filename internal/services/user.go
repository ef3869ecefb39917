package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"vpn-bus-api/internal/correlation"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/validation"
)

// UserService manages chat users and the accounts they own
type UserService struct {
	users  UserStore
	logger *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserStore, logger *logrus.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// FindAll returns every user with their accounts
func (s *UserService) FindAll(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "user", "", "list users")
	}
	correlation.Entry(ctx, s.logger).Infof("Loaded %d users", len(users))
	return users, nil
}

// FindByID returns the user with the given id
func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", idKey(id), "get user")
	}
	return user, nil
}

// FindByChatID returns the user with the given chat id
func (s *UserService) FindByChatID(ctx context.Context, chatID string) (*models.User, error) {
	user, err := s.users.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, storeError(err, "user", chatID, "get user")
	}
	return user, nil
}

// Save stores a new user; the chat id must be unused
func (s *UserService) Save(ctx context.Context, user *models.User) (*models.User, error) {
	log := correlation.Entry(ctx, s.logger)

	if err := validation.ValidateChatID(user.ChatID); err != nil {
		log.Warnf("Rejected user: %v", err)
		return nil, err
	}
	if err := validation.ValidateStatus(user.Status); err != nil {
		log.Warnf("Rejected user: %v", err)
		return nil, err
	}

	if _, err := s.FindByChatID(ctx, user.ChatID); err == nil {
		log.Warnf("User with chat id %s already exists", user.ChatID)
		return nil, &apperrors.ConflictError{Entity: "user", Key: user.ChatID, Reason: "chat id already registered"}
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	created := models.User{
		ChatID:   user.ChatID,
		UserName: user.UserName,
		Status:   user.Status,
		Accounts: []models.Account{},
	}
	if created.Status == "" {
		created.Status = models.StatusActive
	}

	if err := s.users.Insert(ctx, &created); err != nil {
		log.Errorf("Failed to save user %s: %v", user.ChatID, err)
		return nil, storeError(err, "user", user.ChatID, "save user")
	}

	log.Infof("User %d saved (chat id %s)", created.ID, created.ChatID)
	return &created, nil
}

// Register returns the user for the chat id, creating it on first contact
func (s *UserService) Register(ctx context.Context, chatID, userName string) (*models.User, bool, error) {
	user, err := s.FindByChatID(ctx, chatID)
	if err == nil {
		return user, false, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, false, err
	}

	user, err = s.Save(ctx, &models.User{ChatID: chatID, UserName: userName})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Update changes the name, chat id and status of a user
func (s *UserService) Update(ctx context.Context, id int64, details *models.User) (*models.User, error) {
	log := correlation.Entry(ctx, s.logger)

	existing, err := s.FindByID(ctx, id)
	if err != nil {
		log.Warnf("User %d not found for update", id)
		return nil, err
	}

	if details.ChatID != "" && details.ChatID != existing.ChatID {
		if err := validation.ValidateChatID(details.ChatID); err != nil {
			return nil, err
		}
		if _, err := s.FindByChatID(ctx, details.ChatID); err == nil {
			return nil, &apperrors.ConflictError{Entity: "user", Key: details.ChatID, Reason: "chat id already registered"}
		}
		existing.ChatID = details.ChatID
	}
	if err := validation.ValidateStatus(details.Status); err != nil {
		return nil, err
	}
	if details.Status != "" {
		existing.Status = details.Status
	}
	existing.UserName = details.UserName

	if err := s.users.Update(ctx, existing); err != nil {
		log.Errorf("Failed to update user %d: %v", id, err)
		return nil, storeError(err, "user", idKey(id), "update user")
	}

	log.Infof("User %d updated", id)
	return existing, nil
}

// DeleteByID removes a user; its accounts stay and lose their owner
func (s *UserService) DeleteByID(ctx context.Context, id int64) error {
	log := correlation.Entry(ctx, s.logger)

	if err := s.users.Delete(ctx, id); err != nil {
		err = storeError(err, "user", idKey(id), "delete user")
		if apperrors.IsNotFound(err) {
			log.Warnf("User %d not found for deletion", id)
		} else {
			log.Errorf("Failed to delete user %d: %v", id, err)
		}
		return err
	}

	log.Infof("User %d deleted", id)
	return nil
}
