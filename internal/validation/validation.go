package validation

import (
	"fmt"
	"net/url"
	"strconv"

	"vpn-bus-api/internal/constants"
	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
)

// ValidateConfigName validates a config profile name. Names end up as a
// path segment of the remote API, so only a safe character set is allowed.
func ValidateConfigName(name string) error {
	if len(name) < constants.MinConfigNameLength || len(name) > constants.MaxConfigNameLength {
		msg := fmt.Sprintf("must be between %d and %d characters",
			constants.MinConfigNameLength, constants.MaxConfigNameLength)
		return &apperrors.ValidationError{Field: "name", Message: msg}
	}

	for _, r := range name {
		if !isValidConfigNameChar(r) {
			return &apperrors.ValidationError{Field: "name", Message: "can only contain letters, numbers, '-', '_' and '.'"}
		}
	}

	if name == "." || name == ".." {
		return &apperrors.ValidationError{Field: "name", Message: "is reserved"}
	}

	return nil
}

// ValidateChatID validates a chat identifier
func ValidateChatID(chatID string) error {
	if chatID == "" {
		return &apperrors.ValidationError{Field: "chatId", Message: "is required"}
	}
	if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
		return &apperrors.ValidationError{Field: "chatId", Message: "must be numeric"}
	}
	return nil
}

// ValidateServer validates a server record before it is stored
func ValidateServer(server *models.VPNProxy) error {
	u, err := url.Parse(server.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &apperrors.ValidationError{Field: "url", Message: "must be an absolute http(s) URL"}
	}
	if server.Country != "" && !server.Country.IsValid() {
		return &apperrors.ValidationError{Field: "country", Message: fmt.Sprintf("unknown country %q", server.Country)}
	}
	if server.Status != "" && !server.Status.IsValid() {
		return &apperrors.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", server.Status)}
	}
	if server.MaxConnection < 0 {
		return &apperrors.ValidationError{Field: "maxConnection", Message: "must not be negative"}
	}
	return nil
}

// ValidateStatus validates an optional status value
func ValidateStatus(status models.Status) error {
	if status != "" && !status.IsValid() {
		return &apperrors.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	return nil
}

// isValidConfigNameChar checks if a character is valid for config names
func isValidConfigNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '-' || r == '.'
}
