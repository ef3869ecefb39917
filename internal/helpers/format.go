package helpers

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/services"
)

// ConfigFileExtension is appended to config names when sending them as documents
const ConfigFileExtension = ".conf"

// ServerHost returns the host part of a server URL, or the URL itself
func ServerHost(server models.VPNProxy) string {
	if u, err := url.Parse(server.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return server.URL
}

// ServerLabel builds the keyboard label of a server
// e.g. "#3 NL vpn.example.com"
func ServerLabel(server models.VPNProxy) string {
	return fmt.Sprintf("#%d %s %s", server.ID, server.Country, ServerHost(server))
}

// ParseServerLabel extracts the server id from a label built by ServerLabel
func ParseServerLabel(label string) (int64, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "#") {
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(fields[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ConfigFileName returns the document name used for a config file
func ConfigFileName(name string) string {
	return name + ConfigFileExtension
}

// FormatConfigList renders the configs of an account as an HTML message
func FormatConfigList(account models.Account, configs []models.Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Configs on %s</b>\n\n", html.EscapeString(account.ServerName))

	if len(configs) == 0 {
		sb.WriteString("No configs yet. Use \"New Config\" to create one.")
		return sb.String()
	}

	for i, config := range configs {
		fmt.Fprintf(&sb, "%d. <code>%s</code>\n", i+1, html.EscapeString(config.Name))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatOverview renders the server overview as an HTML message
func FormatOverview(overview []services.ServerOverview) string {
	if len(overview) == 0 {
		return "No servers registered."
	}

	var sb strings.Builder
	sb.WriteString("<b>Servers Overview</b>\n")
	for _, item := range overview {
		fmt.Fprintf(&sb, "\n<b>#%d %s</b> %s\n", item.Server.ID, item.Server.Country, html.EscapeString(ServerHost(item.Server)))
		fmt.Fprintf(&sb, "Status: %s\n", item.Server.Status)
		fmt.Fprintf(&sb, "Accounts: %d (active %d, deleted %d)", item.Accounts, item.Active, item.Deleted)
		if item.Server.MaxConnection > 0 {
			fmt.Fprintf(&sb, "\nCapacity: %d/%d", item.Active, item.Server.MaxConnection)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// UserMessage turns a service error into a message suitable for a chat user
func UserMessage(err error) string {
	var (
		validationErr *apperrors.ValidationError
		conflictErr   *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		return html.EscapeString(validationErr.Message)
	case apperrors.IsNotFound(err):
		return "Nothing found. Check the name and try again."
	case errors.As(err, &conflictErr):
		return "Not possible: " + html.EscapeString(conflictErr.Reason)
	case apperrors.IsRemote(err):
		return "The VPN server did not respond properly. Please try again later."
	default:
		return "An error occurred. Please try again later."
	}
}
