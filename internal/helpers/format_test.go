package helpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "vpn-bus-api/internal/errors"
	"vpn-bus-api/internal/models"
	"vpn-bus-api/internal/services"
)

func TestServerLabelRoundTrip(t *testing.T) {
	server := models.VPNProxy{ID: 7, URL: "https://nl-1.example.com:8443", Country: "NL"}

	label := ServerLabel(server)
	assert.Equal(t, "#7 NL nl-1.example.com:8443", label)

	id, ok := ParseServerLabel(label)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestParseServerLabel_Rejects(t *testing.T) {
	for _, label := range []string{"", "Servers", "#", "#abc NL", "#0 NL", "#-3 NL", "7 NL"} {
		_, ok := ParseServerLabel(label)
		assert.False(t, ok, label)
	}
}

func TestServerHost_FallsBackToURL(t *testing.T) {
	assert.Equal(t, "not a url", ServerHost(models.VPNProxy{URL: "not a url"}))
}

func TestFormatConfigList(t *testing.T) {
	account := models.Account{ServerName: "a<b>"}

	empty := FormatConfigList(account, nil)
	assert.Contains(t, empty, "a&lt;b&gt;")
	assert.Contains(t, empty, "No configs yet")

	list := FormatConfigList(account, []models.Config{{Name: "home"}, {Name: "work"}})
	assert.Contains(t, list, "1. <code>home</code>\n2. <code>work</code>")
}

func TestFormatOverview(t *testing.T) {
	assert.Equal(t, "No servers registered.", FormatOverview(nil))

	text := FormatOverview([]services.ServerOverview{{
		Server:   models.VPNProxy{ID: 1, URL: "https://vpn.example.com", Country: "DE", Status: models.StatusActive, MaxConnection: 10},
		Accounts: 4,
		Active:   3,
		Deleted:  1,
	}})

	assert.Contains(t, text, "#1 DE")
	assert.Contains(t, text, "vpn.example.com")
	assert.Contains(t, text, "Status: ACTIVE")
	assert.Contains(t, text, "Accounts: 4 (active 3, deleted 1)")
	assert.Contains(t, text, "Capacity: 3/10")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "bad &lt;name&gt;", UserMessage(&apperrors.ValidationError{Field: "name", Message: "bad <name>"}))
	assert.Contains(t, UserMessage(&apperrors.NotFoundError{Entity: "config", Key: "x"}), "Nothing found")
	assert.Equal(t, "Not possible: already exists", UserMessage(fmt.Errorf("wrapped: %w", &apperrors.ConflictError{Entity: "config", Key: "x", Reason: "already exists"})))
	assert.Contains(t, UserMessage(&apperrors.RemoteAPIError{Status: 500}), "VPN server")
	assert.Contains(t, UserMessage(fmt.Errorf("boom")), "An error occurred")
}

func TestConfigFileName(t *testing.T) {
	assert.Equal(t, "home.conf", ConfigFileName("home"))
}
