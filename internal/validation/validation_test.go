package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"vpn-bus-api/internal/models"
)

func TestValidateConfigName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "home", false},
		{"with symbols", "phone-2_work.v1", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"max length", strings.Repeat("a", 64), false},
		{"slash", "a/b", true},
		{"space", "my config", true},
		{"dot dot", "..", true},
		{"cyrillic", "дом", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateChatID(t *testing.T) {
	assert.NoError(t, ValidateChatID("123456789"))
	assert.NoError(t, ValidateChatID("-100200"))
	assert.Error(t, ValidateChatID(""))
	assert.Error(t, ValidateChatID("abc"))
}

func TestValidateServer(t *testing.T) {
	valid := &models.VPNProxy{URL: "https://vpn.example:8443", Country: "NL", Status: models.StatusActive}
	assert.NoError(t, ValidateServer(valid))

	assert.Error(t, ValidateServer(&models.VPNProxy{URL: "vpn.example"}))
	assert.Error(t, ValidateServer(&models.VPNProxy{URL: "https://vpn.example", Country: "XX"}))
	assert.Error(t, ValidateServer(&models.VPNProxy{URL: "https://vpn.example", Status: "BROKEN"}))
	assert.Error(t, ValidateServer(&models.VPNProxy{URL: "https://vpn.example", MaxConnection: -1}))
}

func TestValidateStatus(t *testing.T) {
	assert.NoError(t, ValidateStatus(""))
	assert.NoError(t, ValidateStatus(models.StatusDeleted))
	assert.Error(t, ValidateStatus("UNKNOWN"))
}
