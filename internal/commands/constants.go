package commands

// TelegramCommands contains all commands for the Telegram bot
const (
	// Main commands
	Start  = "/start"
	Cancel = "Cancel"

	// Navigation commands
	ReturnToMainMenu = "Return to Main Menu"

	// Member commands
	Servers      = "Servers"
	MyConfigs    = "My Configs"
	NewConfig    = "New Config"
	GetConfig    = "Get Config"
	DeleteConfig = "Delete Config"

	// Administrator commands
	ServersOverview = "Servers Overview"
)
