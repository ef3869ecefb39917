package models

// ConversationState represents the state of a conversation with a chat user
type ConversationState int

const (
	// Default is the initial state
	Default ConversationState = iota
	// AwaitSelectServer is the state when the user is picking a server
	AwaitSelectServer
	// AwaitNewConfigName is the state when the user is typing a name for a new config
	AwaitNewConfigName
	// AwaitConfigName is the state when the user is typing the name of a config to download
	AwaitConfigName
	// AwaitDeleteConfigName is the state when the user is typing the name of a config to delete
	AwaitDeleteConfigName
)

// UserState represents the state of a user's conversation
type UserState struct {
	State           ConversationState
	SelectedAccount *int64
}
