package models

// Account is the local record of an account living on exactly one VPNProxy.
// IDOnServer is only meaningful in the namespace of that server.
type Account struct {
	ID         int64   `json:"id"`
	ChatID     string  `json:"chatId"`
	IDOnServer string  `json:"idOnServer"`
	ServerName string  `json:"serverName"`
	ServerID   int64   `json:"serverId"`
	UserID     *int64  `json:"userId,omitempty"`
	Country    Country `json:"country"`
	Status     Status  `json:"status"`
}

// IsDeleted reports whether the account reached its terminal state
func (a *Account) IsDeleted() bool {
	return a.Status == StatusDeleted
}
