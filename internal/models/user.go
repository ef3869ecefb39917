package models

// User is a chat identity owning an ordered collection of accounts
type User struct {
	ID       int64     `json:"id"`
	ChatID   string    `json:"chatId"`
	UserName string    `json:"userName"`
	Status   Status    `json:"status"`
	Accounts []Account `json:"accounts"`
}

// AccountOnServer returns the first non-deleted account the user owns on
// the given server
func (u *User) AccountOnServer(serverID int64) (*Account, bool) {
	for i := range u.Accounts {
		account := &u.Accounts[i]
		if account.ServerID == serverID && !account.IsDeleted() {
			return account, true
		}
	}
	return nil, false
}
