package models

// Config is a named client profile existing only on the remote server.
// Values are built from a single remote listing and never stored.
type Config struct {
	Name       string `json:"name"`
	IDOnServer string `json:"idOnServer"`
	AccountID  int64  `json:"accountId"`
}

// RemoteConfig is one record of the remote config listing
type RemoteConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
