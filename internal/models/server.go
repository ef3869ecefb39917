package models

// VPNProxy is a remote VPN provisioning backend with its own HTTP API
type VPNProxy struct {
	ID            int64   `json:"id"`
	URL           string  `json:"url"`
	Token         string  `json:"token"`
	Country       Country `json:"country"`
	MaxConnection int     `json:"maxConnection"`
	Status        Status  `json:"status"`
}
