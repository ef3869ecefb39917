package constants

const (
	// Config name validation constants
	MinConfigNameLength = 1
	MaxConfigNameLength = 64

	// Network constants
	DefaultTimeout  = 30 // seconds
	MaxResponseSize = 4 << 20

	// Correlation constants
	RequestIDHeader      = "requestID"
	RequestIDPlaceholder = "no requestId"

	// Cache constants
	CacheExpiration      = 30 // minutes
	CacheCleanupInterval = 10 // minutes

	// Storage constants
	DefaultDBDriver = "sqlite"
	DefaultDBDSN    = "busapi.db"

	// HTTP constants
	DefaultHTTPAddr = ":8080"

	// QR constants
	QRCodeSize = 256
)

// Browser-like headers the remote VPN panels expect on every request
const (
	RemoteUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0"
	RemoteAccept         = "*/*"
	RemoteAcceptLanguage = "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3"
	RemoteContentType    = "application/json"
)

// Remote API path templates, relative to the server base URL
const (
	AccountPath        = "/api/account/%s"
	AccountBlockPath   = "/api/account/block/%s"
	AccountUnblockPath = "/api/account/unblock/%s"
	AccountRestartPath = "/api/account/restart/%s"
	ConfigListPath     = "/api/user/%s"
	ConfigNamePath     = "/api/user/%s/%s"
	ConfigRenamePath   = "/api/user/%s/%s/%s"
	ConfigFilePath     = "/api/user/config/%s/%s"
)
