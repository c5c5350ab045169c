package config

const (
	HCType          = "Content-Type"
	HCacheControl   = "Cache-Control"
	HAuthorization  = "Authorization"
	HContentDispose = "Content-Disposition"
	HETag           = "ETag"

	CTypeJSON        = "application/json"
	CTypeZip         = "application/zip"
	CTypeEventStream = "text/event-stream"
	CTypeOctetStream = "application/octet-stream"
	CTypeCSS         = "text/css"
	CTypeHTML        = "text/html; charset=utf-8"
)

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
)

const (
	CookieAuthToken = "auth_token"
)

// Maximum accepted upload size, in bytes.
const MaxUploadSize = 64 << 20
