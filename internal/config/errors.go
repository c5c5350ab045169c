package config

const (
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrLoadConfigFmt         = "Failed to load config: %v"
	ErrInitializeStorageFmt  = "Failed to initialize storage: %v"

	ErrCreateProviderFmt      = "Failed to create provider: %v"
	ErrAuthHeaderRequired     = "Authorization header required"
	ErrInvalidSignatureFormat = "Invalid signature format"
	ErrInvalidSignature       = "Invalid signature"
	ErrInternalServerError    = "Internal server error"
	ErrUnauthorized           = "Unauthorized"

	ErrActionNotPossible = "This action is not possible"
	ErrStaleRevision     = "The revision has changed, please reload"
	ErrSubmissionFailed  = "Submission failed, please try again later."
	ErrNotFound          = "Not found"
	ErrForbidden         = "You are not allowed to do this"
	ErrInvalidBody       = "Invalid request body"

	ErrRefreshChallengeFmt = "Failed to refresh challenge"
)
