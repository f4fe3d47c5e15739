package common

const (
	// AuthorizationHeaderName carries the bearer access token on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	// DecryptionFailedMessage is reported per item when a revealed item fails authentication.
	DecryptionFailedMessage = "decryption failed"
)
