package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates a failed site password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnknownPharmacy indicates a submission for a site outside the roster.
	ErrUnknownPharmacy = errors.New("pharmacy not in roster")
)

// UserSafeMessage returns a message suitable for end users. Known
// sentinels pass through verbatim; anything else is masked.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Record not found"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid password"
	case errors.Is(err, ErrUnknownPharmacy):
		return "Unknown pharmacy"
	default:
		return "Something went wrong, please try again"
	}
}
