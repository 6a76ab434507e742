package model

// SessionKeyPrefix prefixes the cache key of every session record.
// A session record is the JSON-encoded User as of the last login, refresh or
// profile update. While it exists it is the source of truth for the user's
// identity and role on gated requests.
const SessionKeyPrefix = "session:"

// SessionKey returns the cache key of the session record for userID.
func SessionKey(userID string) string {
	return SessionKeyPrefix + userID
}
