package models

// Account identifiers are Stellar-style public keys: a fixed 'G' prefix and
// an exact total length of 56 characters.
const (
	AccountIdPrefix = 'G'
	AccountIdLength = 56
)

// ValidAccountId reports whether s has the required account-id format.
// Only the prefix and length are checked; checksum validation is the
// ledger's job.
func ValidAccountId(s string) bool {
	return len(s) == AccountIdLength && s[0] == AccountIdPrefix
}

// TruncateAddress shortens an account id for display in notification
// messages, e.g. "GA7IOL2P...".
func TruncateAddress(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8] + "..."
}
