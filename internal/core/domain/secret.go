package domain

// Secret wraps private key material so it cannot leak through logging or
// serialization by accident. Storing the raw key in the record store is a
// standing risk; until it is encrypted at rest, at least nothing that
// formats or marshals a Secret sees the real bytes.
type Secret string

const redacted = "[REDACTED]"

// Reveal returns the underlying secret. The only legitimate callers are the
// store adapter (persistence) and the signer in the custodial send path.
func (s Secret) Reveal() string {
	return string(s)
}

// IsZero reports whether no secret is held.
func (s Secret) IsZero() bool {
	return s == ""
}

// String implements fmt.Stringer and always redacts.
func (s Secret) String() string {
	return redacted
}

// GoString keeps %#v output redacted too.
func (s Secret) GoString() string {
	return redacted
}

// MarshalJSON redacts the value in any JSON encoding.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// UnmarshalJSON refuses to load secrets from JSON documents.
func (s *Secret) UnmarshalJSON([]byte) error {
	*s = ""
	return nil
}
