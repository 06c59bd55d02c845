package uaa

const redacted = "[REDACTED]"

// Secret wraps a credential or token value so it cannot leak through
// formatting or serialization.
//
//	s := uaa.NewSecret("s3cr3t")
//	fmt.Printf("%v %+v %#v", s, s, s) // all print [REDACTED]
//	s.Reveal()                        // "s3cr3t"
type Secret struct {
	value string
}

// NewSecret wraps value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the wrapped value. Only call it when building a request.
func (s Secret) Reveal() string {
	return s.value
}

// IsEmpty reports whether the wrapped value is empty.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return "uaa.Secret{" + redacted + "}"
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
