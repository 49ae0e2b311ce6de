package keys

// DefaultPrefix namespaces result entries in the store.
const DefaultPrefix = "taskiq:result:"

// Scheme maps task identifiers to store keys under a fixed namespace
// prefix. The mapping is pure and deterministic, and injective for any
// fixed prefix: two distinct identifiers never share a key.
type Scheme struct {
	prefix string
}

// New returns a Scheme using the given prefix, or DefaultPrefix when
// empty.
func New(prefix string) Scheme {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Scheme{prefix: prefix}
}

// ResultKey returns the store key holding the result for taskID.
func (s Scheme) ResultKey(taskID string) string {
	return s.prefix + taskID
}

// Prefix returns the namespace prefix in use.
func (s Scheme) Prefix() string {
	return s.prefix
}
