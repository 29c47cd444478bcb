package gencache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The strategy calls them on hot paths.
type Hooks interface {
	// A lookup found a usable entry / did not.
	Hit(typeName, op string)
	Miss(typeName, op string)

	// A provider call failed. op ∈ {"get", "set", "clear", "increment"}.
	// The strategy already degraded to a miss or a skipped write.
	ProviderError(op, key string, err error)

	// Provider returned ok=false on Set (admission policy / pressure).
	ProviderSetRejected(key string)

	// Criteria, options or key values could not be canonicalized.
	FingerprintError(typeName, op string, err error)

	// An entry failed to decode and was cleared.
	// reason ∈ {"wire", "value_decode"}
	CorruptEntry(key, reason string)

	// A generation counter could not be bumped on a write.
	GenerationBumpError(scopeKey string, err error)

	// A GetAll/FindAll result exceeded MaxResults and was not stored.
	ResultTooLarge(typeName, op string, n, max int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string, string)                      {}
func (NopHooks) Miss(string, string)                     {}
func (NopHooks) ProviderError(string, string, error)     {}
func (NopHooks) ProviderSetRejected(string)              {}
func (NopHooks) FingerprintError(string, string, error)  {}
func (NopHooks) CorruptEntry(string, string)             {}
func (NopHooks) GenerationBumpError(string, error)       {}
func (NopHooks) ResultTooLarge(string, string, int, int) {}
