package dissect

// Map is a Record backed by a plain map.
type Map map[string]string

// Contains reports whether key is present.
func (m Map) Contains(key string) bool {
	_, ok := m[key]
	return ok
}

// Get returns the value of key, or "".
func (m Map) Get(key string) string {
	return m[key]
}

// Set stores value under key.
func (m Map) Set(key, value string) {
	m[key] = value
}
