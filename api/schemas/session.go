// File: api/schemas/session.go
package schemas

// Cookie is a single persisted browser cookie. The field set mirrors the
// storage-state layout of the original session files so previously captured
// sessions stay loadable.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// StorageEntry is one key/value pair of an origin's local storage.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OriginState groups the local storage entries captured for one origin.
type OriginState struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// SessionState is the serializable authentication state of a browsing
// session: cookies plus per-origin storage.
type SessionState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins"`
}

// Empty reports whether the state carries neither cookies nor origins. Any
// non-empty origins list counts, entries or not. An empty state must never
// be persisted as valid.
func (s *SessionState) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.Cookies) == 0 && len(s.Origins) == 0
}
