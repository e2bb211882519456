// ABOUTME: Set of composite notification keys used for dismissal and read tracking
// ABOUTME: Serialises as the flat key -> true mapping kept in storage
package notify

import (
	"encoding/json"
	"sort"
)

// Key builds the composite "<kind>-<id>" identifier of a notification.
func Key(kind Kind, recordID string) string {
	return string(kind) + "-" + recordID
}

// KeySet holds composite notification keys. Only presence is meaningful.
type KeySet map[string]struct{}

func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// KeySetFromMap converts a stored key -> bool mapping. False entries are
// treated the same as missing ones.
func KeySetFromMap(m map[string]bool) KeySet {
	s := make(KeySet, len(m))
	for k, v := range m {
		if v {
			s.Add(k)
		}
	}
	return s
}

func (s KeySet) Add(key string) { s[key] = struct{}{} }

func (s KeySet) Remove(key string) { delete(s, key) }

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the keys in sorted order.
func (s KeySet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy. Cloning a nil set yields an empty one.
func (s KeySet) Clone() KeySet {
	out := make(KeySet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Map returns the key -> true form used at rest.
func (s KeySet) Map() map[string]bool {
	m := make(map[string]bool, len(s))
	for k := range s {
		m[k] = true
	}
	return m
}

func (s KeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *KeySet) UnmarshalJSON(data []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = KeySetFromMap(m)
	return nil
}
