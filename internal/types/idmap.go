package types

// IDMap is a bidirectional old-id to new-id map built while copying or
// importing scenario entities of one kind (teachers, classes, hour types).
type IDMap struct {
	forward map[string]string
	reverse map[string]string
}

// NewIDMap returns an empty IDMap.
func NewIDMap() *IDMap {
	return &IDMap{
		forward: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Put records an old-id to new-id pair.
func (m *IDMap) Put(oldID, newID string) {
	m.forward[oldID] = newID
	m.reverse[newID] = oldID
}

// New returns the new id for oldID, or "" if it was never recorded.
func (m *IDMap) New(oldID string) string {
	return m.forward[oldID]
}

// Old returns the old id for newID, or "" if it was never recorded.
func (m *IDMap) Old(newID string) string {
	return m.reverse[newID]
}

// Has reports whether oldID has a mapping.
func (m *IDMap) Has(oldID string) bool {
	_, ok := m.forward[oldID]
	return ok
}

// Remap returns the new ids for a list of old ids, dropping ids that have no
// mapping (references to entities that no longer exist).
func (m *IDMap) Remap(oldIDs []string) []string {
	out := make([]string, 0, len(oldIDs))
	for _, id := range oldIDs {
		if newID, ok := m.forward[id]; ok {
			out = append(out, newID)
		}
	}
	return out
}
