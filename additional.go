package formser

// AdditionalData is an insertion ordered mapping of keys that are present on
// the wire but not declared on a model. The zero value is ready to use.
type AdditionalData struct {
	keys   []string
	values map[string]interface{}
}

// NewAdditionalData returns an empty bag.
func NewAdditionalData() *AdditionalData {
	return &AdditionalData{}
}

// Set stores v under key. Replacing an existing key keeps its position.
func (a *AdditionalData) Set(key string, v interface{}) {
	if a.values == nil {
		a.values = make(map[string]interface{})
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = v
}

// Get returns the value stored under key.
func (a *AdditionalData) Get(key string) (interface{}, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Delete removes key from the bag.
func (a *AdditionalData) Delete(key string) {
	if a == nil {
		return
	}
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (a *AdditionalData) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Keys returns the keys in insertion order.
func (a *AdditionalData) Keys() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (a *AdditionalData) Range(fn func(key string, v interface{}) bool) {
	if a == nil {
		return
	}
	for _, k := range a.keys {
		if !fn(k, a.values[k]) {
			return
		}
	}
}
