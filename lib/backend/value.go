package backend

// --------------------------------------------------------------------------
// Value Helper Functions
// --------------------------------------------------------------------------

// DeepCopy returns a structural copy of v. Maps, slices and byte slices are
// copied recursively so that callers can never alias storage-owned data;
// scalar values are returned as-is.
func DeepCopy(v Value) Value {
	switch t := v.(type) {
	case map[string]Value:
		c := make(map[string]Value, len(t))
		for k, e := range t {
			c[k] = DeepCopy(e)
		}
		return c
	case []Value:
		c := make([]Value, len(t))
		for i, e := range t {
			c[i] = DeepCopy(e)
		}
		return c
	case []byte:
		c := make([]byte, len(t))
		copy(c, t)
		return c
	default:
		return v
	}
}

// GetIn navigates v along the given nested path (which does NOT include the
// root key). The boolean return value indicates whether a value was found at
// that position. An empty path returns v itself.
func GetIn(v Value, path []string) (Value, bool) {
	cur := v
	for _, p := range path {
		m, ok := cur.(map[string]Value)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// AssocIn returns root with newVal stored at the given nested path, creating
// missing intermediate map containers along the way. A non-map value that is
// in the way of the path is replaced by a fresh map. An empty path replaces
// the root entirely.
func AssocIn(root Value, path []string, newVal Value) Value {
	if len(path) == 0 {
		return newVal
	}
	m, ok := root.(map[string]Value)
	if !ok {
		m = make(map[string]Value)
	}
	m[path[0]] = AssocIn(m[path[0]], path[1:], newVal)
	return m
}
