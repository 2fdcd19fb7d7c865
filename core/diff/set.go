package diff

// Keys compares an old and a new set of related keys and returns the
// transitions: keys only in new (added) and keys only in old (removed).
// Keys present in both sets are left untouched, only transitions are
// actionable. A nil slice is treated as the empty set.
//
// The result is deterministic: added keys keep the order of new, removed keys
// keep the order of old. Duplicate keys in either input count once.
func Keys[K comparable](old, new []K) (added, removed []K) {
	oldSet := make(map[K]struct{}, len(old))
	for _, k := range old {
		oldSet[k] = struct{}{}
	}
	newSet := make(map[K]struct{}, len(new))
	for _, k := range new {
		newSet[k] = struct{}{}
	}

	seen := make(map[K]struct{}, len(new))
	for _, k := range new {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := oldSet[k]; !ok {
			added = append(added, k)
		}
	}

	seen = make(map[K]struct{}, len(old))
	for _, k := range old {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := newSet[k]; !ok {
			removed = append(removed, k)
		}
	}

	return added, removed
}
