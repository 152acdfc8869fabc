package landing

import "cmp"

// FloorKey returns the greatest key that is <= query. When every key is above
// the query the smallest key is returned instead (clamp-low); a query below
// the table is not an error.
//
// Keys need not be sorted. The scan is linear, which matches table sizes in
// practice (tens of entries).
func FloorKey[K cmp.Ordered](keys []K, query K) (K, error) {
	var zero K
	if len(keys) == 0 {
		return zero, &TableAxisEmptyError{}
	}

	best, lowest := zero, keys[0]
	found := false
	for _, k := range keys {
		if k < lowest {
			lowest = k
		}
		if k <= query && (!found || k > best) {
			best = k
			found = true
		}
	}
	if !found {
		return lowest, nil
	}
	return best, nil
}

// floorIndex returns the position of key in keys after FloorKey selected it.
func floorIndex[K cmp.Ordered](keys []K, query K) (int, error) {
	k, err := FloorKey(keys, query)
	if err != nil {
		return 0, err
	}
	for i := range keys {
		if keys[i] == k {
			return i, nil
		}
	}
	// Unreachable: FloorKey only returns members of keys.
	return 0, nil
}

// FloorRow selects a row by its reference-column value: among rows whose
// value is <= query, the last one in table order wins. When no row qualifies
// the first row (index 0) is used.
//
// For reference columns that ascend down the table this is the same row
// FloorKey would pick. Descending or unordered data is not re-sorted.
func FloorRow(values []float64, query float64) (int, error) {
	if len(values) == 0 {
		return 0, &TableAxisEmptyError{}
	}
	row := 0
	for i, v := range values {
		if v <= query {
			row = i
		}
	}
	return row, nil
}
