package script

import "sort"

// run of contiguous ids sharing one value
type idRun[V comparable] struct {
	Lo    int
	Hi    int
	Value V
}

func (r idRun[V]) spec() IDSpec {
	return IDSpec{Lo: r.Lo, Hi: r.Hi}
}

// mergeRanges sorts the ids and collapses consecutive ids with equal
// values into one run. A gap or a different value starts a new run.
func mergeRanges[V comparable](valuesByID map[int]V) []idRun[V] {
	ids := make([]int, 0, len(valuesByID))
	for id := range valuesByID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var runs []idRun[V]
	for _, id := range ids {
		value := valuesByID[id]
		if n := len(runs); n > 0 && runs[n-1].Hi+1 == id && runs[n-1].Value == value {
			runs[n-1].Hi = id
			continue
		}
		runs = append(runs, idRun[V]{Lo: id, Hi: id, Value: value})
	}
	return runs
}
