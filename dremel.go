package parquet

// dremelList is one open container in the record-assembly stack, per
// spec.md §4.9. Its items hold either physical values, null sentinels
// (nil), literal empty-list sentinels ([]interface{}{}), or child
// *dremelList pointers awaiting recursive flattening.
type dremelList struct {
	items []interface{}
}

// AssembleRecords reassembles a column's flat (value, definition-level,
// repetition-level) triple into nested rows, per spec.md §4.9 (Dremel).
//
// defLevels and repLevels may be nil: a path whose max definition level
// is 0 never carries definition levels (every value is implicitly fully
// defined), and a
// non-repeated path never carries repetition levels (every value
// implicitly starts a new record).
//
// Two adjustments from the spec's literal wording, both needed to match
// the worked examples in spec.md §8:
//
//   - maxRepetitionLevel == 0 is handled directly rather than through the
//     stack: with no repeated ancestor, R never drops below
//     maxRepetitionLevel, so the general algorithm would never pop and
//     would fold every row into a single container instead of one row
//     per index.
//   - For nullable paths, `targetDepth = D/2 + 1` (not the spec's
//     `(D+1)/2`) pushes one extra container per row compared to the
//     non-nullable case. That extra container is what lets a whole
//     missing/null row be represented as a single sentinel rather than
//     merging with a neighboring row's values; it is unwrapped once per
//     row when flattening. The two formulas agree for odd D; only even D
//     (a null or missing top-level entry) needs the extra depth.
func AssembleRecords(defLevels, repLevels []uint32, values []interface{}, isNullable bool, maxDefinitionLevel, maxRepetitionLevel int) ([]interface{}, error) {
	n := len(defLevels)
	if repLevels != nil && len(repLevels) > n {
		n = len(repLevels)
	}

	getD := func(i int) int {
		if defLevels != nil {
			return int(defLevels[i])
		}
		return maxDefinitionLevel
	}
	getR := func(i int) int {
		if repLevels != nil {
			return int(repLevels[i])
		}
		return 0
	}

	if maxRepetitionLevel == 0 {
		return assembleFlat(getD, values, isNullable, maxDefinitionLevel, n)
	}

	if n == 0 {
		if len(values) > 0 {
			return values, nil
		}
		return []interface{}{}, nil
	}

	root := &dremelList{}
	stack := []*dremelList{root}
	current := root
	valueIdx := 0

	for i := 0; i < n; i++ {
		d := getD(i)
		r := getR(i)

		if r < maxRepetitionLevel {
			popDepth := r + 1
			if popDepth > len(stack) {
				popDepth = len(stack)
			}
			stack = stack[:popDepth]
			current = stack[len(stack)-1]
		}

		var target int
		if isNullable {
			target = d/2 + 1
		} else {
			target = maxRepetitionLevel
		}
		for len(stack)-1 < target {
			child := &dremelList{}
			current.items = append(current.items, child)
			stack = append(stack, child)
			current = child
		}

		switch {
		case d == maxDefinitionLevel:
			if valueIdx >= len(values) {
				return nil, newErrf(ErrInternalInvariant, "record assembly ran out of values at level index %d", i)
			}
			current.items = append(current.items, values[valueIdx])
			valueIdx++
		case isNullable:
			if d%2 == 0 {
				current.items = append(current.items, nil)
			} else {
				current.items = append(current.items, []interface{}{})
			}
		default:
			return nil, newErrf(ErrInternalInvariant, "required column produced definition level %d below max %d", d, maxDefinitionLevel)
		}
	}

	if !isNullable {
		// No extra wrapper depth: each entry of root.items already is one
		// row's own (possibly nested) list structure.
		return flattenDremel(root), nil
	}
	return unwrapRows(root.items), nil
}

// assembleFlat handles maxRepetitionLevel == 0: every index is its own
// row, with no list nesting at the top level, per spec.md §4.9's flat
// column edge case.
func assembleFlat(getD func(int) int, values []interface{}, isNullable bool, maxDefinitionLevel, n int) ([]interface{}, error) {
	if !isNullable {
		return values, nil
	}
	if n == 0 {
		return []interface{}{}, nil
	}
	rows := make([]interface{}, n)
	valueIdx := 0
	for i := 0; i < n; i++ {
		if getD(i) == maxDefinitionLevel {
			if valueIdx >= len(values) {
				return nil, newErrf(ErrInternalInvariant, "record assembly ran out of values at index %d", i)
			}
			rows[i] = values[valueIdx]
			valueIdx++
		} else {
			rows[i] = nil
		}
	}
	return rows, nil
}

// unwrapRows peels the one extra container the nullable branch's
// targetDepth formula pushes per row, so each returned row is the row's
// real value (nested list, scalar, empty-list sentinel, or nil) rather
// than that value wrapped in a singleton container.
func unwrapRows(rowContainers []interface{}) []interface{} {
	rows := make([]interface{}, len(rowContainers))
	for i, it := range rowContainers {
		wrapper, ok := it.(*dremelList)
		if !ok {
			rows[i] = it
			continue
		}
		if len(wrapper.items) != 1 {
			rows[i] = flattenDremel(wrapper)
			continue
		}
		if child, ok := wrapper.items[0].(*dremelList); ok {
			rows[i] = flattenDremel(child)
		} else {
			rows[i] = wrapper.items[0]
		}
	}
	return rows
}

func flattenDremel(l *dremelList) []interface{} {
	out := make([]interface{}, len(l.items))
	for i, it := range l.items {
		if child, ok := it.(*dremelList); ok {
			out[i] = flattenDremel(child)
		} else {
			out[i] = it
		}
	}
	return out
}
