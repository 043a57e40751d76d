package table

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// duplicated flags every record whose value in column was already seen in an
// earlier record. Values are equal when type and rendering match; nulls are
// equal to each other.
func (t *Table) duplicated(column string) ([]bool, error) {
	values, ok := t.columns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	seen := make(map[string]struct{}, len(values))
	dup := make([]bool, len(values))
	for i, v := range values {
		key := identity(v)
		if _, ok := seen[key]; ok {
			dup[i] = true
			continue
		}
		seen[key] = struct{}{}
	}
	return dup, nil
}

// CountDuplicates returns how many records repeat an earlier record's value in
// column.
func (t *Table) CountDuplicates(column string) (int, error) {
	dup, err := t.duplicated(column)
	if err != nil {
		return 0, err
	}
	return lo.Count(dup, true), nil
}

// RemoveDuplicates keeps only the first record for each distinct value in
// column and returns the number of records dropped.
func (t *Table) RemoveDuplicates(column string) (int, error) {
	dup, err := t.duplicated(column)
	if err != nil {
		return 0, err
	}
	dropped := lo.Count(dup, true)
	if dropped > 0 {
		t.keepRows(lo.Map(dup, func(d bool, _ int) bool { return !d }))
	}
	return dropped, nil
}

// AddRank stores the descending rank of column's values in newColumn, adding
// or overwriting it.
//
// Without groupBy, tied values share the mean of the positions they occupy,
// truncated to an integer: [10, 20, 20] ranks as [3, 1, 1].
// With groupBy, values are dense-ranked within each group of equal groupBy
// values: [10, 20, 20, 5] in one group ranks as [2, 1, 1, 3].
func (t *Table) AddRank(column, newColumn, groupBy string) error {
	values, ok := t.columns[column]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	nums := make([]float64, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("%w: %q row %d holds %T", ErrNotNumeric, column, i, v)
		}
		nums[i] = f
	}

	var ranks []int64
	if groupBy == "" {
		ranks = averageRanks(nums)
	} else {
		groups, ok := t.columns[groupBy]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, groupBy)
		}
		ranks = make([]int64, len(nums))
		members := lo.GroupBy(lo.Range(len(nums)), func(i int) string {
			return identity(groups[i])
		})
		for _, rows := range members {
			groupNums := lo.Map(rows, func(i int, _ int) float64 { return nums[i] })
			for j, r := range denseRanks(groupNums) {
				ranks[rows[j]] = r
			}
		}
	}

	return t.PutColumn(newColumn, lo.Map(ranks, func(r int64, _ int) any { return r }))
}

// averageRanks ranks descending; ties get the truncated mean position.
func averageRanks(nums []float64) []int64 {
	order := lo.Range(len(nums))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(nums[b], nums[a])
	})
	ranks := make([]int64, len(nums))
	for start := 0; start < len(order); {
		end := start
		for end+1 < len(order) && nums[order[end+1]] == nums[order[start]] {
			end++
		}
		// positions start+1 .. end+1
		mean := float64(start+end+2) / 2
		for _, i := range order[start : end+1] {
			ranks[i] = int64(mean)
		}
		start = end + 1
	}
	return ranks
}

// denseRanks ranks descending with no gaps between distinct values.
func denseRanks(nums []float64) []int64 {
	distinct := lo.Uniq(nums)
	slices.SortFunc(distinct, func(a, b float64) int {
		return cmp.Compare(b, a)
	})
	pos := make(map[float64]int64, len(distinct))
	for i, v := range distinct {
		pos[v] = int64(i + 1)
	}
	return lo.Map(nums, func(v float64, _ int) int64 { return pos[v] })
}
