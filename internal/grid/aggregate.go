package grid

import (
	"sort"

	"github.com/gridworks/datagrid-panel/pkg/filtering"
	"github.com/gridworks/datagrid-panel/pkg/types"
)

// Aggregate computes one statistic over a column's values within a group
// bucket or the footer. Non-numeric values are skipped by the numeric
// statistics; none yields nil so the cell renders empty.
func Aggregate(agg types.Aggregation, values []any) any {
	switch agg {
	case types.AggCount:
		return len(values)
	case types.AggUnique:
		return distinct(values)
	case types.AggUniqueCount:
		return len(distinct(values))
	case types.AggSum:
		nums := numeric(values)
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return total
	case types.AggMin:
		nums := numeric(values)
		if len(nums) == 0 {
			return nil
		}
		min := nums[0]
		for _, n := range nums[1:] {
			if n < min {
				min = n
			}
		}
		return min
	case types.AggMax:
		nums := numeric(values)
		if len(nums) == 0 {
			return nil
		}
		max := nums[0]
		for _, n := range nums[1:] {
			if n > max {
				max = n
			}
		}
		return max
	case types.AggExtent:
		lo := Aggregate(types.AggMin, values)
		hi := Aggregate(types.AggMax, values)
		if lo == nil || hi == nil {
			return nil
		}
		return []float64{lo.(float64), hi.(float64)}
	case types.AggMean:
		nums := numeric(values)
		if len(nums) == 0 {
			return nil
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return total / float64(len(nums))
	case types.AggMedian:
		nums := numeric(values)
		if len(nums) == 0 {
			return nil
		}
		sort.Float64s(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 1 {
			return nums[mid]
		}
		return (nums[mid-1] + nums[mid]) / 2
	default:
		return nil
	}
}

func numeric(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		if n, ok := filtering.CoerceFloat(v); ok {
			out = append(out, n)
		}
	}
	return out
}

func distinct(values []any) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		s := filtering.CoerceString(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
