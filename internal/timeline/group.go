package timeline

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/rendis/casegraph/pkg/schema"
)

// UnknownKey is the bucket key of decisions without a made date.
const UnknownKey = "Unknown"

// Row is one decision together with its step key.
type Row struct {
	Step     string
	Decision schema.Decision
}

// Bucket holds the decisions sharing one raw date key. Rows are never empty.
type Bucket struct {
	Key  string
	Rows []Row
}

// Group buckets decisions by their raw made-date string and orders them.
//
// Buckets are sorted by key byte-wise, which is chronological for ISO-like
// dates. Two strings naming the same calendar day in different forms stay in
// separate buckets. Rows inside a bucket are sorted with CompareSteps.
func Group(tree map[string]schema.Decision) []Bucket {
	steps := make([]string, 0, len(tree))
	for step := range tree {
		steps = append(steps, step)
	}
	// Map iteration order is random; fix it before the stable step sort.
	slices.Sort(steps)

	index := make(map[string]int)
	var buckets []Bucket
	for _, step := range steps {
		d := tree[step]
		key := d.MadeDate
		if key == "" {
			key = UnknownKey
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Rows = append(buckets[i].Rows, Row{Step: step, Decision: d})
	}

	slices.SortFunc(buckets, func(a, b Bucket) int {
		return strings.Compare(a.Key, b.Key)
	})
	for i := range buckets {
		slices.SortStableFunc(buckets[i].Rows, func(a, b Row) int {
			return CompareSteps(a.Step, b.Step)
		})
	}
	return buckets
}

// CompareSteps orders two step keys. When both parse as numbers they compare
// numerically, otherwise they compare as strings.
func CompareSteps(a, b string) int {
	na, okA := stepNumber(a)
	nb, okB := stepNumber(b)
	if okA && okB {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func stepNumber(step string) (float64, bool) {
	s := strings.TrimSpace(step)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "Inf" and "NaN"; neither is a usable step number.
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
