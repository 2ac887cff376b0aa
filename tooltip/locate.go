package tooltip

import (
	"sort"
	"time"

	"tickchart/geometry"
)

// Locate returns the index of the date nearest to x0 in ascending dates. An exact tie
// between two neighbours, and a run of equal dates, resolve to the later index. ok is
// false for an empty slice.
func Locate(dates []time.Time, x0 time.Time) (int, bool) {
	n := len(dates)
	if n == 0 {
		return -1, false
	}
	i := sort.Search(n, func(i int) bool { return !dates[i].Before(x0) })
	if i == n {
		return n - 1, true
	}
	upper := lastEqual(dates, i)
	if i == 0 {
		return upper, true
	}
	lower := i - 1
	if dates[i].Sub(x0) <= x0.Sub(dates[lower]) {
		return upper, true
	}
	return lower, true
}

// lastEqual returns the last index of the run of dates equal to dates[i].
func lastEqual(dates []time.Time, i int) int {
	at := dates[i]
	return sort.Search(len(dates), func(j int) bool { return dates[j].After(at) }) - 1
}

// LocateRegion returns the hit region under px. Regions must be ordered by x.
func LocateRegion(regions []geometry.HitRegion, px float64) (geometry.HitRegion, bool) {
	i := sort.Search(len(regions), func(i int) bool { return regions[i].Rect.X > px }) - 1
	if i < 0 {
		return geometry.HitRegion{}, false
	}
	r := regions[i]
	if px >= r.Rect.X+r.Rect.W {
		return geometry.HitRegion{}, false
	}
	return r, true
}
