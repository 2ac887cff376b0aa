package tooltip

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickchart/geometry"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return epoch.Add(time.Duration(hours) * time.Hour)
}

func TestLocate_Basic(t *testing.T) {
	dates := []time.Time{at(0), at(10), at(20)}

	cases := []struct {
		name string
		x0   time.Time
		want int
	}{
		{"before first", at(-5), 0},
		{"exact", at(10), 1},
		{"closer to lower", at(14), 1},
		{"closer to upper", at(16), 2},
		{"midpoint goes later", at(15), 2},
		{"after last", at(99), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			i, ok := Locate(dates, tc.x0)
			require.True(t, ok)
			assert.Equal(t, tc.want, i)
		})
	}
}

func TestLocate_EmptyAndDuplicates(t *testing.T) {
	_, ok := Locate(nil, epoch)
	assert.False(t, ok)

	dates := []time.Time{at(0), at(5), at(5), at(5), at(9)}
	i, _ := Locate(dates, at(5))
	assert.Equal(t, 3, i)
	i, _ = Locate(dates, at(4))
	assert.Equal(t, 3, i)
	i, _ = Locate(dates, at(-1))
	assert.Equal(t, 0, i)
}

func bruteForce(dates []time.Time, x0 time.Time) int {
	best, bestDist := -1, time.Duration(0)
	for i, d := range dates {
		dist := d.Sub(x0)
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist <= bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

func TestLocate_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 300; round++ {
		n := 1 + rng.Intn(40)
		dates := make([]time.Time, n)
		for i := range dates {
			dates[i] = at(rng.Intn(60))
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		for q := 0; q < 20; q++ {
			x0 := epoch.Add(time.Duration(rng.Intn(70*60)-300) * time.Minute)
			got, ok := Locate(dates, x0)
			require.True(t, ok)
			require.Equal(t, bruteForce(dates, x0), got, "dates=%v x0=%v", dates, x0)
		}
	}
}

func TestLocateRegion(t *testing.T) {
	regions := []geometry.HitRegion{
		{Index: 0, Rect: geometry.Rect{X: 0, W: 100, H: 300}},
		{Index: 1, Rect: geometry.Rect{X: 100, W: 100, H: 300}},
		{Index: 2, Rect: geometry.Rect{X: 200, W: 100, H: 300}},
	}
	r, ok := LocateRegion(regions, 150)
	require.True(t, ok)
	assert.Equal(t, 1, r.Index)

	r, ok = LocateRegion(regions, 200)
	require.True(t, ok)
	assert.Equal(t, 2, r.Index)

	_, ok = LocateRegion(regions, -1)
	assert.False(t, ok)
	_, ok = LocateRegion(regions, 300)
	assert.False(t, ok)
	_, ok = LocateRegion(nil, 10)
	assert.False(t, ok)
}

func TestPosition_FlipsOnOverflow(t *testing.T) {
	box := Position(100, 100, 80, 40, 500, 300)
	assert.Equal(t, Box{X: 112, Y: 80, W: 80, H: 40}, box)

	box = Position(450, 10, 80, 40, 500, 300)
	assert.Equal(t, 450-Offset-80, box.X)
	assert.Equal(t, 0.0, box.Y)

	box = Position(100, 295, 80, 40, 500, 300)
	assert.Equal(t, 260.0, box.Y)
}

func TestSize(t *testing.T) {
	w, h := Size([]string{"2024-01-01", "Close 105"})
	assert.Equal(t, 10*CharWidth+2*Padding, w)
	assert.Equal(t, 2*LineHeight+2*Padding, h)
}
