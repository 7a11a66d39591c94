package pagination

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelview/models"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"   ", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1.5", 1},
		{"1", 1},
		{"2", 2},
		{" 7 ", 7},
		{"250", 250},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParsePage(tc.raw), "raw=%q", tc.raw)
	}
}

func TestWindowSmallTotals(t *testing.T) {
	assert.Nil(t, Window(1, 0))
	assert.Equal(t, []int{1}, Window(1, 1))
	assert.Equal(t, []int{1, 2, 3}, Window(2, 3))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Window(4, 5))
}

func TestWindowLargeTotals(t *testing.T) {
	cases := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"first page", 1, 10, []int{1, 2, Ellipsis, 10}},
		{"second page", 2, 10, []int{1, 2, 3, Ellipsis, 10}},
		{"near start absorbs gap", 4, 10, []int{1, 2, 3, 4, 5, Ellipsis, 10}},
		{"middle", 5, 10, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}},
		{"near end absorbs gap", 7, 10, []int{1, Ellipsis, 6, 7, 8, 9, 10}},
		{"close to end", 8, 10, []int{1, Ellipsis, 7, 8, 9, 10}},
		{"last page", 10, 10, []int{1, Ellipsis, 9, 10}},
		{"six pages mid", 3, 6, []int{1, 2, 3, 4, 5, 6}},
		{"six pages end", 6, 6, []int{1, Ellipsis, 5, 6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Window(tc.current, tc.total))
		})
	}
}

// Window must always contain page 1, the last page, and a contiguous run
// containing the current page, with no one-wide ellipsis gaps.
func TestWindowInvariants(t *testing.T) {
	for total := 6; total <= 40; total++ {
		for current := 1; current <= total; current++ {
			pages := Window(current, total)
			require.Equal(t, 1, pages[0], "total=%d current=%d", total, current)
			require.Equal(t, total, pages[len(pages)-1], "total=%d current=%d", total, current)

			containsCurrent := false
			prev := 0
			for _, p := range pages {
				if p == current {
					containsCurrent = true
				}
				if p != Ellipsis && prev != 0 {
					gap := p - prev - 1
					require.NotEqual(t, 1, gap,
						"one-wide gap between %d and %d (total=%d current=%d)", prev, p, total, current)
				}
				if p != Ellipsis {
					prev = p
				}
			}
			require.True(t, containsCurrent, "window %v misses current %d (total=%d)", pages, current, total)
		}
	}
}

func TestPagerHappyPath(t *testing.T) {
	var fetched []int
	pg := NewPager(func(page int) (models.ResultPage, error) {
		fetched = append(fetched, page)
		return models.ResultPage{Page: page, TotalPages: 8, TotalResults: 160}, nil
	})

	assert.Equal(t, StateInitializing, pg.State())

	pg.Start("junk")
	assert.Equal(t, StateReady, pg.State())
	assert.Equal(t, 1, pg.Page())

	pg.Goto(2)
	assert.Equal(t, 2, pg.Page())
	assert.Equal(t, []int{1, 2}, fetched)
	assert.Equal(t, []int{1, 2, 3, Ellipsis, 8}, pg.Pages())
}

func TestPagerIgnoresOutOfRangeGoto(t *testing.T) {
	calls := 0
	pg := NewPager(func(page int) (models.ResultPage, error) {
		calls++
		return models.ResultPage{Page: page, TotalPages: 3}, nil
	})
	pg.Start("1")

	pg.Goto(0)
	pg.Goto(4)
	assert.Equal(t, 1, calls, "out-of-range page changes must not fetch")
	assert.Equal(t, 1, pg.Page())
	assert.Equal(t, StateReady, pg.State())
}

func TestPagerErroredIsTerminalUntilRestart(t *testing.T) {
	fail := true
	pg := NewPager(func(page int) (models.ResultPage, error) {
		if fail {
			return models.ResultPage{}, errors.New("boom")
		}
		return models.ResultPage{Page: page, TotalPages: 2}, nil
	})

	pg.Start("1")
	assert.Equal(t, StateErrored, pg.State())
	assert.Error(t, pg.Err())

	// Goto is ignored while errored.
	pg.Goto(2)
	assert.Equal(t, StateErrored, pg.State())

	// A new page parameter restarts the pager.
	fail = false
	pg.Start("2")
	assert.Equal(t, StateReady, pg.State())
	assert.Equal(t, 2, pg.Page())
	assert.NoError(t, pg.Err())
}

// A stale response finishing after a newer request must not clobber the
// newer result.
func TestPagerDiscardsStaleResponse(t *testing.T) {
	firstEntered := make(chan struct{})
	release := make(chan struct{})

	pg := NewPager(func(page int) (models.ResultPage, error) {
		if page == 1 {
			close(firstEntered)
			<-release
		}
		return models.ResultPage{Page: page, TotalPages: 9}, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pg.Start("1")
	}()

	<-firstEntered
	pg.Start("2")
	close(release)
	wg.Wait()

	assert.Equal(t, StateReady, pg.State())
	assert.Equal(t, 2, pg.Result().Page, "stale page-1 response must be discarded")
	assert.Equal(t, 2, pg.Page())
}
