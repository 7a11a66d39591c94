package pagination

import (
	"strconv"
	"strings"
	"sync"

	"reelview/models"
)

// Ellipsis marks a gap in a page window. It is emitted in place of a page
// number and serializes as 0, which can never be a real page.
const Ellipsis = 0

// maxPlainPages is the largest page count rendered without a window.
const maxPlainPages = 5

// ParsePage parses a page number from a raw query value. Missing, non-numeric
// and non-positive values all resolve to page 1.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	p, err := strconv.Atoi(raw)
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// Window computes the page numbers to render as pagination controls.
//
// With total <= 5 every page is listed. Otherwise the window always contains
// page 1 and the last page, plus a run of up to three pages centered on
// current, clamped to stay inside the range. A gap of exactly one page is
// absorbed into the run (showing the page beats showing an ellipsis for it);
// wider gaps are collapsed to a single Ellipsis marker.
func Window(current, total int) []int {
	if total < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	if total <= maxPlainPages {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	start := current - 1
	if start < 2 {
		start = 2
	}
	end := current + 1
	if end > total-1 {
		end = total - 1
	}
	// A one-wide gap against either boundary is absorbed into the run.
	if start == 3 {
		start = 2
	}
	if end == total-2 {
		end = total - 1
	}

	pages := make([]int, 0, end-start+5)
	pages = append(pages, 1)
	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	if end < total-1 {
		pages = append(pages, Ellipsis)
	}
	pages = append(pages, total)
	return pages
}

// State is the lifecycle of one paged view.
type State int

const (
	StateInitializing State = iota
	StateFetching
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// FetchFunc loads one page of results.
type FetchFunc func(page int) (models.ResultPage, error)

// Pager reconciles the current page between a raw query value and fetch
// state for a single category or search view. Every load is tagged with a
// monotonic sequence number; a completion that is no longer the newest one
// is discarded, so rapid page changes cannot clobber newer results with a
// stale response.
type Pager struct {
	mu    sync.Mutex
	seq   uint64
	state State
	page  int
	fetch FetchFunc

	result models.ResultPage
	err    error
}

// NewPager returns a pager in the initializing state.
func NewPager(fetch FetchFunc) *Pager {
	return &Pager{state: StateInitializing, page: 1, fetch: fetch}
}

// Start parses the initial page from the raw query value and fetches it.
// It is also how an errored pager restarts for a new category, query, or
// page parameter.
func (pg *Pager) Start(rawPage string) {
	pg.load(ParsePage(rawPage))
}

// Goto requests a page change. Requests outside [1, totalPages] or made while
// not in the ready state are ignored.
func (pg *Pager) Goto(page int) {
	pg.mu.Lock()
	if pg.state != StateReady || page < 1 || page > pg.result.TotalPages {
		pg.mu.Unlock()
		return
	}
	pg.mu.Unlock()
	pg.load(page)
}

func (pg *Pager) load(page int) {
	pg.mu.Lock()
	pg.state = StateFetching
	pg.page = page
	pg.seq++
	seq := pg.seq
	fetch := pg.fetch
	pg.mu.Unlock()

	res, err := fetch(page)

	pg.mu.Lock()
	defer pg.mu.Unlock()
	if seq != pg.seq {
		// A newer request superseded this one while it was in flight.
		return
	}
	if err != nil {
		pg.state = StateErrored
		pg.err = err
		return
	}
	pg.state = StateReady
	pg.result = res
	pg.err = nil
}

// State returns the current lifecycle state.
func (pg *Pager) State() State {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	return pg.state
}

// Page returns the most recently requested page number.
func (pg *Pager) Page() int {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	return pg.page
}

// Result returns the last successfully fetched page.
func (pg *Pager) Result() models.ResultPage {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	return pg.result
}

// Err returns the error that moved the pager into the errored state.
func (pg *Pager) Err() error {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	return pg.err
}

// Pages returns the window of page controls for the current result.
func (pg *Pager) Pages() []int {
	pg.mu.Lock()
	defer pg.mu.Unlock()
	return Window(pg.page, pg.result.TotalPages)
}
