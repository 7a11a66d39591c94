package category

import (
	"strconv"
	"strings"
	"sync"

	"reelview/models"
	"reelview/services/catalog"
)

// Kind tags what a category key resolved to. Unknown is a first-class
// outcome: the category route accepts arbitrary strings and an unrecognized
// one must render as "category not found", not crash.
type Kind int

const (
	KindUnknown Kind = iota
	KindList
	KindGenre
	KindSearch
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindGenre:
		return "genre"
	case KindSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Descriptor is a resolved category: what to show as the heading and how to
// fetch its pages. Exactly one of Resource (KindList) or GenreID (KindGenre)
// is meaningful; KindSearch gets its query from the request, not from here.
type Descriptor struct {
	Key       string `json:"key"`
	Kind      Kind   `json:"-"`
	Title     string `json:"title"`
	Icon      string `json:"icon"`
	MediaType string `json:"mediaType"`
	Resource  string `json:"-"`
	GenreID   int64  `json:"-"`
}

// staticLists maps the known category keys to their list descriptors.
// Constructed once, never mutated.
var staticLists = map[string]Descriptor{
	"trending-movies":  {Kind: KindList, Title: "Trending Movies", Icon: "film", MediaType: catalog.MediaTypeMovie, Resource: catalog.ResourceTrending},
	"top-rated-movies": {Kind: KindList, Title: "Top Rated Movies", Icon: "star", MediaType: catalog.MediaTypeMovie, Resource: catalog.ResourceTopRated},
	"popular-movies":   {Kind: KindList, Title: "Popular Movies", Icon: "flame", MediaType: catalog.MediaTypeMovie, Resource: catalog.ResourcePopular},
	"now-playing":      {Kind: KindList, Title: "Now Playing", Icon: "clapperboard", MediaType: catalog.MediaTypeMovie, Resource: catalog.ResourceNowPlaying},
	"upcoming":         {Kind: KindList, Title: "Upcoming Movies", Icon: "calendar", MediaType: catalog.MediaTypeMovie, Resource: catalog.ResourceUpcoming},
	"trending-tv":      {Kind: KindList, Title: "Trending TV Shows", Icon: "tv", MediaType: catalog.MediaTypeTV, Resource: catalog.ResourceTrending},
	"top-rated-tv":     {Kind: KindList, Title: "Top Rated TV Shows", Icon: "trophy", MediaType: catalog.MediaTypeTV, Resource: catalog.ResourceTopRated},
	"popular-tv":       {Kind: KindList, Title: "Popular TV Shows", Icon: "flame", MediaType: catalog.MediaTypeTV, Resource: catalog.ResourcePopular},
	"airing-today":     {Kind: KindList, Title: "Airing Today", Icon: "tv", MediaType: catalog.MediaTypeTV, Resource: catalog.ResourceAiringToday},
	"on-the-air":       {Kind: KindList, Title: "On The Air", Icon: "radio", MediaType: catalog.MediaTypeTV, Resource: catalog.ResourceOnTheAir},

	// Legacy alias kept from the old navigation chrome.
	"trending": {Kind: KindList, Title: "Trending Now", Icon: "film", MediaType: catalog.MediaTypeMovie, Resource: catalog.ResourceTrending},
}

type genreEntry struct {
	name      string
	mediaType string
}

// builtinGenres seeds the resolver so genre routes work even when the startup
// genre fetch never succeeds.
var builtinGenres = map[int64]genreEntry{
	28:    {"Action", catalog.MediaTypeMovie},
	12:    {"Adventure", catalog.MediaTypeMovie},
	16:    {"Animation", catalog.MediaTypeMovie},
	35:    {"Comedy", catalog.MediaTypeMovie},
	80:    {"Crime", catalog.MediaTypeMovie},
	99:    {"Documentary", catalog.MediaTypeMovie},
	18:    {"Drama", catalog.MediaTypeMovie},
	14:    {"Fantasy", catalog.MediaTypeMovie},
	27:    {"Horror", catalog.MediaTypeMovie},
	9648:  {"Mystery", catalog.MediaTypeMovie},
	10749: {"Romance", catalog.MediaTypeMovie},
	878:   {"Science Fiction", catalog.MediaTypeMovie},
	53:    {"Thriller", catalog.MediaTypeMovie},
	37:    {"Western", catalog.MediaTypeMovie},
	10759: {"Action & Adventure", catalog.MediaTypeTV},
	10764: {"Reality", catalog.MediaTypeTV},
	10765: {"Sci-Fi & Fantasy", catalog.MediaTypeTV},
}

// Resolver maps route keys to category descriptors. The static list table is
// fixed; the genre table can be refreshed from upstream after startup warmup.
type Resolver struct {
	mu     sync.RWMutex
	genres map[int64]genreEntry
}

func NewResolver() *Resolver {
	genres := make(map[int64]genreEntry, len(builtinGenres))
	for id, entry := range builtinGenres {
		genres[id] = entry
	}
	return &Resolver{genres: genres}
}

// SetGenres merges an upstream genre table for one media type into the
// resolver. Movie entries win on id collisions so genre routes keep the
// movie-first behavior of the category page.
func (r *Resolver) SetGenres(mediaType string, genres []models.Genre) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range genres {
		if existing, ok := r.genres[g.ID]; ok && existing.mediaType == catalog.MediaTypeMovie && mediaType != catalog.MediaTypeMovie {
			continue
		}
		r.genres[g.ID] = genreEntry{name: g.Name, mediaType: mediaType}
	}
}

// Resolve maps a route key to its descriptor. Keys come in three shapes:
// known category names, numeric genre ids, and the literal "search". Anything
// else resolves to a KindUnknown descriptor.
func (r *Resolver) Resolve(key string) Descriptor {
	key = strings.TrimSpace(key)

	if key == "search" {
		return Descriptor{
			Key:       key,
			Kind:      KindSearch,
			Title:     "Search Results",
			Icon:      "search",
			MediaType: catalog.MediaTypeMulti,
		}
	}

	if desc, ok := staticLists[key]; ok {
		desc.Key = key
		return desc
	}

	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		r.mu.RLock()
		entry, ok := r.genres[id]
		r.mu.RUnlock()
		if ok {
			return Descriptor{
				Key:       key,
				Kind:      KindGenre,
				Title:     genreTitle(entry),
				Icon:      "tags",
				MediaType: entry.mediaType,
				GenreID:   id,
			}
		}
	}

	return Descriptor{Key: key, Kind: KindUnknown}
}

func genreTitle(entry genreEntry) string {
	if entry.mediaType == catalog.MediaTypeTV {
		return entry.name + " TV Shows"
	}
	return entry.name + " Movies"
}
