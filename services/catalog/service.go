package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sourcegraph/conc/pool"

	"reelview/internal/memcache"
	"reelview/models"
)

// Service is the catalog client: it maps logical catalog queries onto
// upstream calls, memoizes responses through the shared TTL cache, and
// normalizes every list-shaped response into a models.ResultPage.
type Service struct {
	tmdb  *tmdbClient
	cache *memcache.Cache

	mu     sync.RWMutex
	config models.UpstreamConfiguration
	genres map[string][]models.Genre // keyed by media type
}

// NewService builds a catalog service around the given API key and response
// cache. The cache is constructed by the caller so its clock can be injected
// in tests.
func NewService(apiKey, language string, cache *memcache.Cache) *Service {
	return NewServiceWithHTTPClient(apiKey, language, cache, nil)
}

// NewServiceWithHTTPClient is NewService with a custom HTTP client, used by
// tests to stub the transport.
func NewServiceWithHTTPClient(apiKey, language string, cache *memcache.Cache, httpc *http.Client) *Service {
	if cache == nil {
		cache = memcache.New(5*time.Minute, nil)
	}
	return &Service{
		tmdb:   newTMDBClient(apiKey, language, httpc),
		cache:  cache,
		genres: make(map[string][]models.Genre),
	}
}

// cachedFetch returns the memoized value for key when a fresh entry exists,
// otherwise it runs producer, stores the result, and returns it. A failed
// producer propagates its error and leaves no cache entry behind.
func cachedFetch[T any](cache *memcache.Cache, key string, producer func() (T, error)) (T, error) {
	if v, ok := cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := producer()
	if err != nil {
		var zero T
		return zero, err
	}
	cache.Set(key, v)
	return v, nil
}

func cacheKey(parts ...any) string {
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		segs = append(segs, fmt.Sprint(p))
	}
	return strings.Join(segs, "/")
}

// ListQuery is a logical list request: either a named resource or a genre id,
// for one media type.
type ListQuery struct {
	MediaType string
	Resource  string
	GenreID   int64
	Page      int
}

// Validate rejects unknown media types and resources before anything hits the
// network.
func (q ListQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.MediaType,
			validation.Required,
			validation.In(MediaTypeMovie, MediaTypeTV),
		),
		validation.Field(&q.Resource,
			validation.When(q.GenreID == 0,
				validation.Required,
				validation.In(
					ResourcePopular, ResourceTrending, ResourceTopRated,
					ResourceNowPlaying, ResourceUpcoming,
					ResourceAiringToday, ResourceOnTheAir,
				),
			),
		),
	)
}

// FetchList returns one page of a list-style catalog query. It never fails:
// invalid queries, transport errors, bad statuses and decode errors all
// degrade to the empty result page so callers render an empty state instead
// of handling errors.
func (s *Service) FetchList(ctx context.Context, q ListQuery) models.ResultPage {
	if q.Page < 1 {
		q.Page = 1
	}
	if err := q.Validate(); err != nil {
		log.Printf("[catalog] rejecting list query %+v: %v", q, err)
		return models.EmptyResultPage()
	}

	key := cacheKey("list", q.MediaType, q.Resource, q.GenreID, q.Page)
	page, err := cachedFetch(s.cache, key, func() (models.ResultPage, error) {
		if q.GenreID > 0 {
			return s.tmdb.discoverByGenre(ctx, q.MediaType, q.GenreID, q.Page)
		}
		return s.tmdb.list(ctx, q.MediaType, q.Resource, q.Page)
	})
	if err != nil {
		log.Printf("[catalog] list %s/%s page %d failed: %v", q.MediaType, q.Resource, q.Page, err)
		return models.EmptyResultPage()
	}
	return page
}

// Search returns one page of search results for the given media type (movie,
// tv, or multi). Like FetchList it never fails; a failed search comes back as
// the empty page with Page 0, while a successful search with no matches
// echoes the upstream page number (>= 1). Callers use that to tell "no
// results" apart from "request failed". Empty queries are passed through
// as-is; filtering them is the caller's job.
func (s *Service) Search(ctx context.Context, mediaType, query string, page int) models.ResultPage {
	if page < 1 {
		page = 1
	}
	switch mediaType {
	case MediaTypeMovie, MediaTypeTV, MediaTypeMulti:
	default:
		mediaType = MediaTypeMulti
	}

	key := cacheKey("search", mediaType, query, page)
	result, err := cachedFetch(s.cache, key, func() (models.ResultPage, error) {
		return s.tmdb.search(ctx, mediaType, query, page)
	})
	if err != nil {
		log.Printf("[catalog] search %s %q page %d failed: %v", mediaType, query, page, err)
		return models.EmptyResultPage()
	}
	return result
}

// Details resolves a bare numeric id to a title. The route does not know
// whether an id names a movie or a series, so the movie endpoint is tried
// first and the tv endpoint second. The fallback fires only on a movie 404;
// a transport failure propagates as-is so it cannot resolve an id against
// the wrong media type or masquerade as not-found.
func (s *Service) Details(ctx context.Context, id int64) (*models.TitleDetails, error) {
	return cachedFetch(s.cache, cacheKey("details", id), func() (*models.TitleDetails, error) {
		details, movieErr := s.tmdb.movieDetails(ctx, id)
		if movieErr == nil {
			return details, nil
		}
		if !errors.Is(movieErr, ErrNotFound) {
			return nil, fmt.Errorf("title %d details: %w", id, movieErr)
		}

		details, tvErr := s.tmdb.tvDetails(ctx, id)
		if tvErr == nil {
			return details, nil
		}
		if errors.Is(tvErr, ErrNotFound) {
			return nil, fmt.Errorf("title %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("title %d details: %w", id, tvErr)
	})
}

// Credits returns cast and crew for a title.
func (s *Service) Credits(ctx context.Context, mediaType string, id int64) (models.Credits, error) {
	return cachedFetch(s.cache, cacheKey("credits", mediaType, id), func() (models.Credits, error) {
		return s.tmdb.credits(ctx, mediaType, id)
	})
}

// Similar returns titles similar to the given one. List-style: failures
// degrade to the empty page.
func (s *Service) Similar(ctx context.Context, mediaType string, id int64, page int) models.ResultPage {
	return s.relatedPage(ctx, mediaType, "similar", id, page)
}

// Recommendations returns upstream recommendations for the given title.
// List-style: failures degrade to the empty page.
func (s *Service) Recommendations(ctx context.Context, mediaType string, id int64, page int) models.ResultPage {
	return s.relatedPage(ctx, mediaType, "recommendations", id, page)
}

func (s *Service) relatedPage(ctx context.Context, mediaType, kind string, id int64, page int) models.ResultPage {
	if page < 1 {
		page = 1
	}
	key := cacheKey(kind, mediaType, id, page)
	result, err := cachedFetch(s.cache, key, func() (models.ResultPage, error) {
		return s.tmdb.related(ctx, mediaType, kind, id, page)
	})
	if err != nil {
		log.Printf("[catalog] %s %s/%d page %d failed: %v", kind, mediaType, id, page, err)
		return models.EmptyResultPage()
	}
	return result
}

// Videos returns trailers and clips for a title.
func (s *Service) Videos(ctx context.Context, mediaType string, id int64) ([]models.Video, error) {
	return cachedFetch(s.cache, cacheKey("videos", mediaType, id), func() ([]models.Video, error) {
		return s.tmdb.videos(ctx, mediaType, id)
	})
}

// Reviews returns one page of reviews for a title.
func (s *Service) Reviews(ctx context.Context, mediaType string, id int64, page int) ([]models.Review, error) {
	if page < 1 {
		page = 1
	}
	return cachedFetch(s.cache, cacheKey("reviews", mediaType, id, page), func() ([]models.Review, error) {
		return s.tmdb.reviews(ctx, mediaType, id, page)
	})
}

// Images returns the poster and backdrop variants for a title.
func (s *Service) Images(ctx context.Context, mediaType string, id int64) (models.ImageSet, error) {
	return cachedFetch(s.cache, cacheKey("images", mediaType, id), func() (models.ImageSet, error) {
		return s.tmdb.images(ctx, mediaType, id)
	})
}

// Keywords returns the keyword tags for a title.
func (s *Service) Keywords(ctx context.Context, mediaType string, id int64) ([]models.Keyword, error) {
	return cachedFetch(s.cache, cacheKey("keywords", mediaType, id), func() ([]models.Keyword, error) {
		return s.tmdb.keywords(ctx, mediaType, id)
	})
}

// WatchProviders returns where a title can be streamed, rented or bought,
// grouped by country.
func (s *Service) WatchProviders(ctx context.Context, mediaType string, id int64) (models.WatchProviders, error) {
	return cachedFetch(s.cache, cacheKey("providers", mediaType, id), func() (models.WatchProviders, error) {
		return s.tmdb.watchProviders(ctx, mediaType, id)
	})
}

// Person returns a person's details.
func (s *Service) Person(ctx context.Context, id int64) (*models.Person, error) {
	return cachedFetch(s.cache, cacheKey("person", id), func() (*models.Person, error) {
		return s.tmdb.person(ctx, id)
	})
}

// PersonCredits returns a person's combined movie and TV credits.
func (s *Service) PersonCredits(ctx context.Context, id int64) (models.PersonCredits, error) {
	return cachedFetch(s.cache, cacheKey("person-credits", id), func() (models.PersonCredits, error) {
		return s.tmdb.personCredits(ctx, id)
	})
}

// CuratedList returns an upstream user-curated list by numeric id.
func (s *Service) CuratedList(ctx context.Context, id int64, page int) (*models.CuratedList, error) {
	if page < 1 {
		page = 1
	}
	return cachedFetch(s.cache, cacheKey("curated", id, page), func() (*models.CuratedList, error) {
		return s.tmdb.listByID(ctx, id, page)
	})
}

// Genres returns the genre table for one media type, from cache or upstream.
func (s *Service) Genres(ctx context.Context, mediaType string) ([]models.Genre, error) {
	s.mu.RLock()
	if cached, ok := s.genres[mediaType]; ok && len(cached) > 0 {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	genres, err := s.tmdb.genres(ctx, mediaType)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.genres[mediaType] = genres
	s.mu.Unlock()
	return genres, nil
}

// Configuration returns the upstream image configuration captured during
// warmup.
func (s *Service) Configuration() models.UpstreamConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// DetailBundle fetches everything a detail page needs: the title details plus
// credits, similar titles and videos. The sub-resources are fetched
// concurrently; a sub-resource that fails comes back as an empty placeholder
// so a partial detail page still renders. Only a details failure fails the
// bundle.
func (s *Service) DetailBundle(ctx context.Context, id int64) (*models.DetailBundle, error) {
	details, err := s.Details(ctx, id)
	if err != nil {
		return nil, err
	}

	bundle := &models.DetailBundle{
		Details: details,
		Credits: models.Credits{Cast: []models.CastMember{}, Crew: []models.CrewMember{}},
		Similar: models.EmptyResultPage(),
		Videos:  []models.Video{},
	}
	mediaType := details.MediaType

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		credits, err := s.Credits(ctx, mediaType, id)
		if err != nil {
			log.Printf("[catalog] detail bundle %d: credits unavailable: %v", id, err)
			return nil
		}
		bundle.Credits = credits
		return nil
	})
	p.Go(func(ctx context.Context) error {
		bundle.Similar = s.Similar(ctx, mediaType, id, 1)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		videos, err := s.Videos(ctx, mediaType, id)
		if err != nil {
			log.Printf("[catalog] detail bundle %d: videos unavailable: %v", id, err)
			return nil
		}
		bundle.Videos = videos
		return nil
	})
	// Tasks swallow their own failures, so Wait cannot return an error here.
	_ = p.Wait()

	return bundle, nil
}

// homeShelf describes one fixed row of the home screen.
type homeShelf struct {
	Key       string
	Title     string
	Icon      string
	MediaType string
	Resource  string
}

var homeShelves = []homeShelf{
	{Key: "trending-movies", Title: "Trending Movies", Icon: "film", MediaType: MediaTypeMovie, Resource: ResourceTrending},
	{Key: "top-rated-movies", Title: "Top Rated Movies", Icon: "star", MediaType: MediaTypeMovie, Resource: ResourceTopRated},
	{Key: "trending-tv", Title: "Trending TV", Icon: "tv", MediaType: MediaTypeTV, Resource: ResourceTrending},
	{Key: "top-rated-tv", Title: "Top Rated TV", Icon: "trophy", MediaType: MediaTypeTV, Resource: ResourceTopRated},
}

// HomeRows fetches the home screen shelves concurrently. A shelf whose fetch
// failed comes back with no items rather than dropping the row.
func (s *Service) HomeRows(ctx context.Context) []models.HomeRow {
	rows := make([]models.HomeRow, len(homeShelves))

	p := pool.New().WithContext(ctx)
	for i, shelf := range homeShelves {
		p.Go(func(ctx context.Context) error {
			page := s.FetchList(ctx, ListQuery{MediaType: shelf.MediaType, Resource: shelf.Resource, Page: 1})
			rows[i] = models.HomeRow{
				Key:   shelf.Key,
				Title: shelf.Title,
				Icon:  shelf.Icon,
				Items: page.Items,
			}
			return nil
		})
	}
	_ = p.Wait()

	return rows
}

// Warmup fetches the upstream configuration and both genre tables with a few
// retries. It runs once at startup; failure is non-fatal because the category
// resolver carries a built-in genre table.
func (s *Service) Warmup(ctx context.Context) error {
	return retry.Do(
		func() error {
			config, err := s.tmdb.configuration(ctx)
			if err != nil {
				return err
			}
			movieGenres, err := s.tmdb.genres(ctx, MediaTypeMovie)
			if err != nil {
				return err
			}
			tvGenres, err := s.tmdb.genres(ctx, MediaTypeTV)
			if err != nil {
				return err
			}

			s.mu.Lock()
			s.config = config
			s.genres[MediaTypeMovie] = movieGenres
			s.genres[MediaTypeTV] = tvGenres
			s.mu.Unlock()

			log.Printf("[catalog] warmup complete: %d movie genres, %d tv genres", len(movieGenres), len(tvGenres))
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
	)
}
