package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"reelview/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original" to keep payloads small.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
	tmdbProfileSize  = "w185"
	tmdbLogoSize     = "w92"

	// One fixed timeout per call; there are no retries on catalog requests,
	// a failed call either degrades to an empty page or surfaces as an error.
	requestTimeout = 10 * time.Second
)

// ErrNotFound reports that an id resolved on neither the movie nor the tv
// detail endpoint.
var ErrNotFound = errors.New("title not found")

var errNotConfigured = errors.New("tmdb api key not configured")

// Media types accepted across the catalog surface.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
	MediaTypeMulti = "multi"
)

// List resources understood by FetchList.
const (
	ResourcePopular     = "popular"
	ResourceTrending    = "trending"
	ResourceTopRated    = "top-rated"
	ResourceNowPlaying  = "now-playing"
	ResourceUpcoming    = "upcoming"
	ResourceAiringToday = "airing-today"
	ResourceOnTheAir    = "on-the-air"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: requestTimeout}
	}
	return &tmdbClient{
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		httpc:    httpc,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET performs a single GET against the upstream API, injecting the api_key
// and language query parameters, and decodes the JSON body into v. A 404
// wraps ErrNotFound so detail callers can drive the movie→tv fallback.
func (c *tmdbClient) doGET(ctx context.Context, params url.Values, v any, segments ...string) error {
	if !c.isConfigured() {
		return errNotConfigured
	}

	endpoint, err := url.JoinPath(tmdbBaseURL, segments...)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("api_key", c.apiKey)
	if lang := strings.TrimSpace(c.language); lang != "" {
		q.Set("language", normalizeLanguage(lang))
	} else {
		q.Set("language", "en-US")
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("tmdb %s: %w", strings.Join(segments, "/"), ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tmdb %s failed: %s", strings.Join(segments, "/"), resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

type tmdbListItem struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	MediaType    string  `json:"media_type"`
	GenreIDs     []int64 `json:"genre_ids"`
}

type tmdbListResponse struct {
	Page         int            `json:"page"`
	Results      []tmdbListItem `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

func (r tmdbListResponse) toResultPage(mediaType string) models.ResultPage {
	items := make([]models.CatalogItem, 0, len(r.Results))
	for _, row := range r.Results {
		// Multi-search interleaves people with titles; skip anything that is
		// neither a movie nor a series.
		if row.MediaType == "person" {
			continue
		}
		items = append(items, itemFromRow(mediaType, row))
	}
	return models.ResultPage{
		Items:        items,
		Page:         r.Page,
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
	}
}

func itemFromRow(mediaType string, row tmdbListItem) models.CatalogItem {
	mt := mediaType
	if mt == MediaTypeMulti || mt == "" {
		mt = row.MediaType
		if mt != MediaTypeMovie {
			mt = MediaTypeTV
		}
	}
	item := models.CatalogItem{
		ID:          row.ID,
		Title:       pickTitle(mt, row.Name, row.Title),
		Overview:    row.Overview,
		MediaType:   mt,
		PosterPath:  row.PosterPath,
		VoteAverage: row.VoteAverage,
		Popularity:  row.Popularity,
		ReleaseDate: pickDate(row.ReleaseDate, row.FirstAirDate),
		GenreIDs:    row.GenreIDs,
	}
	if poster := buildImage(row.PosterPath, tmdbPosterSize, "poster"); poster != nil {
		item.Poster = poster
	}
	if backdrop := buildImage(row.BackdropPath, tmdbBackdropSize, "backdrop"); backdrop != nil {
		item.Backdrop = backdrop
	}
	return item
}

func listEndpoint(mediaType, resource string) ([]string, error) {
	switch resource {
	case ResourceTrending:
		return []string{"trending", mediaType, "day"}, nil
	case ResourcePopular:
		return []string{mediaType, "popular"}, nil
	case ResourceTopRated:
		return []string{mediaType, "top_rated"}, nil
	case ResourceNowPlaying:
		return []string{"movie", "now_playing"}, nil
	case ResourceUpcoming:
		return []string{"movie", "upcoming"}, nil
	case ResourceAiringToday:
		return []string{"tv", "airing_today"}, nil
	case ResourceOnTheAir:
		return []string{"tv", "on_the_air"}, nil
	default:
		return nil, fmt.Errorf("unknown list resource %q", resource)
	}
}

func (c *tmdbClient) list(ctx context.Context, mediaType, resource string, page int) (models.ResultPage, error) {
	segments, err := listEndpoint(mediaType, resource)
	if err != nil {
		return models.ResultPage{}, err
	}
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("include_adult", "false")

	var payload tmdbListResponse
	if err := c.doGET(ctx, params, &payload, segments...); err != nil {
		return models.ResultPage{}, err
	}
	return payload.toResultPage(mediaType), nil
}

func (c *tmdbClient) discoverByGenre(ctx context.Context, mediaType string, genreID int64, page int) (models.ResultPage, error) {
	params := url.Values{}
	params.Set("with_genres", fmt.Sprintf("%d", genreID))
	params.Set("sort_by", "popularity.desc")
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("include_adult", "false")

	var payload tmdbListResponse
	if err := c.doGET(ctx, params, &payload, "discover", mediaType); err != nil {
		return models.ResultPage{}, err
	}
	return payload.toResultPage(mediaType), nil
}

func (c *tmdbClient) search(ctx context.Context, mediaType, query string, page int) (models.ResultPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("include_adult", "false")

	var payload tmdbListResponse
	if err := c.doGET(ctx, params, &payload, "search", mediaType); err != nil {
		return models.ResultPage{}, err
	}
	return payload.toResultPage(mediaType), nil
}

type tmdbDetailsResponse struct {
	tmdbListItem
	Tagline         string         `json:"tagline"`
	Status          string         `json:"status"`
	Runtime         int            `json:"runtime"`
	NumberOfSeasons int            `json:"number_of_seasons"`
	Genres          []models.Genre `json:"genres"`
	IMDBID          string         `json:"imdb_id"`
	Homepage        string         `json:"homepage"`
}

func (r tmdbDetailsResponse) toDetails(mediaType string) *models.TitleDetails {
	return &models.TitleDetails{
		CatalogItem:     itemFromRow(mediaType, r.tmdbListItem),
		Tagline:         r.Tagline,
		Status:          r.Status,
		Runtime:         r.Runtime,
		NumberOfSeasons: r.NumberOfSeasons,
		Genres:          r.Genres,
		IMDBID:          strings.TrimSpace(r.IMDBID),
		Homepage:        r.Homepage,
	}
}

func (c *tmdbClient) movieDetails(ctx context.Context, id int64) (*models.TitleDetails, error) {
	var payload tmdbDetailsResponse
	if err := c.doGET(ctx, nil, &payload, "movie", fmt.Sprintf("%d", id)); err != nil {
		return nil, err
	}
	return payload.toDetails(MediaTypeMovie), nil
}

func (c *tmdbClient) tvDetails(ctx context.Context, id int64) (*models.TitleDetails, error) {
	var payload tmdbDetailsResponse
	if err := c.doGET(ctx, nil, &payload, "tv", fmt.Sprintf("%d", id)); err != nil {
		return nil, err
	}
	return payload.toDetails(MediaTypeTV), nil
}

type tmdbCreditsResponse struct {
	Cast []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Character   string `json:"character"`
		ProfilePath string `json:"profile_path"`
		Order       int    `json:"order"`
	} `json:"cast"`
	Crew []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Job         string `json:"job"`
		Department  string `json:"department"`
		ProfilePath string `json:"profile_path"`
	} `json:"crew"`
}

func (c *tmdbClient) credits(ctx context.Context, mediaType string, id int64) (models.Credits, error) {
	var payload tmdbCreditsResponse
	if err := c.doGET(ctx, nil, &payload, mediaType, fmt.Sprintf("%d", id), "credits"); err != nil {
		return models.Credits{}, err
	}

	credits := models.Credits{
		Cast: make([]models.CastMember, 0, len(payload.Cast)),
		Crew: make([]models.CrewMember, 0, len(payload.Crew)),
	}
	for _, member := range payload.Cast {
		credits.Cast = append(credits.Cast, models.CastMember{
			ID:          member.ID,
			Name:        member.Name,
			Character:   member.Character,
			ProfilePath: member.ProfilePath,
			Profile:     buildImage(member.ProfilePath, tmdbProfileSize, "profile"),
			Order:       member.Order,
		})
	}
	for _, member := range payload.Crew {
		credits.Crew = append(credits.Crew, models.CrewMember{
			ID:         member.ID,
			Name:       member.Name,
			Job:        member.Job,
			Department: member.Department,
			Profile:    buildImage(member.ProfilePath, tmdbProfileSize, "profile"),
		})
	}
	return credits, nil
}

// related fetches one of the paginated sub-resources (similar or
// recommendations) for a title.
func (c *tmdbClient) related(ctx context.Context, mediaType, kind string, id int64, page int) (models.ResultPage, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var payload tmdbListResponse
	if err := c.doGET(ctx, params, &payload, mediaType, fmt.Sprintf("%d", id), kind); err != nil {
		return models.ResultPage{}, err
	}
	return payload.toResultPage(mediaType), nil
}

type tmdbVideosResponse struct {
	Results []struct {
		ID          string `json:"id"`
		Key         string `json:"key"`
		Name        string `json:"name"`
		Site        string `json:"site"`
		Type        string `json:"type"`
		Official    bool   `json:"official"`
		PublishedAt string `json:"published_at"`
		Size        int    `json:"size"`
	} `json:"results"`
}

func (c *tmdbClient) videos(ctx context.Context, mediaType string, id int64) ([]models.Video, error) {
	var payload tmdbVideosResponse
	if err := c.doGET(ctx, nil, &payload, mediaType, fmt.Sprintf("%d", id), "videos"); err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(payload.Results))
	for _, v := range payload.Results {
		key := strings.TrimSpace(v.Key)
		if key == "" {
			continue
		}
		video := models.Video{
			ID:          v.ID,
			Key:         key,
			Name:        strings.TrimSpace(v.Name),
			Site:        strings.TrimSpace(v.Site),
			Type:        strings.TrimSpace(v.Type),
			Official:    v.Official,
			PublishedAt: strings.TrimSpace(v.PublishedAt),
			Resolution:  v.Size,
		}
		switch strings.ToLower(video.Site) {
		case "youtube":
			video.URL = fmt.Sprintf("https://www.youtube.com/watch?v=%s", key)
			video.EmbedURL = fmt.Sprintf("https://www.youtube.com/embed/%s", key)
		case "vimeo":
			video.URL = fmt.Sprintf("https://vimeo.com/%s", key)
			video.EmbedURL = fmt.Sprintf("https://player.vimeo.com/video/%s", key)
		default:
			video.URL = key
		}
		videos = append(videos, video)
	}
	return videos, nil
}

type tmdbReviewsResponse struct {
	Results []struct {
		ID            string `json:"id"`
		Author        string `json:"author"`
		Content       string `json:"content"`
		CreatedAt     string `json:"created_at"`
		URL           string `json:"url"`
		AuthorDetails struct {
			Rating float64 `json:"rating"`
		} `json:"author_details"`
	} `json:"results"`
}

func (c *tmdbClient) reviews(ctx context.Context, mediaType string, id int64, page int) ([]models.Review, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var payload tmdbReviewsResponse
	if err := c.doGET(ctx, params, &payload, mediaType, fmt.Sprintf("%d", id), "reviews"); err != nil {
		return nil, err
	}

	reviews := make([]models.Review, 0, len(payload.Results))
	for _, r := range payload.Results {
		reviews = append(reviews, models.Review{
			ID:        r.ID,
			Author:    r.Author,
			Content:   r.Content,
			Rating:    r.AuthorDetails.Rating,
			CreatedAt: r.CreatedAt,
			URL:       r.URL,
		})
	}
	return reviews, nil
}

type tmdbArtwork struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"vote_average"`
	ISO6391     string  `json:"iso_639_1"`
}

type tmdbImagesResponse struct {
	Posters   []tmdbArtwork `json:"posters"`
	Backdrops []tmdbArtwork `json:"backdrops"`
}

func (c *tmdbClient) images(ctx context.Context, mediaType string, id int64) (models.ImageSet, error) {
	// Images are language-tagged upstream; requesting without a language
	// filter returns the full set, so doGET's language injection is fine here
	// because upstream ignores it for this endpoint.
	var payload tmdbImagesResponse
	if err := c.doGET(ctx, nil, &payload, mediaType, fmt.Sprintf("%d", id), "images"); err != nil {
		return models.ImageSet{}, err
	}

	set := models.ImageSet{
		Posters:   make([]models.Artwork, 0, len(payload.Posters)),
		Backdrops: make([]models.Artwork, 0, len(payload.Backdrops)),
	}
	for _, a := range payload.Posters {
		set.Posters = append(set.Posters, artworkFrom(a, tmdbPosterSize))
	}
	for _, a := range payload.Backdrops {
		set.Backdrops = append(set.Backdrops, artworkFrom(a, tmdbBackdropSize))
	}
	return set, nil
}

func artworkFrom(a tmdbArtwork, size string) models.Artwork {
	art := models.Artwork{
		FilePath:    a.FilePath,
		Width:       a.Width,
		Height:      a.Height,
		VoteAverage: a.VoteAverage,
		Language:    a.ISO6391,
	}
	if img := buildImage(a.FilePath, size, ""); img != nil {
		art.URL = img.URL
	}
	return art
}

// tmdbKeywordsResponse covers both shapes upstream uses: "keywords" for
// movies, "results" for series.
type tmdbKeywordsResponse struct {
	Keywords []models.Keyword `json:"keywords"`
	Results  []models.Keyword `json:"results"`
}

func (c *tmdbClient) keywords(ctx context.Context, mediaType string, id int64) ([]models.Keyword, error) {
	var payload tmdbKeywordsResponse
	if err := c.doGET(ctx, nil, &payload, mediaType, fmt.Sprintf("%d", id), "keywords"); err != nil {
		return nil, err
	}
	if len(payload.Keywords) > 0 {
		return payload.Keywords, nil
	}
	return payload.Results, nil
}

type tmdbProvider struct {
	ProviderID      int64  `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

type tmdbCountryProviders struct {
	Link     string         `json:"link"`
	Flatrate []tmdbProvider `json:"flatrate"`
	Rent     []tmdbProvider `json:"rent"`
	Buy      []tmdbProvider `json:"buy"`
}

type tmdbWatchProvidersResponse struct {
	Results map[string]tmdbCountryProviders `json:"results"`
}

func (c *tmdbClient) watchProviders(ctx context.Context, mediaType string, id int64) (models.WatchProviders, error) {
	var payload tmdbWatchProvidersResponse
	if err := c.doGET(ctx, nil, &payload, mediaType, fmt.Sprintf("%d", id), "watch", "providers"); err != nil {
		return models.WatchProviders{}, err
	}

	out := models.WatchProviders{Countries: make(map[string]models.CountryProviders, len(payload.Results))}
	for country, group := range payload.Results {
		out.Countries[country] = models.CountryProviders{
			Link:     group.Link,
			Flatrate: providersFrom(group.Flatrate),
			Rent:     providersFrom(group.Rent),
			Buy:      providersFrom(group.Buy),
		}
	}
	return out, nil
}

func providersFrom(rows []tmdbProvider) []models.Provider {
	if len(rows) == 0 {
		return nil
	}
	providers := make([]models.Provider, 0, len(rows))
	for _, p := range rows {
		providers = append(providers, models.Provider{
			ID:       p.ProviderID,
			Name:     p.ProviderName,
			Logo:     buildImage(p.LogoPath, tmdbLogoSize, "logo"),
			Priority: p.DisplayPriority,
		})
	}
	return providers
}

type tmdbPersonResponse struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Biography          string  `json:"biography"`
	Birthday           string  `json:"birthday"`
	Deathday           string  `json:"deathday"`
	PlaceOfBirth       string  `json:"place_of_birth"`
	KnownForDepartment string  `json:"known_for_department"`
	ProfilePath        string  `json:"profile_path"`
	Popularity         float64 `json:"popularity"`
}

func (c *tmdbClient) person(ctx context.Context, id int64) (*models.Person, error) {
	var payload tmdbPersonResponse
	if err := c.doGET(ctx, nil, &payload, "person", fmt.Sprintf("%d", id)); err != nil {
		return nil, err
	}
	return &models.Person{
		ID:           payload.ID,
		Name:         payload.Name,
		Biography:    payload.Biography,
		Birthday:     payload.Birthday,
		Deathday:     payload.Deathday,
		PlaceOfBirth: payload.PlaceOfBirth,
		KnownFor:     payload.KnownForDepartment,
		Profile:      buildImage(payload.ProfilePath, tmdbProfileSize, "profile"),
		Popularity:   payload.Popularity,
	}, nil
}

type tmdbPersonCreditsResponse struct {
	Cast []tmdbListItem `json:"cast"`
	Crew []tmdbListItem `json:"crew"`
}

func (c *tmdbClient) personCredits(ctx context.Context, id int64) (models.PersonCredits, error) {
	var payload tmdbPersonCreditsResponse
	if err := c.doGET(ctx, nil, &payload, "person", fmt.Sprintf("%d", id), "combined_credits"); err != nil {
		return models.PersonCredits{}, err
	}

	credits := models.PersonCredits{
		Cast: make([]models.CatalogItem, 0, len(payload.Cast)),
		Crew: make([]models.CatalogItem, 0, len(payload.Crew)),
	}
	for _, row := range payload.Cast {
		credits.Cast = append(credits.Cast, itemFromRow(MediaTypeMulti, row))
	}
	for _, row := range payload.Crew {
		credits.Crew = append(credits.Crew, itemFromRow(MediaTypeMulti, row))
	}
	return credits, nil
}

type tmdbGenresResponse struct {
	Genres []models.Genre `json:"genres"`
}

func (c *tmdbClient) genres(ctx context.Context, mediaType string) ([]models.Genre, error) {
	var payload tmdbGenresResponse
	if err := c.doGET(ctx, nil, &payload, "genre", mediaType, "list"); err != nil {
		return nil, err
	}
	return payload.Genres, nil
}

type tmdbConfigurationResponse struct {
	Images struct {
		SecureBaseURL string   `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
		BackdropSizes []string `json:"backdrop_sizes"`
	} `json:"images"`
}

func (c *tmdbClient) configuration(ctx context.Context) (models.UpstreamConfiguration, error) {
	var payload tmdbConfigurationResponse
	if err := c.doGET(ctx, nil, &payload, "configuration"); err != nil {
		return models.UpstreamConfiguration{}, err
	}
	return models.UpstreamConfiguration{
		ImageBaseURL:  payload.Images.SecureBaseURL,
		PosterSizes:   payload.Images.PosterSizes,
		BackdropSizes: payload.Images.BackdropSizes,
	}, nil
}

type tmdbCuratedListResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Items       []tmdbListItem `json:"items"`
	ItemCount   int            `json:"item_count"`
}

func (c *tmdbClient) listByID(ctx context.Context, id int64, page int) (*models.CuratedList, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))

	var payload tmdbCuratedListResponse
	if err := c.doGET(ctx, params, &payload, "list", fmt.Sprintf("%d", id)); err != nil {
		return nil, err
	}

	list := &models.CuratedList{
		ID:          payload.ID,
		Name:        payload.Name,
		Description: payload.Description,
		Items:       make([]models.CatalogItem, 0, len(payload.Items)),
		ItemCount:   payload.ItemCount,
	}
	for _, row := range payload.Items {
		list.Items = append(list.Items, itemFromRow(MediaTypeMulti, row))
	}
	return list, nil
}

func pickTitle(mediaType, seriesName, movieTitle string) string {
	if mediaType == MediaTypeMovie && movieTitle != "" {
		return movieTitle
	}
	if seriesName != "" {
		return seriesName
	}
	return movieTitle
}

func pickDate(movieDate, seriesDate string) string {
	if movieDate != "" {
		return movieDate
	}
	return seriesDate
}

func buildImage(imagePath, size, imageType string) *models.Image {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return nil
	}
	fullPath := path.Join(size, strings.TrimPrefix(trimmed, "/"))
	return &models.Image{
		URL:  fmt.Sprintf("%s/%s", tmdbImageBaseURL, fullPath),
		Type: imageType,
	}
}

func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(lang, "_", "-")
	if len(lang) == 2 {
		return strings.ToLower(lang) + "-US"
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:])
	}
	return "en-US"
}
