package models

// Image is a fully-built artwork URL plus its role (poster, backdrop, profile).
type Image struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// CatalogItem is one entry of a list-style catalog response, normalized so
// movies (title/release_date) and series (name/first_air_date) look the same
// to consumers. Items are immutable once built and carry no identity
// guarantees across lists; the same ID can show up in several rows.
type CatalogItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	MediaType   string  `json:"mediaType"` // "movie" or "tv"
	PosterPath  string  `json:"posterPath,omitempty"`
	Poster      *Image  `json:"poster,omitempty"`
	Backdrop    *Image  `json:"backdrop,omitempty"`
	VoteAverage float64 `json:"voteAverage"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	GenreIDs    []int64 `json:"genreIds,omitempty"`
}

// ResultPage is one page of catalog results in upstream order. TotalPages 0
// means no results; callers treat an all-zero page as "empty or failed" and
// render an empty state rather than nil-checking.
type ResultPage struct {
	Items        []CatalogItem `json:"items"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	TotalResults int           `json:"totalResults"`
}

// EmptyResultPage is the well-formed zero-result page returned when a list
// fetch fails. Items is non-nil so it serializes as [] and not null.
func EmptyResultPage() ResultPage {
	return ResultPage{Items: []CatalogItem{}}
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TitleDetails is the detail-page payload for a movie or series.
type TitleDetails struct {
	CatalogItem
	Tagline         string  `json:"tagline,omitempty"`
	Status          string  `json:"status,omitempty"`
	Runtime         int     `json:"runtime,omitempty"` // minutes; 0 for series
	NumberOfSeasons int     `json:"numberOfSeasons,omitempty"`
	Genres          []Genre `json:"genres,omitempty"`
	IMDBID          string  `json:"imdbId,omitempty"`
	Homepage        string  `json:"homepage,omitempty"`
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	Profile     *Image `json:"profile,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`
	Profile    *Image `json:"profile,omitempty"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is a trailer/teaser/clip hosted on an external site.
type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Resolution  int    `json:"resolution,omitempty"`
	URL         string `json:"url,omitempty"`
	EmbedURL    string `json:"embedUrl,omitempty"`
}

type Review struct {
	ID        string  `json:"id"`
	Author    string  `json:"author"`
	Content   string  `json:"content"`
	Rating    float64 `json:"rating,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
	URL       string  `json:"url,omitempty"`
}

// Artwork is a single image variant from the images sub-resource.
type Artwork struct {
	FilePath    string  `json:"filePath"`
	URL         string  `json:"url"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"voteAverage"`
	Language    string  `json:"language,omitempty"`
}

type ImageSet struct {
	Posters   []Artwork `json:"posters"`
	Backdrops []Artwork `json:"backdrops"`
}

type Keyword struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Provider is a single streaming/rental source from the watch-providers
// sub-resource.
type Provider struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Logo     *Image `json:"logo,omitempty"`
	Priority int    `json:"priority"`
}

// CountryProviders groups providers by how the title is available in one
// country. Passed through from upstream without reinterpretation.
type CountryProviders struct {
	Link     string     `json:"link,omitempty"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

type WatchProviders struct {
	Countries map[string]CountryProviders `json:"countries"`
}

type Person struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Biography    string  `json:"biography,omitempty"`
	Birthday     string  `json:"birthday,omitempty"`
	Deathday     string  `json:"deathday,omitempty"`
	PlaceOfBirth string  `json:"placeOfBirth,omitempty"`
	KnownFor     string  `json:"knownFor,omitempty"`
	Profile      *Image  `json:"profile,omitempty"`
	Popularity   float64 `json:"popularity"`
}

// PersonCredits is a person's combined movie and TV credits, cast and crew.
type PersonCredits struct {
	Cast []CatalogItem `json:"cast"`
	Crew []CatalogItem `json:"crew"`
}

// DetailBundle is everything a detail page needs in one response. Sub-resources
// that failed to load come back empty rather than failing the bundle.
type DetailBundle struct {
	Details *TitleDetails `json:"details"`
	Credits Credits       `json:"credits"`
	Similar ResultPage    `json:"similar"`
	Videos  []Video       `json:"videos"`
}

// HomeRow is one shelf on the home screen.
type HomeRow struct {
	Key   string        `json:"key"`
	Title string        `json:"title"`
	Icon  string        `json:"icon"`
	Items []CatalogItem `json:"items"`
}

// UpstreamConfiguration mirrors the upstream /configuration payload subset the
// server cares about (image base URLs and available sizes).
type UpstreamConfiguration struct {
	ImageBaseURL  string   `json:"imageBaseUrl"`
	PosterSizes   []string `json:"posterSizes"`
	BackdropSizes []string `json:"backdropSizes"`
}

// CuratedList is a user-curated upstream list fetched by numeric id.
type CuratedList struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Items       []CatalogItem `json:"items"`
	ItemCount   int           `json:"itemCount"`
}
