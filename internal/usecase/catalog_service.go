package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidSearchType is returned when the search type is not a TMDB search kind.
	ErrInvalidSearchType = errors.New("type must be one of movie, tv, person, multi")
	// ErrEmptyQuery is returned when a search has no query text.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrInvalidPage is returned when a page number is outside TMDB's range.
	ErrInvalidPage = errors.New("page must be between 1 and 500")
	// ErrInvalidID is returned when a path identifier is not a positive integer.
	ErrInvalidID = errors.New("id must be a positive integer")
)

// MaxPage is the highest page TMDB serves.
const MaxPage = 500

const (
	appendDetails = "videos,credits,recommendations"
	appendCredits = "movie_credits,tv_credits"
)

var searchTypes = map[string]bool{
	"movie":  true,
	"tv":     true,
	"person": true,
	"multi":  true,
}

// MetadataClient fetches JSON documents from the metadata upstream.
type MetadataClient interface {
	Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
}

// CatalogService defines the metadata operations exposed under /api.
// Every method returns the JSON document to send to the client.
type CatalogService interface {
	// Discover returns this week's trending movies and series.
	Discover(ctx context.Context) (json.RawMessage, error)

	// Search runs a TMDB search of the given kind.
	Search(ctx context.Context, query, kind string, page int) (json.RawMessage, error)

	// Genres returns the movie genre list.
	Genres(ctx context.Context) (json.RawMessage, error)

	// DiscoverByGenre returns movies of a genre.
	DiscoverByGenre(ctx context.Context, genreID int64, page int) (json.RawMessage, error)

	// Season returns the episodes of one season of a series.
	Season(ctx context.Context, tvID, season int64) (json.RawMessage, error)

	// Movie returns movie details with videos, credits and recommendations.
	Movie(ctx context.Context, id int64) (json.RawMessage, error)

	// TV returns series details with videos, credits and recommendations.
	TV(ctx context.Context, id int64) (json.RawMessage, error)

	// Person returns a person with their movie and TV credits.
	Person(ctx context.Context, id int64) (json.RawMessage, error)
}

type catalogService struct {
	client MetadataClient
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(client MetadataClient) CatalogService {
	return &catalogService{client: client}
}

// discoverResponse is the combined trending document.
type discoverResponse struct {
	Movies json.RawMessage `json:"movies"`
	Series json.RawMessage `json:"series"`
}

// Discover fetches the two trending lists in parallel. Either failure fails the whole call.
func (s *catalogService) Discover(ctx context.Context) (json.RawMessage, error) {
	var out discoverResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := s.results(gctx, "/trending/movie/week")
		out.Movies = results
		return err
	})
	g.Go(func() error {
		results, err := s.results(gctx, "/trending/tv/week")
		out.Series = results
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal discover: %w", err)
	}
	return body, nil
}

func (s *catalogService) Search(ctx context.Context, query, kind string, page int) (json.RawMessage, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if !searchTypes[kind] {
		return nil, ErrInvalidSearchType
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	return s.client.Get(ctx, "/search/"+kind, params)
}

// Genres unwraps the "genres" array from the TMDB document.
func (s *catalogService) Genres(ctx context.Context) (json.RawMessage, error) {
	body, err := s.client.Get(ctx, "/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}
	return field(body, "genres")
}

func (s *catalogService) DiscoverByGenre(ctx context.Context, genreID int64, page int) (json.RawMessage, error) {
	if genreID <= 0 {
		return nil, ErrInvalidID
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("with_genres", strconv.FormatInt(genreID, 10))
	params.Set("page", strconv.Itoa(page))
	return s.client.Get(ctx, "/discover/movie", params)
}

func (s *catalogService) Season(ctx context.Context, tvID, season int64) (json.RawMessage, error) {
	if tvID <= 0 || season <= 0 {
		return nil, ErrInvalidID
	}
	return s.client.Get(ctx, fmt.Sprintf("/tv/%d/season/%d", tvID, season), nil)
}

func (s *catalogService) Movie(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.details(ctx, "/movie/", id, appendDetails)
}

func (s *catalogService) TV(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.details(ctx, "/tv/", id, appendDetails)
}

func (s *catalogService) Person(ctx context.Context, id int64) (json.RawMessage, error) {
	return s.details(ctx, "/person/", id, appendCredits)
}

func (s *catalogService) details(ctx context.Context, prefix string, id int64, appendTo string) (json.RawMessage, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	params := url.Values{}
	params.Set("append_to_response", appendTo)
	return s.client.Get(ctx, prefix+strconv.FormatInt(id, 10), params)
}

func (s *catalogService) results(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := s.client.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return field(body, "results")
}

// field extracts one top-level member of a JSON object. A missing member yields null.
func field(body json.RawMessage, name string) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if v, ok := doc[name]; ok {
		return v, nil
	}
	return json.RawMessage("null"), nil
}

func validatePage(page int) error {
	if page < 1 || page > MaxPage {
		return ErrInvalidPage
	}
	return nil
}
