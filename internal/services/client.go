// REST implementation of [CatalogService]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "http://localhost:3000/api"
	defaultUserAgent = "moviex/0.1"

	// RequestIDHeader carries a per-request UUID for correlating client and server logs.
	RequestIDHeader = "X-Request-ID"
)

var _ CatalogService = (*CatalogClient)(nil)

// CatalogClient talks to the movie catalog over HTTP.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *log.Logger
}

// ClientOpts configures a [CatalogClient]. Zero values select defaults.
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration // ignored when HTTPClient is set
	RateLimit  float64       // requests per second; 0 disables throttling
	UserAgent  string
	Logger     *log.Logger
}

// NewCatalogClient creates a client for the catalog at opts.BaseURL.
func NewCatalogClient(opts ClientOpts) *CatalogClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		if opts.Timeout > 0 {
			opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
		} else {
			opts.HTTPClient = http.DefaultClient
		}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &CatalogClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
	}
}

// NewCatalogClientFromConfig builds a client from the [api] config section.
func NewCatalogClientFromConfig(cfg shared.APIConfig, logger *log.Logger) *CatalogClient {
	return NewCatalogClient(ClientOpts{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout.Duration,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
}

// BaseURL returns the catalog root all paths are resolved against.
func (c *CatalogClient) BaseURL() string {
	return c.baseURL
}

type usernameBody struct {
	Username string `json:"username"`
}

type favoritedBody struct {
	IsFavorited bool `json:"isFavorited"`
}

// GetAllMovies implements [CatalogService].
func (c *CatalogClient) GetAllMovies(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := c.do(ctx, http.MethodGet, "/getAllMovies", nil, nil, &movies); err != nil {
		return nil, err
	}
	return nonNil(movies), nil
}

// GetMovieByID implements [CatalogService].
func (c *CatalogClient) GetMovieByID(ctx context.Context, id int) (*models.Movie, error) {
	var movie models.Movie
	if err := c.do(ctx, http.MethodGet, "/getMovieById/"+strconv.Itoa(id), nil, nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// AddMovie implements [CatalogService].
func (c *CatalogClient) AddMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error) {
	var movie models.Movie
	if err := c.do(ctx, http.MethodPost, "/addMovie", nil, input, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// EditMovie implements [CatalogService].
func (c *CatalogClient) EditMovie(ctx context.Context, id int, update models.MovieUpdate) (*models.Movie, error) {
	var movie models.Movie
	if err := c.do(ctx, http.MethodPut, "/editMovie/"+strconv.Itoa(id), nil, update, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// DeleteMovie implements [CatalogService].
func (c *CatalogClient) DeleteMovie(ctx context.Context, id int, username string) error {
	return c.do(ctx, http.MethodDelete, "/deleteMovie/"+strconv.Itoa(id), nil, usernameBody{username}, nil)
}

// GetAllFavourites implements [CatalogService].
func (c *CatalogClient) GetAllFavourites(ctx context.Context, username string) ([]models.Movie, error) {
	var movies []models.Movie
	query := url.Values{"username": {username}}
	if err := c.do(ctx, http.MethodGet, "/getAllFavourites", query, nil, &movies); err != nil {
		return nil, err
	}
	return nonNil(movies), nil
}

// SearchFavourites implements [CatalogService].
func (c *CatalogClient) SearchFavourites(ctx context.Context, username, searchTerm string) ([]models.Movie, error) {
	var movies []models.Movie
	query := url.Values{"username": {username}, "searchTerm": {searchTerm}}
	if err := c.do(ctx, http.MethodGet, "/searchFavourites", query, nil, &movies); err != nil {
		return nil, err
	}
	return nonNil(movies), nil
}

// AddToFavourites implements [CatalogService].
func (c *CatalogClient) AddToFavourites(ctx context.Context, movieID int, username string) error {
	return c.do(ctx, http.MethodPost, "/addToFavourites/"+strconv.Itoa(movieID), nil, usernameBody{username}, nil)
}

// RemoveFromFavourites implements [CatalogService].
func (c *CatalogClient) RemoveFromFavourites(ctx context.Context, movieID int, username string) error {
	return c.do(ctx, http.MethodDelete, "/removeFromFavourites/"+strconv.Itoa(movieID), nil, usernameBody{username}, nil)
}

// IsMovieFavorited implements [CatalogService].
func (c *CatalogClient) IsMovieFavorited(ctx context.Context, movieID int, username string) (bool, error) {
	var body favoritedBody
	query := url.Values{"username": {username}}
	if err := c.do(ctx, http.MethodGet, "/isMovieFavorited/"+strconv.Itoa(movieID), query, nil, &body); err != nil {
		return false, err
	}
	return body.IsFavorited, nil
}

// SearchMovies implements [CatalogService].
func (c *CatalogClient) SearchMovies(ctx context.Context, searchTerm string) ([]models.Movie, error) {
	var movies []models.Movie
	query := url.Values{"searchTerm": {searchTerm}}
	if err := c.do(ctx, http.MethodGet, "/searchMovies", query, nil, &movies); err != nil {
		return nil, err
	}
	return nonNil(movies), nil
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Raw performs an arbitrary request against the catalog and returns the undecoded response.
//
// Non-2xx statuses are returned as-is rather than as errors.
func (c *CatalogClient) Raw(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, requestID, err := c.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}

	status, headers, respBody, err := c.send(req, requestID)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{StatusCode: status, Headers: headers, Body: respBody}

	var jsonData any
	if err := json.Unmarshal(respBody, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// do sends a JSON request and decodes a 2xx response into out (when non-nil).
func (c *CatalogClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, requestID, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	status, _, respBody, err := c.send(req, requestID)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		apiErr := newAPIError(status, respBody, requestID)
		c.logger.Warn("catalog request failed", "method", method, "path", path, "status", status, "request_id", requestID)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *CatalogClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, string, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, requestID, nil
}

func (c *CatalogClient) send(req *http.Request, requestID string) (int, http.Header, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return 0, nil, nil, fmt.Errorf("request throttled: %w", err)
		}
	}

	c.logger.Debug("catalog request", "method", req.Method, "url", req.URL.String(), "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, resp.Header, body, nil
}

func nonNil(movies []models.Movie) []models.Movie {
	if movies == nil {
		return []models.Movie{}
	}
	return movies
}
