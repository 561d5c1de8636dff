package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kapu/anirec-backend-go/internal/constants"
	"github.com/kapu/anirec-backend-go/internal/domain"
	"github.com/kapu/anirec-backend-go/internal/service/cache"
	"github.com/kapu/anirec-backend-go/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPopularityRank is assigned when the catalog omits a popularity rank.
// High sentinel so unranked titles sort as maximally obscure.
const DefaultPopularityRank = 99999

const (
	nodeFields    = "mean,popularity,num_list_users,genres,themes,studios,main_picture"
	historyFields = nodeFields + ",list_status{score}"
	historyStatus = "completed"
)

// MALNamedRaw is a named catalog object ({id, name}) as MAL returns genres,
// themes and studios.
type MALNamedRaw struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MALPictureRaw is the main_picture object.
type MALPictureRaw struct {
	Medium *string `json:"medium,omitempty"`
	Large  *string `json:"large,omitempty"`
}

// MALAnimeRaw is the raw MAL anime node. Optional fields are pointers so that
// absence is distinguishable from zero; mapping applies documented defaults.
type MALAnimeRaw struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	MainPicture  *MALPictureRaw `json:"main_picture,omitempty"`
	Mean         *float64       `json:"mean,omitempty"`
	Popularity   *int           `json:"popularity,omitempty"`
	NumListUsers *int           `json:"num_list_users,omitempty"`
	Genres       []MALNamedRaw  `json:"genres,omitempty"`
	Themes       []MALNamedRaw  `json:"themes,omitempty"`
	Studios      []MALNamedRaw  `json:"studios,omitempty"`
}

// MALListStatusRaw is the per-user list_status object on animelist entries.
type MALListStatusRaw struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
}

type malListEntryRaw struct {
	Node       MALAnimeRaw       `json:"node"`
	ListStatus *MALListStatusRaw `json:"list_status,omitempty"`
}

type malListResponseRaw struct {
	Data []malListEntryRaw `json:"data"`
}

// MALService is the typed client for the MyAnimeList v2 API. Calls carry the
// user's bearer token, run with a short timeout and are never retried: an
// upstream failure is terminal for the lane that issued it.
type MALService struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.CacheService
	logger     *zap.Logger
}

func NewMALService(baseURL string, cacheSvc *cache.CacheService, logger *zap.Logger) *MALService {
	if baseURL == "" {
		baseURL = constants.APIConfig.MALBaseURL
	}
	return &MALService{
		httpClient: &http.Client{
			Timeout: constants.APIConfig.MALTimeout,
		},
		baseURL: baseURL,
		cache:   cacheSvc,
		logger:  logger,
	}
}

// doRequest performs a single authenticated GET against the MAL API.
func (m *MALService) doRequest(ctx context.Context, token, path string, params url.Values) ([]byte, error) {
	if token == "" {
		return nil, errors.NewAuthError("missing MAL access token")
	}

	reqURL := m.baseURL + path
	if params != nil {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		apiErr := errors.NewAPIError("MAL request failed", 502, map[string]any{
			"path": path,
		})
		apiErr.Cause = err
		return nil, apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errors.NewAuthError("MAL rejected the access token")
	}

	if resp.StatusCode != http.StatusOK {
		m.logger.Warn("MAL non-200 response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewAPIError(fmt.Sprintf("MAL error: %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"path": path,
			"body": string(body),
		})
	}

	return body, nil
}

// FetchWatchHistory returns the user's completed list entries, rated metadata
// included. Cached per user for a short window; the token itself never
// appears in a cache key.
func (m *MALService) FetchWatchHistory(ctx context.Context, token string) ([]*domain.WatchHistoryEntry, error) {
	cacheKey := fmt.Sprintf("mal:history:%s", tokenDigest(token))

	var cached []*domain.WatchHistoryEntry
	if m.cacheGet(ctx, cacheKey, &cached) && cached != nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("status", historyStatus)
	params.Set("limit", strconv.Itoa(constants.APIConfig.HistoryPageLimit))
	params.Set("fields", historyFields)

	body, err := m.doRequest(ctx, token, "/users/@me/animelist", params)
	if err != nil {
		m.logger.Error("Failed to fetch watch history", zap.Error(err))
		return nil, err
	}

	var raw malListResponseRaw
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	entries := make([]*domain.WatchHistoryEntry, 0, len(raw.Data))
	for _, item := range raw.Data {
		entries = append(entries, m.mapHistoryEntry(&item))
	}

	m.cacheSet(ctx, cacheKey, entries, constants.CacheTTL.WatchHistory)

	return entries, nil
}

// FetchPopularityRanking returns the catalog's popularity-ranked titles.
func (m *MALService) FetchPopularityRanking(ctx context.Context, token string, limit int) ([]*domain.CandidateAnime, error) {
	cacheKey := fmt.Sprintf("mal:ranking:bypopularity:%d", limit)

	var cached []*domain.CandidateAnime
	if m.cacheGet(ctx, cacheKey, &cached) && cached != nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("ranking_type", "bypopularity")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", nodeFields)

	body, err := m.doRequest(ctx, token, "/anime/ranking", params)
	if err != nil {
		m.logger.Error("Failed to fetch popularity ranking", zap.Error(err))
		return nil, err
	}

	candidates, err := m.parseCandidateList(body)
	if err != nil {
		return nil, err
	}

	m.cacheSet(ctx, cacheKey, candidates, constants.CacheTTL.Ranking)

	return candidates, nil
}

// SearchByQuery issues a free-text search. MAL has no genre or studio filter
// endpoint, so lanes use the tag name itself as the query string.
func (m *MALService) SearchByQuery(ctx context.Context, token, query string, limit int) ([]*domain.CandidateAnime, error) {
	cacheKey := fmt.Sprintf("mal:search:%s:%d", query, limit)

	var cached []*domain.CandidateAnime
	if m.cacheGet(ctx, cacheKey, &cached) && cached != nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", nodeFields)

	body, err := m.doRequest(ctx, token, "/anime", params)
	if err != nil {
		m.logger.Error("Failed to search anime",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, err
	}

	candidates, err := m.parseCandidateList(body)
	if err != nil {
		return nil, err
	}

	m.cacheSet(ctx, cacheKey, candidates, constants.CacheTTL.Search)

	return candidates, nil
}

// cacheGet reports whether dest was populated. A nil cache disables caching.
func (m *MALService) cacheGet(ctx context.Context, key string, dest any) bool {
	if m.cache == nil {
		return false
	}
	return m.cache.Get(ctx, key, dest) == nil
}

func (m *MALService) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if m.cache == nil {
		return
	}
	_ = m.cache.Set(ctx, key, value, ttl)
}

func (m *MALService) parseCandidateList(body []byte) ([]*domain.CandidateAnime, error) {
	var raw malListResponseRaw
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	candidates := make([]*domain.CandidateAnime, 0, len(raw.Data))
	for _, item := range raw.Data {
		candidates = append(candidates, m.mapCandidate(&item.Node))
	}
	return candidates, nil
}

func (m *MALService) mapCandidate(raw *MALAnimeRaw) *domain.CandidateAnime {
	c := &domain.CandidateAnime{
		ID:         raw.ID,
		Title:      raw.Title,
		Popularity: DefaultPopularityRank,
		Genres:     namedList(raw.Genres),
		Themes:     namedList(raw.Themes),
		Studios:    namedList(raw.Studios),
	}

	if raw.Mean != nil {
		c.Mean = *raw.Mean
	}
	if raw.Popularity != nil {
		c.Popularity = *raw.Popularity
	}
	if raw.NumListUsers != nil {
		c.NumListUsers = *raw.NumListUsers
	}
	if raw.MainPicture != nil && raw.MainPicture.Medium != nil {
		c.ImageURL = *raw.MainPicture.Medium
	}

	return c
}

func (m *MALService) mapHistoryEntry(raw *malListEntryRaw) *domain.WatchHistoryEntry {
	node := m.mapCandidate(&raw.Node)

	entry := &domain.WatchHistoryEntry{
		ID:           node.ID,
		Title:        node.Title,
		ImageURL:     node.ImageURL,
		Genres:       node.Genres,
		Studios:      node.Studios,
		Themes:       node.Themes,
		Mean:         node.Mean,
		Popularity:   node.Popularity,
		NumListUsers: node.NumListUsers,
	}

	if raw.ListStatus != nil {
		entry.UserScore = raw.ListStatus.Score
	}

	return entry
}

func namedList(raw []MALNamedRaw) []string {
	names := make([]string, 0, len(raw))
	for _, n := range raw {
		if n.Name != "" {
			names = append(names, n.Name)
		}
	}
	return names
}

// tokenDigest derives a stable, non-reversible cache-key fragment from a
// bearer token.
func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum[:8])
}
