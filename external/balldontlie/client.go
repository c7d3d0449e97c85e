package balldontlie

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ballstats/internal/domain/player"
	"github.com/riskibarqy/ballstats/internal/domain/stat"
	"github.com/riskibarqy/ballstats/internal/platform/logging"
	"github.com/riskibarqy/ballstats/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL            = "https://www.balldontlie.io/api/v1"
	defaultPlayersPath        = "/players"
	defaultSeasonAveragesPath = "/season_averages"
	maxBodyBytes              = 6 << 20
)

type ClientConfig struct {
	HTTPClient         *http.Client
	BaseURL            string
	PlayersPath        string
	SeasonAveragesPath string
	APIKey             string
	Timeout            time.Duration
	RawQuery           bool
	Logger             *logging.Logger
}

// Client talks to the balldontlie REST API. It implements usecase.StatsProvider.
type Client struct {
	httpClient         *http.Client
	baseURL            string
	playersPath        string
	seasonAveragesPath string
	apiKey             string
	rawQuery           bool
	logger             *logging.Logger
}

var _ usecase.StatsProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:         httpClient,
		baseURL:            baseURL,
		playersPath:        pathOrDefault(cfg.PlayersPath, defaultPlayersPath),
		seasonAveragesPath: pathOrDefault(cfg.SeasonAveragesPath, defaultSeasonAveragesPath),
		apiKey:             strings.TrimSpace(cfg.APIKey),
		rawQuery:           cfg.RawQuery,
		logger:             logger,
	}
}

// Fetch issues GET base+path?query and decodes the body into a generic map.
func (c *Client) Fetch(ctx context.Context, path string, params Params) (map[string]any, error) {
	fullURL := c.baseURL + path
	if query := params.Encode(c.rawQuery); query != "" {
		fullURL += "?" + query
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v body=%s", usecase.ErrDecode, path, err, abbreviateBody(raw))
	}
	if out == nil {
		return nil, fmt.Errorf("%w: decode %s: body is not an object", usecase.ErrDecode, path)
	}
	return out, nil
}

func (c *Client) FetchPlayersPage(ctx context.Context, page, perPage int) (usecase.ExternalPlayersPage, error) {
	params := Params{}.
		Set("per_page", strconv.Itoa(perPage)).
		Set("page", strconv.Itoa(page))

	body, err := c.Fetch(ctx, c.playersPath, params)
	if err != nil {
		return usecase.ExternalPlayersPage{}, err
	}

	items, err := dataItems(body, c.playersPath)
	if err != nil {
		return usecase.ExternalPlayersPage{}, err
	}

	players := make([]player.Player, 0, len(items))
	for _, item := range items {
		players = append(players, player.FromAttributes(item))
	}

	return usecase.ExternalPlayersPage{
		Players:  players,
		NextPage: nextPage(body),
	}, nil
}

func (c *Client) FetchSeasonAverages(ctx context.Context, season int, playerIDs []int64) ([]stat.Stat, error) {
	ids := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	params := Params{}.
		Set("season", strconv.Itoa(season)).
		Add("player_ids", ids...)

	body, err := c.Fetch(ctx, c.seasonAveragesPath, params)
	if err != nil {
		return nil, err
	}

	items, err := dataItems(body, c.seasonAveragesPath)
	if err != nil {
		return nil, err
	}

	out := make([]stat.Stat, 0, len(items))
	for _, item := range items {
		out = append(out, stat.FromAttributes(item))
	}
	return out, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", usecase.ErrNetwork, err)
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.WarnContext(ctx, "balldontlie request failed", "url", fullURL, "error", err)
		return nil, crerr.Mark(crerr.Wrap(err, "send request"), usecase.ErrNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), usecase.ErrNetwork)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "balldontlie request rejected", "url", fullURL, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrNetwork, resp.StatusCode, abbreviateBody(raw))
	}
	return raw, nil
}

func dataItems(body map[string]any, path string) ([]map[string]any, error) {
	rawData, ok := body["data"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s response has no data array", usecase.ErrDecode, path)
	}
	out := make([]map[string]any, 0, len(rawData))
	for idx, item := range rawData {
		attrs, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s data[%d] is %T, want object", usecase.ErrDecode, path, idx, item)
		}
		out = append(out, attrs)
	}
	return out, nil
}

// nextPage reads meta.next_page; absent, null or zero all mean last page.
func nextPage(body map[string]any) int {
	meta, ok := body["meta"].(map[string]any)
	if !ok {
		return 0
	}
	return int(player.Int64Value(meta["next_page"]))
}

func pathOrDefault(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
