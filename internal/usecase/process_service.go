package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/riskibarqy/ballstats/internal/domain/player"
	"github.com/riskibarqy/ballstats/internal/domain/stat"
	"github.com/riskibarqy/ballstats/internal/platform/cache"
	"github.com/riskibarqy/ballstats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	PlayersCacheKey = "players"
	StatsCacheKey   = "stats"
)

type OrphanPolicy string

const (
	OrphanSkip        OrphanPolicy = "skip"
	OrphanPlaceholder OrphanPolicy = "placeholder"
	OrphanFail        OrphanPolicy = "fail"
)

type ProcessConfig struct {
	Season         int
	PlayersPerPage int
	StatsChunkSize int
	MaxPages       int
	ReportLimit    int
	OrphanPolicy   OrphanPolicy
}

func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		Season:         2018,
		PlayersPerPage: 100,
		StatsChunkSize: 50,
		MaxPages:       1000,
		ReportLimit:    10,
		OrphanPolicy:   OrphanSkip,
	}
}

func normalizeProcessConfig(cfg ProcessConfig) ProcessConfig {
	defaults := DefaultProcessConfig()
	if cfg.Season <= 0 {
		cfg.Season = defaults.Season
	}
	if cfg.PlayersPerPage < 1 {
		cfg.PlayersPerPage = defaults.PlayersPerPage
	}
	if cfg.StatsChunkSize < 1 {
		cfg.StatsChunkSize = defaults.StatsChunkSize
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = defaults.MaxPages
	}
	if cfg.ReportLimit < 1 {
		cfg.ReportLimit = defaults.ReportLimit
	}
	switch cfg.OrphanPolicy {
	case OrphanSkip, OrphanPlaceholder, OrphanFail:
	default:
		cfg.OrphanPolicy = defaults.OrphanPolicy
	}
	return cfg
}

// ProcessService loads players and their season averages through the cache
// and ranks the top scorers.
type ProcessService struct {
	provider StatsProvider
	store    cache.Store
	cfg      ProcessConfig
	progress io.Writer
	logger   *logging.Logger
}

func NewProcessService(provider StatsProvider, store cache.Store, cfg ProcessConfig, progress io.Writer, logger *logging.Logger) *ProcessService {
	if logger == nil {
		logger = logging.Default()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &ProcessService{
		provider: provider,
		store:    store,
		cfg:      normalizeProcessConfig(cfg),
		progress: progress,
		logger:   logger,
	}
}

// Run executes the whole pipeline and returns the ranked report rows.
func (s *ProcessService) Run(ctx context.Context) ([]TopScorer, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProcessService.Run")
	defer span.End()

	players, err := s.LoadPlayers(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.LoadStats(ctx, players)
	if err != nil {
		return nil, err
	}
	return TopScorers(stats, s.cfg.ReportLimit), nil
}

// LoadPlayers returns every provider player in listing order. The first
// call in a cache lifetime pages through the provider; later calls are
// served from the "players" entry.
func (s *ProcessService) LoadPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProcessService.LoadPlayers")
	defer span.End()

	players, hit, err := cache.GetOrCompute(ctx, s.store, PlayersCacheKey, s.fetchAllPlayers)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	span.SetAttributes(attribute.Int("players.count", len(players)), attribute.Bool("cache.hit", hit))
	s.logger.InfoContext(ctx, "players loaded", "count", len(players), "cache_hit", hit)
	return players, nil
}

// LoadStats returns season averages for players, each attached to its
// owner, in fetch order. Cached under "stats" like LoadPlayers.
func (s *ProcessService) LoadStats(ctx context.Context, players []player.Player) ([]stat.Stat, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProcessService.LoadStats", attribute.Int("season", s.cfg.Season))
	defer span.End()

	stats, hit, err := cache.GetOrCompute(ctx, s.store, StatsCacheKey, func(ctx context.Context) ([]stat.Stat, error) {
		return s.fetchAllStats(ctx, players)
	})
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	span.SetAttributes(attribute.Int("stats.count", len(stats)), attribute.Bool("cache.hit", hit))
	s.logger.InfoContext(ctx, "stats loaded", "count", len(stats), "season", s.cfg.Season, "cache_hit", hit)
	return stats, nil
}

func (s *ProcessService) fetchAllPlayers(ctx context.Context) ([]player.Player, error) {
	players := make([]player.Player, 0, s.cfg.PlayersPerPage)
	page := 1
	for fetched := 0; ; fetched++ {
		if fetched >= s.cfg.MaxPages {
			return nil, fmt.Errorf("%w: stopped after %d player pages", ErrPageLimit, fetched)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.progressf("Fetching players: Page %d", page)
		result, err := s.provider.FetchPlayersPage(ctx, page, s.cfg.PlayersPerPage)
		if err != nil {
			return nil, fmt.Errorf("fetch players page=%d: %w", page, err)
		}
		players = append(players, result.Players...)

		if result.NextPage <= 0 {
			return players, nil
		}
		page = result.NextPage
	}
}

func (s *ProcessService) fetchAllStats(ctx context.Context, players []player.Player) ([]stat.Stat, error) {
	stats := make([]stat.Stat, 0, len(players))
	size := s.cfg.StatsChunkSize
	for start, index := 0, 0; start < len(players); start, index = start+size, index+1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+size, len(players))
		chunk := players[start:end]

		s.progressf("Fetching stats: Page %d", index+1)
		items, err := s.provider.FetchSeasonAverages(ctx, s.cfg.Season, player.IDs(chunk))
		if err != nil {
			return nil, fmt.Errorf("fetch season averages chunk=%d: %w", index+1, err)
		}

		for _, item := range items {
			owner, ok := player.FindByID(players, item.PlayerID)
			if !ok {
				switch s.cfg.OrphanPolicy {
				case OrphanFail:
					return nil, fmt.Errorf("%w: player_id=%d", ErrAssociation, item.PlayerID)
				case OrphanPlaceholder:
					owner = player.Placeholder(item.PlayerID)
				default:
					s.logger.WarnContext(ctx, "skip stat without matching player", "player_id", item.PlayerID, "season", s.cfg.Season)
					continue
				}
			}
			item.Player = &owner
			stats = append(stats, item)
		}
	}
	return stats, nil
}

func (s *ProcessService) progressf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.progress, format+"\n", args...)
}

// TopScorer is one row of the scoring report.
type TopScorer struct {
	FirstName string
	LastName  string
	Points    float64
}

// TopScorers ranks stats by points, highest first, keeping fetch order among
// equal points, and returns at most limit rows. stats is not modified.
func TopScorers(stats []stat.Stat, limit int) []TopScorer {
	ordered := make([]stat.Stat, len(stats))
	copy(ordered, stats)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Points > ordered[j].Points
	})

	if limit >= 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	out := make([]TopScorer, 0, len(ordered))
	for _, item := range ordered {
		owner := player.Placeholder(item.PlayerID)
		if item.Player != nil {
			owner = *item.Player
		}
		out = append(out, TopScorer{
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			Points:    item.Points,
		})
	}
	return out
}
