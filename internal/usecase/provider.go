package usecase

import (
	"context"

	"github.com/riskibarqy/ballstats/internal/domain/player"
	"github.com/riskibarqy/ballstats/internal/domain/stat"
)

// ExternalPlayersPage is one page of the provider player listing.
// NextPage is zero on the last page.
type ExternalPlayersPage struct {
	Players  []player.Player
	NextPage int
}

// StatsProvider is the remote source of players and season averages.
type StatsProvider interface {
	FetchPlayersPage(ctx context.Context, page, perPage int) (ExternalPlayersPage, error)
	FetchSeasonAverages(ctx context.Context, season int, playerIDs []int64) ([]stat.Stat, error)
}
