package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ballstats/internal/domain/player"
	"github.com/riskibarqy/ballstats/internal/domain/stat"
	usecasemock "github.com/riskibarqy/ballstats/internal/mocks/usecase"
	"github.com/riskibarqy/ballstats/internal/platform/cache"
	"github.com/riskibarqy/ballstats/internal/usecase"
	"github.com/stretchr/testify/mock"
)

func TestProcessService_LoadPlayers_PaginatesUntilNoNextPage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewStatsProvider(t)
	all := makePlayers(237)

	provider.On("FetchPlayersPage", mock.Anything, 1, 100).
		Return(usecase.ExternalPlayersPage{Players: all[:100], NextPage: 2}, nil).Once()
	provider.On("FetchPlayersPage", mock.Anything, 2, 100).
		Return(usecase.ExternalPlayersPage{Players: all[100:200], NextPage: 3}, nil).Once()
	provider.On("FetchPlayersPage", mock.Anything, 3, 100).
		Return(usecase.ExternalPlayersPage{Players: all[200:]}, nil).Once()

	var progress bytes.Buffer
	service := usecase.NewProcessService(provider, cache.NewMemoryStore(0), usecase.DefaultProcessConfig(), &progress, nil)

	got, err := service.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("load players: %v", err)
	}
	if len(got) != len(all) {
		t.Fatalf("unexpected player count: got=%d want=%d", len(got), len(all))
	}
	for idx := range got {
		if got[idx].ID != all[idx].ID {
			t.Fatalf("order broken at %d: got=%d want=%d", idx, got[idx].ID, all[idx].ID)
		}
	}

	wantProgress := "Fetching players: Page 1\nFetching players: Page 2\nFetching players: Page 3\n"
	if progress.String() != wantProgress {
		t.Fatalf("unexpected progress output: %q", progress.String())
	}
}

func TestProcessService_LoadPlayers_SecondCallServedFromCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewStatsProvider(t)
	all := makePlayers(3)

	provider.On("FetchPlayersPage", mock.Anything, 1, 100).
		Return(usecase.ExternalPlayersPage{Players: all}, nil).Once()

	service := usecase.NewProcessService(provider, cache.NewMemoryStore(0), usecase.DefaultProcessConfig(), nil, nil)

	first, err := service.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := service.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cached sequence differs: first=%d second=%d", len(first), len(second))
	}
	for idx := range first {
		if first[idx].ID != second[idx].ID || first[idx].LastName != second[idx].LastName {
			t.Fatalf("cached player %d differs: first=%+v second=%+v", idx, first[idx], second[idx])
		}
	}
	provider.AssertNumberOfCalls(t, "FetchPlayersPage", 1)
}

func TestProcessService_LoadPlayers_FailureIsNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewStatsProvider(t)
	transportErr := crerr.Mark(errors.New("dial tcp: connection refused"), usecase.ErrNetwork)

	provider.On("FetchPlayersPage", mock.Anything, 1, 100).
		Return(usecase.ExternalPlayersPage{}, transportErr).Once()
	provider.On("FetchPlayersPage", mock.Anything, 1, 100).
		Return(usecase.ExternalPlayersPage{Players: makePlayers(1)}, nil).Once()

	service := usecase.NewProcessService(provider, cache.NewMemoryStore(0), usecase.DefaultProcessConfig(), nil, nil)

	if _, err := service.LoadPlayers(ctx); !crerr.Is(err, usecase.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	got, err := service.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one player after refetch, got=%d", len(got))
	}
}

func TestProcessService_LoadPlayers_StopsAtPageLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewStatsProvider(t)
	provider.On("FetchPlayersPage", mock.Anything, mock.AnythingOfType("int"), 100).
		Return(func(_ context.Context, page, _ int) (usecase.ExternalPlayersPage, error) {
			return usecase.ExternalPlayersPage{Players: makePlayers(1), NextPage: page + 1}, nil
		}).Times(2)

	cfg := usecase.DefaultProcessConfig()
	cfg.MaxPages = 2
	store := cache.NewMemoryStore(0)
	service := usecase.NewProcessService(provider, store, cfg, nil, nil)

	if _, err := service.LoadPlayers(ctx); !crerr.Is(err, usecase.ErrPageLimit) {
		t.Fatalf("expected ErrPageLimit, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, usecase.PlayersCacheKey); ok {
		t.Fatalf("partial player list must not be cached")
	}
}

func TestProcessService_LoadStats_ChunksPlayersByFifty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewStatsProvider(t)
	players := makePlayers(120)

	var calls [][]int64
	provider.On("FetchSeasonAverages", mock.Anything, 2018, mock.Anything).
		Return(func(_ context.Context, _ int, ids []int64) ([]stat.Stat, error) {
			calls = append(calls, append([]int64(nil), ids...))
			out := make([]stat.Stat, 0, len(ids))
			for _, id := range ids {
				out = append(out, stat.Stat{PlayerID: id, Points: float64(id % 50)})
			}
			return out, nil
		}).Times(3)

	var progress bytes.Buffer
	service := usecase.NewProcessService(provider, cache.NewMemoryStore(0), usecase.DefaultProcessConfig(), &progress, nil)

	stats, err := service.LoadStats(ctx, players)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}

	if len(calls) != 3 {
		t.Fatalf("expected 3 season average calls, got=%d", len(calls))
	}
	seen := make(map[int64]int, len(players))
	for idx, ids := range calls {
		if len(ids) > 50 {
			t.Fatalf("chunk %d has %d ids, want <= 50", idx, len(ids))
		}
		for _, id := range ids {
			seen[id]++
		}
	}
	for _, p := range players {
		if seen[p.ID] != 1 {
			t.Fatalf("player %d requested %d times, want 1", p.ID, seen[p.ID])
		}
	}
	if len(calls[2]) != 20 {
		t.Fatalf("expected last chunk of 20, got=%d", len(calls[2]))
	}

	if len(stats) != len(players) {
		t.Fatalf("unexpected stat count: got=%d want=%d", len(stats), len(players))
	}
	for idx, item := range stats {
		if item.PlayerID != players[idx].ID {
			t.Fatalf("stat order broken at %d: got=%d want=%d", idx, item.PlayerID, players[idx].ID)
		}
		if item.Player == nil || item.Player.FirstName != players[idx].FirstName {
			t.Fatalf("stat %d not attached to its player: %+v", idx, item.Player)
		}
	}

	wantProgress := "Fetching stats: Page 1\nFetching stats: Page 2\nFetching stats: Page 3\n"
	if progress.String() != wantProgress {
		t.Fatalf("unexpected progress output: %q", progress.String())
	}
}

func TestProcessService_LoadStats_OrphanPolicies(t *testing.T) {
	t.Parallel()

	players := makePlayers(2)
	returned := []stat.Stat{
		{PlayerID: 1, Points: 20},
		{PlayerID: 99, Points: 35},
		{PlayerID: 2, Points: 10},
	}

	cases := []struct {
		name      string
		policy    usecase.OrphanPolicy
		wantErr   error
		wantCount int
		check     func(t *testing.T, stats []stat.Stat)
	}{
		{
			name:      "skip",
			policy:    usecase.OrphanSkip,
			wantCount: 2,
			check: func(t *testing.T, stats []stat.Stat) {
				if stats[0].PlayerID != 1 || stats[1].PlayerID != 2 {
					t.Fatalf("unexpected kept stats: %d %d", stats[0].PlayerID, stats[1].PlayerID)
				}
			},
		},
		{
			name:      "placeholder",
			policy:    usecase.OrphanPlaceholder,
			wantCount: 3,
			check: func(t *testing.T, stats []stat.Stat) {
				orphan := stats[1]
				if orphan.Player == nil || orphan.Player.FirstName != "Unknown" || orphan.Player.LastName != "#99" {
					t.Fatalf("unexpected placeholder: %+v", orphan.Player)
				}
			},
		},
		{
			name:    "fail",
			policy:  usecase.OrphanFail,
			wantErr: usecase.ErrAssociation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			provider := usecasemock.NewStatsProvider(t)
			provider.On("FetchSeasonAverages", mock.Anything, 2018, []int64{1, 2}).
				Return(returned, nil).Once()

			cfg := usecase.DefaultProcessConfig()
			cfg.OrphanPolicy = tc.policy
			service := usecase.NewProcessService(provider, cache.NewMemoryStore(0), cfg, nil, nil)

			stats, err := service.LoadStats(context.Background(), players)
			if tc.wantErr != nil {
				if !crerr.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("load stats: %v", err)
			}
			if len(stats) != tc.wantCount {
				t.Fatalf("unexpected count: got=%d want=%d", len(stats), tc.wantCount)
			}
			tc.check(t, stats)
		})
	}
}

func TestProcessService_Run_UsesCachedEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewStatsProvider(t)
	players := makePlayers(2)

	provider.On("FetchPlayersPage", mock.Anything, 1, 100).
		Return(usecase.ExternalPlayersPage{Players: players}, nil).Once()
	provider.On("FetchSeasonAverages", mock.Anything, 2018, []int64{1, 2}).
		Return([]stat.Stat{{PlayerID: 1, Points: 12.5}, {PlayerID: 2, Points: 30.1}}, nil).Once()

	store := cache.NewMemoryStore(0)
	service := usecase.NewProcessService(provider, store, usecase.DefaultProcessConfig(), nil, nil)

	for run := 0; run < 2; run++ {
		rows, err := service.Run(ctx)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if len(rows) != 2 {
			t.Fatalf("run %d: unexpected rows: %+v", run, rows)
		}
		if rows[0].FirstName != "First2" || rows[0].Points != 30.1 {
			t.Fatalf("run %d: unexpected leader: %+v", run, rows[0])
		}
	}
}

func TestTopScorers_StableDescendingAndTruncated(t *testing.T) {
	t.Parallel()

	owners := makePlayers(5)
	points := []float64{10, 30, 30, 5, 40}
	stats := make([]stat.Stat, 0, len(points))
	for idx, pts := range points {
		owner := owners[idx]
		stats = append(stats, stat.Stat{PlayerID: owner.ID, Points: pts, Player: &owner})
	}

	rows := usecase.TopScorers(stats, 3)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got=%d", len(rows))
	}
	got := []string{
		fmt.Sprintf("%s:%v", rows[0].FirstName, rows[0].Points),
		fmt.Sprintf("%s:%v", rows[1].FirstName, rows[1].Points),
		fmt.Sprintf("%s:%v", rows[2].FirstName, rows[2].Points),
	}
	want := "First5:40,First2:30,First3:30"
	if strings.Join(got, ",") != want {
		t.Fatalf("unexpected ranking: got=%s want=%s", strings.Join(got, ","), want)
	}
	if stats[0].Points != 10 || stats[4].Points != 40 {
		t.Fatalf("input must not be reordered")
	}
}

func TestTopScorers_FewerThanLimitAndEmpty(t *testing.T) {
	t.Parallel()

	owner := player.Player{ID: 1, FirstName: "Solo", LastName: "Scorer"}
	rows := usecase.TopScorers([]stat.Stat{{PlayerID: 1, Points: 8, Player: &owner}}, 10)
	if len(rows) != 1 || rows[0].LastName != "Scorer" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	if rows := usecase.TopScorers(nil, 10); len(rows) != 0 {
		t.Fatalf("expected no rows for empty input, got=%d", len(rows))
	}
}

func makePlayers(n int) []player.Player {
	out := make([]player.Player, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, player.Player{
			ID:         int64(i),
			FirstName:  fmt.Sprintf("First%d", i),
			LastName:   fmt.Sprintf("Last%d", i),
			Attributes: map[string]any{},
		})
	}
	return out
}
