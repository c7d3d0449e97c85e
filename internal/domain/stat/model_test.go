package stat

import (
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/ballstats/internal/domain/player"
)

func TestStat_CacheEncodingKeepsPlayerAndProviderFields(t *testing.T) {
	t.Parallel()

	owner := player.FromAttributes(map[string]any{
		"id":         float64(237),
		"first_name": "LeBron",
		"last_name":  "James",
		"position":   "F",
	})
	in := FromAttributes(map[string]any{
		"player_id":    float64(237),
		"pts":          27.4,
		"season":       float64(2018),
		"games_played": float64(55),
	})
	in.Player = &owner

	raw, err := sonic.Marshal(in)
	if err != nil {
		t.Fatalf("marshal stat: %v", err)
	}

	var out Stat
	if err := sonic.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal stat: %v", err)
	}
	if out.PlayerID != 237 || out.Points != 27.4 || out.Season != 2018 {
		t.Fatalf("unexpected core fields: %+v", out)
	}
	if got := out.Attributes["games_played"]; got != float64(55) {
		t.Fatalf("expected games_played to survive, got=%v", got)
	}
	if out.Player == nil {
		t.Fatalf("expected attached player after decode")
	}
	if out.Player.FirstName != "LeBron" || out.Player.LastName != "James" {
		t.Fatalf("unexpected player: %+v", out.Player)
	}
	if got := out.Player.Attributes["position"]; got != "F" {
		t.Fatalf("expected player position to survive, got=%v", got)
	}
}

func TestFromAttributes_IgnoresMalformedNestedPlayer(t *testing.T) {
	t.Parallel()

	got := FromAttributes(map[string]any{
		"player_id": float64(1),
		"pts":       "12.5",
		"player":    "not-an-object",
	})
	if got.Player != nil {
		t.Fatalf("expected no player, got=%+v", got.Player)
	}
	if got.Points != 12.5 {
		t.Fatalf("expected pts parsed from string, got=%v", got.Points)
	}
}
