package stat

import (
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/ballstats/internal/domain/player"
)

// Stat is a season-average line for one player.
// Player is attached after fetch; the provider payload does not carry it.
type Stat struct {
	PlayerID   int64
	Points     float64
	Season     int
	Attributes map[string]any
	Player     *player.Player
}

func FromAttributes(attrs map[string]any) Stat {
	s := Stat{Attributes: make(map[string]any, len(attrs))}
	for key, value := range attrs {
		switch key {
		case "player_id":
			s.PlayerID = player.Int64Value(value)
		case "pts":
			s.Points = float64Value(value)
		case "season":
			s.Season = int(player.Int64Value(value))
		case "player":
			nested, ok := value.(map[string]any)
			if !ok {
				continue
			}
			owner := player.FromAttributes(nested)
			s.Player = &owner
		default:
			s.Attributes[key] = value
		}
	}
	return s
}

func (s Stat) Map() map[string]any {
	out := make(map[string]any, len(s.Attributes)+4)
	for key, value := range s.Attributes {
		out[key] = value
	}
	out["player_id"] = s.PlayerID
	out["pts"] = s.Points
	if s.Season != 0 {
		out["season"] = s.Season
	}
	if s.Player != nil {
		out["player"] = s.Player.Map()
	}
	return out
}

func (s Stat) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(s.Map())
}

func (s *Stat) UnmarshalJSON(data []byte) error {
	var attrs map[string]any
	if err := sonic.Unmarshal(data, &attrs); err != nil {
		return err
	}
	*s = FromAttributes(attrs)
	return nil
}

func float64Value(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		out, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return out
	case interface{ Float64() (float64, error) }:
		out, err := v.Float64()
		if err != nil {
			return 0
		}
		return out
	default:
		return 0
	}
}
