package player

import (
	"strconv"

	sonic "github.com/bytedance/sonic"
)

// Player is one athlete record from the stats provider.
// Fields the pipeline does not read stay in Attributes so the record
// re-encodes to the provider payload it came from.
type Player struct {
	ID         int64
	FirstName  string
	LastName   string
	Attributes map[string]any
}

// FromAttributes builds a Player from a decoded provider record.
func FromAttributes(attrs map[string]any) Player {
	p := Player{Attributes: make(map[string]any, len(attrs))}
	for key, value := range attrs {
		switch key {
		case "id":
			p.ID = Int64Value(value)
		case "first_name":
			p.FirstName, _ = value.(string)
		case "last_name":
			p.LastName, _ = value.(string)
		default:
			p.Attributes[key] = value
		}
	}
	return p
}

// Map returns the provider representation of the player.
func (p Player) Map() map[string]any {
	out := make(map[string]any, len(p.Attributes)+3)
	for key, value := range p.Attributes {
		out[key] = value
	}
	out["id"] = p.ID
	out["first_name"] = p.FirstName
	out["last_name"] = p.LastName
	return out
}

func (p Player) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(p.Map())
}

func (p *Player) UnmarshalJSON(data []byte) error {
	var attrs map[string]any
	if err := sonic.Unmarshal(data, &attrs); err != nil {
		return err
	}
	*p = FromAttributes(attrs)
	return nil
}

// Placeholder stands in for a player the provider returned stats for but
// never listed.
func Placeholder(id int64) Player {
	return Player{
		ID:         id,
		FirstName:  "Unknown",
		LastName:   "#" + strconv.FormatInt(id, 10),
		Attributes: map[string]any{},
	}
}

// FindByID returns the first player with the given id.
func FindByID(players []Player, id int64) (Player, bool) {
	for _, item := range players {
		if item.ID == id {
			return item, true
		}
	}
	return Player{}, false
}

// IDs lists player ids in sequence order.
func IDs(players []Player) []int64 {
	out := make([]int64, 0, len(players))
	for _, item := range players {
		out = append(out, item.ID)
	}
	return out
}

// Int64Value converts a decoded JSON number to int64.
func Int64Value(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		out, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return out
	case interface{ Int64() (int64, error) }:
		out, err := v.Int64()
		if err != nil {
			return 0
		}
		return out
	default:
		return 0
	}
}
