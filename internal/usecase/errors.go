package usecase

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/ballstats/internal/platform/cache"
)

var (
	ErrNetwork     = crerr.New("stats provider unreachable")
	ErrDecode      = crerr.New("stats provider payload malformed")
	ErrAssociation = crerr.New("stat has no matching player")
	ErrPageLimit   = crerr.New("pagination limit reached")
	ErrCache       = cache.ErrBackend
)
