package probe

import (
	"math/rand"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const acceptAny = "text/html,application/json,*/*"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_6 like Mac OS X) AppleWebKit/605.1.15",
}

// Identity is the request disguise drawn for one probe attempt.
// CacheQuery is empty when cache busting is disabled.
type Identity struct {
	UserAgent  string
	CacheQuery string
}

// IdentityPool hands out randomized request identities: a user agent
// picked from the pool and, when cache busting is on, a query fragment
// with the current unix time and a random 4-digit value so intermediate
// caches never see the same URL twice.
type IdentityPool struct {
	mu        sync.Mutex
	agents    []string
	cacheBust bool
	rng       *rand.Rand
}

// NewIdentityPool builds a pool over the given user agents; an empty
// list falls back to the built-in set.
func NewIdentityPool(agents []string, cacheBust bool) *IdentityPool {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &IdentityPool{
		agents:    agents,
		cacheBust: cacheBust,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *IdentityPool) Next() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := Identity{UserAgent: p.agents[p.rng.Intn(len(p.agents))]}
	if p.cacheBust {
		q := url.Values{}
		q.Set("timestamp", strconv.FormatFloat(float64(time.Now().UnixNano())/1e9, 'f', 6, 64))
		q.Set("rand", strconv.Itoa(1000+p.rng.Intn(9000)))
		id.CacheQuery = q.Encode()
	}
	return id
}

// Agents returns the pool's user agent list.
func (p *IdentityPool) Agents() []string {
	return p.agents
}
