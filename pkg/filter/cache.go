package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codegnosis/depspace/pkg/model"
)

// defaultMemoSize bounds the number of distinct filter states remembered.
// Filter states are tiny and user interaction cycles through few of them.
const defaultMemoSize = 64

// Memo caches Apply results for one graph. It is bound to a single graph
// snapshot: build a new Memo whenever a new analysis replaces the graph.
// Like the rest of the core it expects a single execution context; the
// LRU itself is safe, but the cached Views share node pointers.
type Memo struct {
	graph *model.Graph
	cache *lru.Cache[string, View]
}

// NewMemo creates a memoized view of the graph's filter engine.
func NewMemo(g *model.Graph) *Memo {
	// Size is fixed and small; New only errors on size <= 0.
	c, _ := lru.New[string, View](defaultMemoSize)
	return &Memo{graph: g, cache: c}
}

// Apply returns the visible subgraph for the state, reusing a previous
// result when the state fingerprint matches.
func (m *Memo) Apply(s State, now time.Time) View {
	key := fingerprint(s, now)
	if v, ok := m.cache.Get(key); ok {
		return v
	}
	v := Apply(m.graph, s, now)
	m.cache.Add(key, v)
	return v
}

// fingerprint renders the state as a stable cache key. The incident
// mission depends on wall-clock time, so its key includes the current
// minute; every other state is time-independent.
func fingerprint(s State, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "m=%s;sel=%s;ext=%t", s.Mission, s.SelectedNode, s.HideExternal)
	if s.SoloFamily != nil {
		fmt.Fprintf(&b, ";solo=%s", *s.SoloFamily)
	}
	if len(s.Families) > 0 {
		names := make([]string, len(s.Families))
		for i, f := range s.Families {
			names[i] = f.String()
		}
		sort.Strings(names)
		fmt.Fprintf(&b, ";fams=%s", strings.Join(names, ","))
	}
	if s.Mission == MissionIncident {
		fmt.Fprintf(&b, ";t=%d", now.Unix()/60)
	}
	return b.String()
}
