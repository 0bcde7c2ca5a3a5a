package layout

import (
	"hash/fnv"
	"math"

	"github.com/codegnosis/depspace/pkg/model"
)

// sectorWidth is the angular band assigned to each family. Bands are
// non-overlapping and cover the full circle in family declaration order.
var sectorWidth = 2 * math.Pi / float64(len(model.Families))

// seedOrganic assigns every node its deterministic initial position: an
// angular jitter inside the family sector and a radial offset growing with
// the node's rank inside the family. External nodes go on a fixed outer
// ring and are pinned so third-party dependencies form a stable boundary.
func (e *Engine) seedOrganic() {
	for fi, fam := range model.Families {
		members := e.graph.FamilyMembers(fam)
		for rank, id := range members {
			n, _ := e.graph.Node(id)
			h := idHash(id)

			if fam == model.FamilyExternal {
				n.Pos = e.externalRingPos(id)
				n.Placed = true
				n.Pinned = true
				continue
			}

			// Jitter stays inside (5%, 95%) of the band so neighboring
			// sectors never interleave at seed time.
			sectorStart := float64(fi) * sectorWidth
			angle := sectorStart + (0.05+0.9*frac(h, 1))*sectorWidth
			radius := e.params.BaseRadius + e.params.RadiusStep*float64(rank) + frac(h, 2)*e.params.RadiusStep

			n.Pos = model.Vec3{
				X: radius * math.Cos(angle),
				Y: (frac(h, 3) - 0.5) * 2 * e.params.VerticalJitter,
				Z: radius * math.Sin(angle),
			}
			n.Placed = true
		}
	}
}

// externalRingPos returns the fixed outer-ring position for an external
// node, a pure function of its id hash.
func (e *Engine) externalRingPos(id string) model.Vec3 {
	angle := frac(idHash(id), 0) * 2 * math.Pi
	return model.Vec3{
		X: e.params.ExternalRing * math.Cos(angle),
		Y: 0,
		Z: e.params.ExternalRing * math.Sin(angle),
	}
}

// idHash returns a stable 64-bit hash of the node id.
func idHash(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

// frac derives an independent pseudo-random value in [0,1) from the hash.
// lane selects which mix of the bits to use so one hash yields several
// uncorrelated jitters.
func frac(h uint64, lane uint) float64 {
	h ^= (h >> 33) + uint64(lane)*0x9e3779b97f4a7c15
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return float64(h%1_000_000) / 1_000_000
}
