package cards

import (
	"math"
	"math/rand"
	"sync"
	"time"

	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
)

// Growth holds the period-over-period percentages shown next to each stat.
type Growth struct {
	Received  float64
	Sent      float64
	Pending   float64
	Countries float64
}

// GrowthSource supplies growth figures for the stats view.
type GrowthSource interface {
	Growth(sent, received []types.Card) Growth
}

// RandomGrowth is a placeholder: its figures are random and do not come from
// any history. Replace it once per-period snapshots exist.
type RandomGrowth struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomGrowth() *RandomGrowth {
	return &RandomGrowth{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *RandomGrowth) Growth(_, _ []types.Card) Growth {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Growth{
		Received:  g.between(-10, 30),
		Sent:      g.between(-10, 30),
		Pending:   g.between(-20, 20),
		Countries: g.between(0, 15),
	}
}

func (g *RandomGrowth) between(lo, hi float64) float64 {
	v := lo + g.rnd.Float64()*(hi-lo)
	return math.Round(v*10) / 10
}

// FixedGrowth returns the same figures every time.
type FixedGrowth Growth

func (f FixedGrowth) Growth(_, _ []types.Card) Growth { return Growth(f) }
