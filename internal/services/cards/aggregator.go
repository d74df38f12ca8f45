package cards

import (
	"strings"
	"time"

	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
)

const (
	chartMonths    = 6
	monthLayout    = "2006-01"
	dateLayout     = "2006-01-02"
	eyeMode        = "eye"
	otherModeLabel = "OTHER"
)

type Stats struct {
	Received        int     `json:"received"`
	Sent            int     `json:"sent"`
	Pending         int     `json:"pending"`
	Countries       int     `json:"countries"`
	EyeQSO          int     `json:"eyeQso"`
	ReceivedGrowth  float64 `json:"receivedGrowth"`
	SentGrowth      float64 `json:"sentGrowth"`
	PendingGrowth   float64 `json:"pendingGrowth"`
	CountriesGrowth float64 `json:"countriesGrowth"`
}

// Breakdown is a categorical count as parallel label/count slices.
type Breakdown struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Chart holds monthly series aligned with Labels plus a mode breakdown.
type Chart struct {
	Labels   []string  `json:"labels"`
	Sent     []int     `json:"sent"`
	Pending  []int     `json:"pending"`
	Received []int     `json:"received"`
	Modes    Breakdown `json:"modes"`
}

// Count returns the value of series for the month label, or 0.
func (c Chart) Count(series []int, label string) int {
	for i, l := range c.Labels {
		if l == label && i < len(series) {
			return series[i]
		}
	}
	return 0
}

type Aggregator struct {
	growth GrowthSource
	now    func() time.Time
}

func NewAggregator(growth GrowthSource, now func() time.Time) *Aggregator {
	if growth == nil {
		growth = NewRandomGrowth()
	}
	if now == nil {
		now = time.Now
	}
	return &Aggregator{growth: growth, now: now}
}

func (a *Aggregator) Stats(sent, received []types.Card) Stats {
	st := Stats{
		Received: len(received),
		Sent:     len(sent),
	}
	countries := make(map[string]struct{})
	count := func(list []types.Card) {
		for _, c := range list {
			if prefix := countryPrefix(c.CallSign); prefix != "" {
				countries[prefix] = struct{}{}
			}
			if strings.EqualFold(strings.TrimSpace(c.Mode), eyeMode) {
				st.EyeQSO++
			}
		}
	}
	for _, c := range sent {
		if c.Status == types.StatusPending {
			st.Pending++
		}
	}
	count(sent)
	count(received)
	st.Countries = len(countries)

	g := a.growth.Growth(sent, received)
	st.ReceivedGrowth = g.Received
	st.SentGrowth = g.Sent
	st.PendingGrowth = g.Pending
	st.CountriesGrowth = g.Countries
	return st
}

// countryPrefix approximates a country by the first two characters of a call
// sign. It is not a real prefix lookup.
func countryPrefix(callSign string) string {
	r := []rune(strings.ToUpper(strings.TrimSpace(callSign)))
	if len(r) == 0 {
		return ""
	}
	if len(r) > 2 {
		r = r[:2]
	}
	return string(r)
}

// Chart buckets by month over the trailing six months including the current
// one. The pending series reuses the sent counts and does not filter by status.
func (a *Aggregator) Chart(sent, received []types.Card) Chart {
	now := a.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	ch := Chart{
		Labels:   make([]string, chartMonths),
		Sent:     make([]int, chartMonths),
		Pending:  make([]int, chartMonths),
		Received: make([]int, chartMonths),
		Modes:    Breakdown{Labels: []string{}, Counts: []int{}},
	}
	index := make(map[string]int, chartMonths)
	for i := 0; i < chartMonths; i++ {
		label := current.AddDate(0, i-(chartMonths-1), 0).Format(monthLayout)
		ch.Labels[i] = label
		index[label] = i
	}

	for _, c := range sent {
		if i, ok := monthIndex(index, c.Date); ok {
			ch.Sent[i]++
		}
	}
	copy(ch.Pending, ch.Sent)
	for _, c := range received {
		if i, ok := monthIndex(index, c.Date); ok {
			ch.Received[i]++
		}
	}

	modeIdx := make(map[string]int)
	tally := func(list []types.Card) {
		for _, c := range list {
			label := strings.ToUpper(strings.TrimSpace(c.Mode))
			if label == "" {
				label = otherModeLabel
			}
			i, ok := modeIdx[label]
			if !ok {
				i = len(ch.Modes.Labels)
				modeIdx[label] = i
				ch.Modes.Labels = append(ch.Modes.Labels, label)
				ch.Modes.Counts = append(ch.Modes.Counts, 0)
			}
			ch.Modes.Counts[i]++
		}
	}
	tally(sent)
	tally(received)
	return ch
}

func monthIndex(index map[string]int, date string) (int, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, false
	}
	i, ok := index[t.Format(monthLayout)]
	return i, ok
}
