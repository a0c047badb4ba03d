package stats

import (
	"sort"

	"trade-journal/internal/models"
)

// keyedTallies groups tallies by a string key, remembering first-seen order.
type keyedTallies struct {
	index   map[string]int
	keys    []string
	tallies []tally
}

func newKeyedTallies() *keyedTallies {
	return &keyedTallies{index: make(map[string]int)}
}

// add is a no-op for an empty key; trades without the dimension stay out of it.
func (k *keyedTallies) add(key string, e *models.Entry) {
	if key == "" {
		return
	}
	i, ok := k.index[key]
	if !ok {
		i = len(k.keys)
		k.index[key] = i
		k.keys = append(k.keys, key)
		k.tallies = append(k.tallies, tally{})
	}
	k.tallies[i].add(e)
}

// byCount returns bucket indexes ordered by count descending, ties in first-seen order.
func (k *keyedTallies) byCount() []int {
	order := make([]int, len(k.keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return k.tallies[order[a]].count > k.tallies[order[b]].count
	})
	return order
}

// byKey returns bucket indexes ordered by key ascending.
func (k *keyedTallies) byKey() []int {
	order := make([]int, len(k.keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return k.keys[order[a]] < k.keys[order[b]]
	})
	return order
}

// aggregation holds every dimension's buckets for one pass over the entries.
type aggregation struct {
	overall     tally
	results     map[models.TradeResult]int
	positions   map[models.PositionType]int
	winningPnL  mean
	losingPnL   mean
	initialRR   mean
	tradeRating mean

	symbols    *keyedTallies
	strategies *keyedTallies
	emotions   *keyedTallies
	sessions   []tally
	weekdays   [7]tally
	dates      *keyedTallies
	months     *keyedTallies
}

func newAggregation(sessionCount int) *aggregation {
	agg := &aggregation{
		results:    make(map[models.TradeResult]int, len(models.Results)),
		positions:  make(map[models.PositionType]int, len(models.PositionTypes)),
		symbols:    newKeyedTallies(),
		strategies: newKeyedTallies(),
		emotions:   newKeyedTallies(),
		sessions:   make([]tally, sessionCount),
		dates:      newKeyedTallies(),
		months:     newKeyedTallies(),
	}
	for _, r := range models.Results {
		agg.results[r] = 0
	}
	for _, p := range models.PositionTypes {
		agg.positions[p] = 0
	}
	return agg
}

// aggregate folds entries into every dimension in a single sweep.
func aggregate(entries []models.Entry, sessions []SessionWindow) *aggregation {
	agg := newAggregation(len(sessions))
	for i := range entries {
		e := &entries[i]

		agg.overall.add(e)
		if e.Result != "" {
			agg.results[e.Result]++
		}
		if e.PositionType != "" {
			agg.positions[e.PositionType]++
		}
		switch {
		case e.IsWin():
			agg.winningPnL.add(e.PnL)
		case e.IsLoss():
			agg.losingPnL.add(e.PnL)
		}
		agg.initialRR.add(e.InitialRR)
		agg.tradeRating.add(e.TradeRating)

		agg.symbols.add(e.Symbol, e)
		agg.strategies.add(e.Strategy, e)
		agg.emotions.add(e.Emotion, e)
		agg.sessions[SessionIndex(sessions, e.EntryDate)].add(e)
		agg.weekdays[WeekdayIndex(e.EntryDate)].add(e)
		agg.dates.add(DateKey(e.EntryDate), e)
		agg.months.add(MonthKey(e.EntryDate), e)
	}
	return agg
}
