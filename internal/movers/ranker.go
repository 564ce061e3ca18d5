package movers

import (
	"sort"
	"strings"

	"tradegate/internal/domain"
)

// quoteSuffix restricts the ranking to USDT-quoted pairs.
const quoteSuffix = "/USDT"

// Rank returns the top movers of a ticker snapshot, best-first for gainers
// and worst-first for losers. Symbols without a percent change and without a
// derivable open/last pair are skipped. Equal percentages are broken by
// symbol name so re-ranking the same snapshot is deterministic.
func Rank(snapshot map[string]domain.Ticker, limit int, direction domain.MoverDirection) []domain.Mover {
	if limit <= 0 {
		return nil
	}

	items := make([]domain.Mover, 0, len(snapshot))
	for symbol, t := range snapshot {
		if !strings.HasSuffix(symbol, quoteSuffix) {
			continue
		}
		pct, ok := percentChange(t)
		if !ok {
			continue
		}
		items = append(items, domain.Mover{Symbol: symbol, Percentage: pct})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Percentage != items[j].Percentage {
			if direction == domain.MoversLosers {
				return items[i].Percentage < items[j].Percentage
			}
			return items[i].Percentage > items[j].Percentage
		}
		return items[i].Symbol < items[j].Symbol
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func percentChange(t domain.Ticker) (float64, bool) {
	if t.Percentage != nil {
		return *t.Percentage, true
	}
	if t.Open != nil && t.Last != nil && *t.Open != 0 {
		return (*t.Last - *t.Open) / *t.Open * 100, true
	}
	return 0, false
}
