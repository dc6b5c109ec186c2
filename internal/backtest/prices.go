package backtest

import "sort"

// NextDayChange computes the forward percentage return from a reference date
// to the next available trading day. If the reference date is not a trading
// day it snaps forward to the earliest known date on or after it. Returns
// ok=false when no snap target exists, the reference lands on the last known
// date, or the reference close is zero.
func NextDayChange(prices map[string]float64, date string) (float64, bool) {
	dates := make([]string, 0, len(prices))
	for d := range prices {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// First known date on or after the reference.
	idx := sort.SearchStrings(dates, date)
	if idx >= len(dates) {
		return 0, false
	}
	if idx+1 >= len(dates) {
		return 0, false // no next day to compare against
	}

	today := prices[dates[idx]]
	next := prices[dates[idx+1]]
	if today == 0 {
		return 0, false
	}
	return (next - today) / today * 100, true
}
