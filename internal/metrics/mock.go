package metrics

import "time"

var mockPlatforms = Breakdown{
	{Label: "ios", Value: 412},
	{Label: "android", Value: 287},
	{Label: "web", Value: 164},
	{Label: "cli", Value: 91},
}

// mockResult fabricates a stable answer for q ending at today (UTC), so the
// dashboard renders something sensible without a warehouse.
func mockResult(q Query, today time.Time) Result {
	out := Result{Metric: q.Name, Days: q.Days, Source: SourceMock}
	if q.Kind == KindBreakdown {
		out.Breakdown = append(Breakdown(nil), mockPlatforms...)
		return out
	}

	base, spread := mockScale(q.Name)
	start := today.UTC().Truncate(24*time.Hour).AddDate(0, 0, -(q.Days - 1))
	out.Series = make(TimeSeries, q.Days)
	for i := range q.Days {
		day := start.AddDate(0, 0, i)
		// cheap deterministic wobble keyed on the calendar day
		wobble := float64((day.YearDay()*37+int(day.Weekday())*11)%100) / 100
		out.Series[i] = Point{Date: day.Format(time.DateOnly), Value: base + spread*wobble}
	}
	return out
}

func mockScale(n Name) (base, spread float64) {
	switch n {
	case DailyActiveUsers:
		return 800, 250
	case SessionsPerDay:
		return 1500, 600
	case MessagesPerDay:
		return 12000, 4000
	case Retention:
		return 0.35, 0.2
	}
	return 100, 50
}
