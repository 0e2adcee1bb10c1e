// Package metrics serves product metrics for the admin dashboard. Each metric
// is a fixed query against the analytics warehouse; when no warehouse is
// configured the service answers with deterministic mock data instead.
package metrics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

type Name string

const (
	DailyActiveUsers  Name = "daily-active-users"
	SessionsPerDay    Name = "sessions-per-day"
	MessagesPerDay    Name = "messages-per-day"
	PlatformBreakdown Name = "platform-breakdown"
	Retention         Name = "retention"
)

// Shape of a metric's result.
type Kind int

const (
	KindSeries Kind = iota
	KindBreakdown
)

const (
	MinDays = 1
	MaxDays = 90
)

var ErrUnknownMetric = errors.New("unknown metric")

type definition struct {
	kind Kind
	// template has one %s verb for the window in days.
	template string
}

var definitions = map[Name]definition{
	DailyActiveUsers: {KindSeries, `SELECT toDate(timestamp) AS day, count(DISTINCT distinct_id) AS value
FROM events
WHERE timestamp >= now() - INTERVAL %s DAY
GROUP BY day
ORDER BY day`},
	SessionsPerDay: {KindSeries, `SELECT toDate(timestamp) AS day, count() AS value
FROM events
WHERE event = 'session_created' AND timestamp >= now() - INTERVAL %s DAY
GROUP BY day
ORDER BY day`},
	MessagesPerDay: {KindSeries, `SELECT toDate(timestamp) AS day, count() AS value
FROM events
WHERE event = 'message_sent' AND timestamp >= now() - INTERVAL %s DAY
GROUP BY day
ORDER BY day`},
	PlatformBreakdown: {KindBreakdown, `SELECT coalesce(properties.platform, 'unknown') AS label, count(DISTINCT distinct_id) AS value
FROM events
WHERE timestamp >= now() - INTERVAL %s DAY
GROUP BY label
ORDER BY value DESC`},
	// share of each day's active users first seen on an earlier day
	Retention: {KindSeries, `SELECT toDate(timestamp) AS day,
       uniqIf(distinct_id, toDate(person.created_at) < toDate(timestamp)) / greatest(1, uniq(distinct_id)) AS value
FROM events
WHERE timestamp >= now() - INTERVAL %s DAY
GROUP BY day
ORDER BY day`},
}

// Query is a built metric query ready to send.
type Query struct {
	Name Name
	Kind Kind
	Days int
	SQL  string
}

// ClampDays bounds a requested window to [MinDays, MaxDays].
func ClampDays(days int) int {
	return min(max(days, MinDays), MaxDays)
}

// Names lists the known metrics, sorted.
func Names() []Name {
	out := make([]Name, 0, len(definitions))
	for n := range definitions {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build renders the query for name over a window of days. The window is
// clamped and formatted from an int, so no caller text reaches the SQL.
func Build(name Name, days int) (Query, error) {
	def, ok := definitions[name]
	if !ok {
		return Query{}, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
	days = ClampDays(days)
	return Query{
		Name: name,
		Kind: def.kind,
		Days: days,
		SQL:  fmt.Sprintf(def.template, strconv.Itoa(days)),
	}, nil
}
