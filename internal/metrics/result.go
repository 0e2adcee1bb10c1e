package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Result sources.
const (
	SourceWarehouse = "warehouse"
	SourceMock      = "mock"
)

// ErrBadResult marks a warehouse answer that does not fit the metric's shape.
var ErrBadResult = errors.New("unexpected warehouse result")

type Point struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

type TimeSeries []Point

type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Breakdown []Slice

// Result is the response DTO; exactly one of Series and Breakdown is set.
type Result struct {
	Metric    Name       `json:"metric"`
	Days      int        `json:"days"`
	Source    string     `json:"source"`
	Series    TimeSeries `json:"series,omitzero"`
	Breakdown Breakdown  `json:"breakdown,omitzero"`
}

// reshape turns a warehouse table into q's DTO.
func reshape(q Query, res QueryResult) (Result, error) {
	out := Result{Metric: q.Name, Days: q.Days, Source: SourceWarehouse}
	keyCol := "day"
	if q.Kind == KindBreakdown {
		keyCol = "label"
	}
	ki, vi := column(res.Columns, keyCol), column(res.Columns, "value")
	if ki < 0 || vi < 0 {
		return Result{}, fmt.Errorf("%w: columns %v, want %s and value", ErrBadResult, res.Columns, keyCol)
	}

	for i, row := range res.Results {
		if len(row) <= max(ki, vi) {
			return Result{}, fmt.Errorf("%w: row %d has %d cells", ErrBadResult, i, len(row))
		}
		key := fmt.Sprint(row[ki])
		val, err := toFloat(row[vi])
		if err != nil {
			return Result{}, fmt.Errorf("%w: row %d value: %v", ErrBadResult, i, err)
		}
		if q.Kind == KindBreakdown {
			out.Breakdown = append(out.Breakdown, Slice{Label: key, Value: val})
			continue
		}
		if len(key) > 10 {
			key = key[:10] // drop a time part
		}
		out.Series = append(out.Series, Point{Date: key, Value: val})
	}
	if q.Kind == KindBreakdown && out.Breakdown == nil {
		out.Breakdown = Breakdown{}
	}
	if q.Kind == KindSeries && out.Series == nil {
		out.Series = TimeSeries{}
	}
	return out, nil
}

func column(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(x, 64)
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("%T is not a number", v)
}
