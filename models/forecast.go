package models

import (
	"encoding/json"
	"math"
	"time"
)

// Values is a sequence of numbers in which NaN marks a value that could not be parsed.
// It marshals NaN as JSON null.
type Values []float64

// MarshalJSON encodes NaN and infinite entries as null
func (v Values) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(v))
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			continue
		}
		f := v[i]
		out[i] = &f
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null entries back into NaN
func (v *Values) UnmarshalJSON(data []byte) error {
	var in []*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out := make(Values, len(in))
	for i, f := range in {
		if f == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *f
	}
	*v = out
	return nil
}

// ForecastSeries holds one forecast file as three index-aligned sequences
type ForecastSeries struct {
	Timestamps []string `json:"timestamps"` // one label per row, in file order
	Actual     Values   `json:"actual"`     // observed values
	Predicted  Values   `json:"predicted"`  // predicted values
}

// Len returns the number of rows in the series
func (s ForecastSeries) Len() int {
	return len(s.Timestamps)
}

// Empty reports whether the series has no rows
func (s ForecastSeries) Empty() bool {
	return len(s.Timestamps) == 0
}

// ParseWarning describes a row-level data-quality problem found while parsing
type ParseWarning struct {
	Line   int    `json:"line"`   // 1-based line number in the resource
	Field  string `json:"field"`  // "actual", "predicted" or "row"
	Value  string `json:"value"`  // offending raw text
	Reason string `json:"reason"` // short description
}

// Accuracy summarises how close the predicted values are to the actual ones
type Accuracy struct {
	Points int     `json:"points"` // pairs where both values are numbers
	MAE    float64 `json:"mae"`
	RMSE   float64 `json:"rmse"`
}

// MarshalJSON encodes undefined error metrics as null
func (a Accuracy) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Points int      `json:"points"`
		MAE    *float64 `json:"mae"`
		RMSE   *float64 `json:"rmse"`
	}{
		Points: a.Points,
		MAE:    finite(a.MAE),
		RMSE:   finite(a.RMSE),
	})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// LoadResult is the outcome of one successful load cycle
type LoadResult struct {
	Series   ForecastSeries `json:"series"`
	Warnings []ParseWarning `json:"warnings"`
	Accuracy Accuracy       `json:"accuracy"`
	Source   string         `json:"source"`   // name of the source that was read
	LoadedAt time.Time      `json:"loadedAt"` // when the load completed
}
