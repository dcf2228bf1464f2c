package recorder

import "time"

// LoadEvent is the outcome of one forecast load
type LoadEvent struct {
	ID        int64         `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Duration  time.Duration `json:"duration"`
	Rows      int           `json:"rows"`
	Warnings  int           `json:"warnings"`
	ErrorKind string        `json:"errorKind,omitempty"`
	Error     string        `json:"error,omitempty"`
	MAE       *float64      `json:"mae,omitempty"`
	RMSE      *float64      `json:"rmse,omitempty"`
}

// Recorder persists load history for later inspection.
type Recorder interface {
	RecordLoad(evt *LoadEvent) error
	RecentLoads(limit int) ([]LoadEvent, error)
	Close() error
}
