package metrics

import (
	"errors"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Point is one stored sample
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

var (
	mu       sync.Mutex
	storage  tstorage.Storage
	counters = map[string]int64{}
)

// InitMetrics opens the time series storage under <workdir>/data/metrics.
// An empty workdir keeps everything in memory.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		return nil
	}
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(time.Hour * 6),
		tstorage.WithRetention(time.Hour * 24 * 14),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(path.Join(workdir, "data", "metrics")))
	}
	s, err := tstorage.NewStorage(opts...)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// SetGauge records the current value of name
func SetGauge(name string, value int64) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// Incr bumps an in-memory counter, written out by Flush
func Incr(name string) {
	mu.Lock()
	counters[name]++
	mu.Unlock()
}

// Flush writes all counters accumulated since the previous flush and resets them
func Flush() {
	mu.Lock()
	s := storage
	pending := counters
	counters = map[string]int64{}
	mu.Unlock()
	if s == nil || len(pending) == 0 {
		return
	}
	ts := time.Now().Unix()
	rows := make([]tstorage.Row, 0, len(pending))
	for name, v := range pending {
		rows = append(rows, tstorage.Row{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: ts, Value: float64(v)},
		})
	}
	_ = s.InsertRows(rows)
}

// Query returns the samples of name in [start, end], oldest first
func Query(name string, start, end time.Time) ([]Point, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return []Point{}, nil
	}
	// tstorage treats end as exclusive
	points, err := s.Select(name, nil, start.Unix(), end.Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return []Point{}, nil
	}
	if err != nil {
		return nil, err
	}
	result := make([]Point, 0, len(points))
	for _, p := range points {
		result = append(result, Point{Timestamp: p.Timestamp, Value: p.Value})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp < result[j].Timestamp })
	return result, nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
