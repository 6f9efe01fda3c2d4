package availability

import (
	"testing"
	"time"
)

func BenchmarkEngineUpcoming(b *testing.B) {
	engine := NewEngine(time.UTC)
	from := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	window := Window{
		Days: []time.Weekday{
			time.Monday,
			time.Tuesday,
			time.Wednesday,
			time.Thursday,
			time.Friday,
		},
		Start: "09:00",
		End:   "10:30",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		slots, err := engine.Upcoming(window, from, 60)
		if err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 60 {
			b.Fatalf("expected 60 slots, got %d", len(slots))
		}
	}
}
