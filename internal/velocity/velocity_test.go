package velocity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogvelocity/internal/core/domain"
)

var now = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func post(date string) domain.BlogPost {
	return domain.BlogPost{Title: "post", PublishDate: date}
}

func dated(daysAgo int) domain.BlogPost {
	return post(now.AddDate(0, 0, -daysAgo).Format("2006-01-02"))
}

func TestAnalyzeWindowBoundaries(t *testing.T) {
	// Exactly 30 days back lands in the current window, 31 days back in
	// the previous one.
	posts := []domain.BlogPost{dated(30), dated(31)}

	m := analyzeWindow(posts, now, 30)
	assert.Equal(t, 1, m.CurrentCount)
	assert.Equal(t, 1, m.PreviousCount)
}

func TestAnalyzeWindowIgnoresOutOfRangeAndUnparseable(t *testing.T) {
	posts := []domain.BlogPost{
		dated(0),
		dated(5),
		dated(45),
		dated(75),           // older than both windows
		post("not a date"),  // skipped
		post(""),            // skipped
		post("15-06-2024!"), // skipped
	}

	m := analyzeWindow(posts, now, 30)
	assert.Equal(t, 2, m.CurrentCount)
	assert.Equal(t, 1, m.PreviousCount)
	assert.LessOrEqual(t, m.CurrentCount+m.PreviousCount, len(posts))
}

func TestAnalyzeTodayCounts(t *testing.T) {
	// now itself is not normalized to start-of-day, so a post published
	// today still falls inside the current window.
	m := analyzeWindow([]domain.BlogPost{post("2024-06-15")}, now, 14)
	assert.Equal(t, 1, m.CurrentCount)
}

func TestCompareZeroDivisionPolicy(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		previous  int
		wantPct   float64
		wantTrend domain.Trend
	}{
		{"growth from nothing", 5, 0, 100, domain.TrendUp},
		{"collapse to nothing", 0, 5, -100, domain.TrendDown},
		{"both empty", 0, 0, 0, domain.TrendNoChange},
		{"flat", 4, 4, 0, domain.TrendNoChange},
		{"up", 6, 4, 50, domain.TrendUp},
		{"down", 4, 6, -33.33, domain.TrendDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := compare(tt.current, tt.previous)
			assert.Equal(t, tt.wantPct, m.PercentageChange)
			assert.Equal(t, tt.wantTrend, m.Trend)
		})
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	posts := []domain.BlogPost{dated(1), dated(10), dated(20), dated(40), post("junk")}

	first := Analyze(posts, now)
	second := Analyze(posts, now)
	assert.Equal(t, first, second)
}

func TestAnalyzeBothWindows(t *testing.T) {
	posts := []domain.BlogPost{dated(2), dated(10), dated(20), dated(40), dated(50)}

	m := Analyze(posts, now)

	assert.Equal(t, 3, m.Velocity30d.CurrentCount)
	assert.Equal(t, 2, m.Velocity30d.PreviousCount)
	assert.Equal(t, 2, m.Velocity14d.CurrentCount)
	assert.Equal(t, 1, m.Velocity14d.PreviousCount)
}

func TestParsePublishDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{"iso date", "2024-06-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2024-06-01T09:30:00Z", time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), true},
		{"human", "Jun 1, 2024", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"slashes", "2024/06/01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"unpadded decomposition", "2024-6-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "yesterday-ish", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"month out of range", "2024-13-01", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePublishDate(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, -33.33, Round2(-100.0/3))
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 2.35, Round2(2.346))
	assert.Equal(t, 0.0, Round2(0))
}
