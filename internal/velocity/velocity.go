// Package velocity buckets blog posts into adjacent trailing day-windows
// and derives the publishing trend for each configured window size.
package velocity

import (
	"math"
	"strconv"
	"strings"
	"time"

	"blogvelocity/internal/core/domain"
)

const (
	longWindowDays  = 30
	shortWindowDays = 14
)

// publishDate layouts seen from the agent, tried in order.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123,
	time.RFC1123Z,
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// Analyze computes window metrics for every configured window size.
// It is a pure function of the post list and the supplied instant; posts
// whose publish date cannot be parsed contribute to neither window.
func Analyze(posts []domain.BlogPost, now time.Time) domain.VelocityMetrics {
	return domain.VelocityMetrics{
		Velocity30d: analyzeWindow(posts, now, longWindowDays),
		Velocity14d: analyzeWindow(posts, now, shortWindowDays),
	}
}

func analyzeWindow(posts []domain.BlogPost, now time.Time, windowDays int) domain.WindowMetrics {
	currentStart := startOfDay(now.AddDate(0, 0, -windowDays))
	previousStart := startOfDay(now.AddDate(0, 0, -2*windowDays))

	var currentCount, previousCount int
	for _, post := range posts {
		published, ok := ParsePublishDate(post.PublishDate)
		if !ok {
			continue
		}
		day := startOfDay(published)
		switch {
		case !day.Before(currentStart) && !day.After(now):
			currentCount++
		case !day.Before(previousStart) && day.Before(currentStart):
			previousCount++
		}
	}

	return compare(currentCount, previousCount)
}

func compare(currentCount, previousCount int) domain.WindowMetrics {
	m := domain.WindowMetrics{
		CurrentCount:  currentCount,
		PreviousCount: previousCount,
		Trend:         domain.TrendNoChange,
	}

	switch {
	case previousCount > 0:
		m.PercentageChange = Round2(float64(currentCount-previousCount) / float64(previousCount) * 100)
		if m.PercentageChange > 0 {
			m.Trend = domain.TrendUp
		} else if m.PercentageChange < 0 {
			m.Trend = domain.TrendDown
		}
	case currentCount > 0:
		m.PercentageChange = 100
		m.Trend = domain.TrendUp
	}

	return m
}

// ParsePublishDate parses the textual publish date the agent returned.
// It tries the known layouts first and falls back to a strict YYYY-MM-DD
// decomposition; a false return means the post should be skipped.
func ParsePublishDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
