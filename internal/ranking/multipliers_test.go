package ranking

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kaiwa/internal/models"
)

func TestFieldWeightMultiplier_Multiply(t *testing.T) {
	config := DefaultRankingConfig()
	mult := NewFieldWeightMultiplier(config)

	tests := []struct {
		kind models.FieldKind
		want float64
	}{
		{models.FieldTitle, 200},
		{models.FieldMessage, 100},
		{models.FieldVersion, 80},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			ctx := &ScoringContext{Entry: newEntry(tt.kind, "x", false)}
			if got := mult.Multiply(ctx, 100); !closeTo(got, tt.want) {
				t.Errorf("Multiply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookmarkMultiplier_Multiply(t *testing.T) {
	config := DefaultRankingConfig()
	mult := NewBookmarkMultiplier(config)

	bookmarked := &ScoringContext{Entry: newEntry(models.FieldMessage, "x", true)}
	if got := mult.Multiply(bookmarked, 100); !closeTo(got, 100*config.BookmarkMultiplier) {
		t.Errorf("bookmarked: got %v", got)
	}

	plain := &ScoringContext{Entry: newEntry(models.FieldMessage, "x", false)}
	if got := mult.Multiply(plain, 100); got != 100 {
		t.Errorf("not bookmarked: got %v, want 100", got)
	}

	version := &ScoringContext{Entry: newEntry(models.FieldVersion, "x", false)}
	if got := mult.Multiply(version, 100); got != 100 {
		t.Errorf("version: got %v, want 100", got)
	}
}

func TestLongContentMultiplier_Multiply(t *testing.T) {
	config := DefaultRankingConfig()
	mult := NewLongContentMultiplier(config)

	tests := []struct {
		name   string
		length int
		want   float64
	}{
		{"short", 10, 100},
		{"at threshold", config.LongContentThreshold, 100},
		{"over threshold", config.LongContentThreshold + 1, 100 * config.LongContentMultiplier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &ScoringContext{Entry: newEntry(models.FieldMessage, strings.Repeat("a", tt.length), false)}
			if got := mult.Multiply(ctx, 100); !closeTo(got, tt.want) {
				t.Errorf("Multiply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecencyMultiplier_Multiply(t *testing.T) {
	config := DefaultRankingConfig()
	config.RecencyEnabled = true
	mult := NewRecencyMultiplier(config)

	baseScore := 100.0
	now := time.Now()

	tests := []struct {
		name      string
		timestamp time.Time
		want      float64
	}{
		{"last hour", now.Add(-30 * time.Minute), baseScore * config.Recency24hMultiplier},
		{"yesterday", now.Add(-20 * time.Hour), baseScore * config.Recency24hMultiplier},
		{"3 days ago", now.Add(-3 * 24 * time.Hour), baseScore * config.RecencyWeekMultiplier},
		{"2 weeks ago", now.Add(-14 * 24 * time.Hour), baseScore * config.RecencyMonthMultiplier},
		{"2 months ago", now.Add(-60 * 24 * time.Hour), baseScore},
		{"no timestamp", time.Time{}, baseScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := newEntry(models.FieldMessage, "x", false)
			entry.Metadata.Timestamp = tt.timestamp
			ctx := &ScoringContext{Entry: entry, Now: now}
			if got := mult.Multiply(ctx, baseScore); !closeTo(got, tt.want) {
				t.Errorf("Multiply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecencyMultiplier_Disabled(t *testing.T) {
	mult := NewRecencyMultiplier(DefaultRankingConfig())
	entry := newEntry(models.FieldMessage, "x", false)
	entry.Metadata.Timestamp = time.Now()
	if got := mult.Multiply(&ScoringContext{Entry: entry, Now: time.Now()}, 100); got != 100 {
		t.Errorf("Multiply() = %v, want 100", got)
	}
}

func TestMultipliers_ZeroStaysZero(t *testing.T) {
	config := DefaultRankingConfig()
	config.RecencyEnabled = true
	entry := newEntry(models.FieldTitle, strings.Repeat("a", 3000), false)
	entry.Metadata.Timestamp = time.Now()
	ctx := &ScoringContext{Entry: entry, Now: time.Now()}
	if got := ApplyMultipliers(ctx, 0, DefaultMultipliers(config)); got != 0 {
		t.Errorf("ApplyMultipliers(0) = %v, want 0", got)
	}
}
