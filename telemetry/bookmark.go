package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash   BookmarkType = "population_crash"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkForageSurge       BookmarkType = "forage_surge"
	BookmarkStablePopulation  BookmarkType = "stable_population"
)

// Bookmark thresholds. Unlike the teacher's config-driven values, these
// are fixed constants: this module has no per-run bookmark tuning
// surface in its scenario schema.
const (
	crashDropFraction     = 0.3
	crashMinDrop          = 3
	recoveryMultiplier    = 3
	recoveryMinPopulation = 3
	forageSurgeMultiplier = 2.0
	forageSurgeMinCount   = 3
	stableWindowsRequired = 5
	stableCVThreshold     = 0.02
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark", "type", string(b.Type), "tick", b.Tick, "description", b.Description)
}

// BookmarkDetector detects interesting population moments from a rolling
// window-stats history, mirroring the teacher's circular-buffer
// BookmarkDetector.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentMin          int
	recentPeak         int
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window stats and returns any triggered
// bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkForageSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStablePopulation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.AliveCount < bd.recentMin || bd.recentMin == 0 {
		bd.recentMin = stats.AliveCount
	}
	if stats.AliveCount > bd.recentPeak {
		bd.recentPeak = stats.AliveCount
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}
	dropFraction := 1.0 - float64(stats.AliveCount)/float64(bd.recentPeak)
	if dropFraction > crashDropFraction && stats.AliveCount < bd.recentPeak-crashMinDrop {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.AliveCount
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("population dropped %.0f%% from peak %d to %d", dropFraction*100, oldPeak, stats.AliveCount),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationRecovery(stats WindowStats) *Bookmark {
	if bd.recentMin == 0 || bd.recentMin > recoveryMinPopulation {
		return nil
	}
	threshold := bd.recentMin * recoveryMultiplier
	if stats.AliveCount >= threshold {
		oldMin := bd.recentMin
		bd.recentMin = stats.AliveCount
		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("population recovered from %d to %d", oldMin, stats.AliveCount),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkForageSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	var total int
	for _, h := range history {
		total += h.ForageCount
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}
	if float64(stats.ForageCount) > avg*forageSurgeMultiplier && stats.ForageCount >= forageSurgeMinCount {
		return &Bookmark{
			Type:        BookmarkForageSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("forage count %d is %.1fx the rolling average (%.1f)", stats.ForageCount, float64(stats.ForageCount)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.AliveCount == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.AliveCount)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.AliveCount) - mean
		variance += d * d
	}
	variance /= 4

	cv := 0.0
	if mean > 0 {
		cv = variance / (mean * mean)
	}

	if cv < stableCVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == stableWindowsRequired {
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("population held steady near %d over %d+ windows", stats.AliveCount, stableWindowsRequired),
		}
	}
	return nil
}
