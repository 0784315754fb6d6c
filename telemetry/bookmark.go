package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCollisionBurst BookmarkType = "collision_burst"
	BookmarkEnergySpike    BookmarkType = "energy_spike"
	BookmarkSettled        BookmarkType = "settled"
)

// Detection thresholds.
const (
	burstFactor       = 2.0 // contacts vs rolling average
	burstMinContacts  = 5
	spikeFactor       = 2.0 // kinetic energy vs rolling average
	spikeMinEnergy    = 1.0
	settledMaxSpeed   = 1.0 // every particle slower than this
	settledMinWindows = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable windows in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	settledWindows int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkCollisionBurst(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkEnergySpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
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

func (bd *BookmarkDetector) checkCollisionBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Contacts
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 || stats.Contacts < burstMinContacts {
		return nil
	}

	if float64(stats.Contacts) > avg*burstFactor {
		return &Bookmark{
			Type:        BookmarkCollisionBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d contacts is %.1fx average (%.1f)", stats.Contacts, float64(stats.Contacts)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkEnergySpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.KineticEnergy
	}
	avg := total / float64(len(history))
	if avg == 0 || stats.KineticEnergy < spikeMinEnergy {
		return nil
	}

	if stats.KineticEnergy > avg*spikeFactor {
		return &Bookmark{
			Type:        BookmarkEnergySpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kinetic energy %.1f is %.1fx average (%.1f)", stats.KineticEnergy, stats.KineticEnergy/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.SpeedMax >= settledMaxSpeed {
		bd.settledWindows = 0
		return nil
	}

	bd.settledWindows++
	if bd.settledWindows == settledMinWindows { // trigger once per settled run
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d particles below speed %.1f for %d windows", stats.Particles, settledMaxSpeed, settledMinWindows),
		}
	}
	return nil
}
