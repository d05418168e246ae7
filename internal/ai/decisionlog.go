package ai

import (
	"fmt"
	"strings"
)

// LogEntry is one recorded decision event.
type LogEntry struct {
	Tick     int
	Agent    string  // label e.g. "A0", or "--" for global events
	Category string  // belief, plan, state, fire, grenade, squad, move, error
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] A0   state   change   combat → evading_grenade
func (e LogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-18s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// DecisionLog collects structured events from the decision core. It is
// unbounded and machine-readable: tests and the replay recorder query
// it instead of scraping text output.
type DecisionLog struct {
	entries []LogEntry
	verbose bool
}

// NewDecisionLog creates a log. Verbose mode additionally records
// per-tick position/confidence entries.
func NewDecisionLog(verbose bool) *DecisionLog {
	return &DecisionLog{verbose: verbose}
}

// Add records a new entry.
func (dl *DecisionLog) Add(tick int, agent, category, key, value string, numVal float64) {
	dl.entries = append(dl.entries, LogEntry{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (dl *DecisionLog) AddVerbose(tick int, agent, category, key, value string, numVal float64) {
	if !dl.verbose {
		return
	}
	dl.Add(tick, agent, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (dl *DecisionLog) Entries() []LogEntry {
	return dl.entries
}

// Filter returns entries matching the given category and/or key.
// Empty string matches any value for that field.
func (dl *DecisionLog) Filter(category, key string) []LogEntry {
	var out []LogEntry
	for _, e := range dl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (dl *DecisionLog) FilterAgent(label string) []LogEntry {
	var out []LogEntry
	for _, e := range dl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (dl *DecisionLog) CountCategory(category, key string) int {
	return len(dl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key.
func (dl *DecisionLog) LastOf(category, key string) (LogEntry, bool) {
	entries := dl.Filter(category, key)
	if len(entries) == 0 {
		return LogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether at least one entry matches category, key,
// and value substring.
func (dl *DecisionLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range dl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (dl *DecisionLog) Format() string {
	var sb strings.Builder
	for _, e := range dl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
