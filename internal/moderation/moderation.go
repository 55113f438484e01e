// Package moderation provides lightweight content screening applied before
// user text is published. It is heuristic and best-effort: hard matches are
// rejected, everything else is allowed and logged.
package moderation

import (
	"strings"

	"github.com/rs/zerolog"
)

// Verdict is the outcome of a moderation check.
type Verdict int

const (
	Allow Verdict = iota
	Flag          // allowed, but worth a log line
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Flag:
		return "flag"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Checker screens free-form user text (captions, notes, comments).
type Checker struct {
	log      zerolog.Logger
	blocked  []string
	maxLinks int
}

// New constructs a Checker with the default word list.
func New(log zerolog.Logger) *Checker {
	return &Checker{
		log:      log,
		blocked:  defaultBlocklist,
		maxLinks: 3,
	}
}

// defaultBlocklist holds hard-reject terms. Kept deliberately small; the
// heuristics are a first line of defense, not a moderation system.
var defaultBlocklist = []string{
	"viagra",
	"free crypto",
	"nude pics",
	"onlyfans.com",
}

// Check classifies text. Empty text is always allowed.
func (c *Checker) Check(text string) Verdict {
	if text == "" {
		return Allow
	}
	lower := strings.ToLower(text)

	for _, w := range c.blocked {
		if strings.Contains(lower, w) {
			c.log.Warn().Str("term", w).Msg("moderation: hard match")
			return Reject
		}
	}

	if strings.Count(lower, "http://")+strings.Count(lower, "https://") > c.maxLinks {
		c.log.Info().Msg("moderation: excessive links")
		return Flag
	}
	if looksShouty(text) {
		return Flag
	}
	return Allow
}

// looksShouty reports whether the text is long and almost entirely uppercase.
func looksShouty(text string) bool {
	if len(text) < 20 {
		return false
	}
	var letters, upper int
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			letters++
		}
		if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	return letters > 0 && upper*10 >= letters*9
}
