package moderation

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newChecker() *Checker { return New(zerolog.Nop()) }

func TestCheckAllowsNormalText(t *testing.T) {
	c := newChecker()
	assert.Equal(t, Allow, c.Check("our first day at the beach"))
	assert.Equal(t, Allow, c.Check(""))
}

func TestCheckRejectsBlockedTerms(t *testing.T) {
	c := newChecker()
	assert.Equal(t, Reject, c.Check("buy VIAGRA now"))
	assert.Equal(t, Reject, c.Check("check my onlyfans.com page"))
}

func TestCheckFlagsLinkSpam(t *testing.T) {
	c := newChecker()
	spam := strings.Repeat("https://spam.example ", 5)
	assert.Equal(t, Flag, c.Check(spam))
	assert.Equal(t, Allow, c.Check("see https://example.com"))
}

func TestCheckFlagsShouting(t *testing.T) {
	c := newChecker()
	assert.Equal(t, Flag, c.Check("THIS IS THE BEST DAY OF MY ENTIRE LIFE"))
	assert.Equal(t, Allow, c.Check("OK"))
}
