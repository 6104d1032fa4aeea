package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Season identifies a hockey season spanning two calendar years, e.g. "2024-2025".
type Season string

var ErrInvalidSeason = errors.New("invalid season")

// ParseSeason validates the "YYYY-YYYY" shape and that the years are consecutive.
func ParseSeason(s string) (Season, error) {
	s = strings.TrimSpace(s)
	start, end, ok := strings.Cut(s, "-")
	if !ok || len(start) != 4 || len(end) != 4 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
	sy, err := strconv.Atoi(start)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
	ey, err := strconv.Atoi(end)
	if err != nil || ey != sy+1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
	return Season(s), nil
}

// CurrentSeason returns the season in progress at now. Seasons roll over on
// September 1st.
func CurrentSeason(now time.Time) Season {
	year := now.Year()
	if now.Month() >= time.September {
		return Season(fmt.Sprintf("%d-%d", year, year+1))
	}
	return Season(fmt.Sprintf("%d-%d", year-1, year))
}

// StartYear returns the leading year token ("2024" for "2024-2025").
func (s Season) StartYear() string {
	start, _, _ := strings.Cut(string(s), "-")
	return start
}

func (s Season) String() string {
	return string(s)
}

// SeasonRule decides whether a dated record belongs to a season.
type SeasonRule interface {
	Contains(season Season, d Date) bool
	Name() string
}

// YearPrefixRule matches a record when its date's year token equals the
// season's starting year token. January 2025 therefore does not belong to
// "2024-2025" under this rule.
type YearPrefixRule struct{}

func (YearPrefixRule) Contains(season Season, d Date) bool {
	if d.IsZero() {
		return false
	}
	start := season.StartYear()
	return start != "" && strings.HasPrefix(d.String(), start)
}

func (YearPrefixRule) Name() string { return "year-prefix" }

// HockeyCalendarRule matches dates from September 1st of the start year
// through August 31st of the following year.
type HockeyCalendarRule struct{}

func (HockeyCalendarRule) Contains(season Season, d Date) bool {
	if d.IsZero() {
		return false
	}
	sy, err := strconv.Atoi(season.StartYear())
	if err != nil {
		return false
	}
	from := time.Date(sy, time.September, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(sy+1, time.September, 1, 0, 0, 0, 0, time.UTC)
	return !d.Before(from) && d.Before(to)
}

func (HockeyCalendarRule) Name() string { return "hockey-calendar" }

// DefaultSeasonRule is the membership rule used when none is configured.
var DefaultSeasonRule SeasonRule = YearPrefixRule{}

// SeasonRuleByName resolves a configured rule name.
func SeasonRuleByName(name string) (SeasonRule, error) {
	switch strings.TrimSpace(name) {
	case "", "year-prefix":
		return YearPrefixRule{}, nil
	case "hockey-calendar":
		return HockeyCalendarRule{}, nil
	default:
		return nil, fmt.Errorf("unknown season rule: %s", name)
	}
}
