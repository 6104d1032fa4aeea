// Package services provides business logic and orchestration services.
//
// This file holds the dueness strategies for recurring expense templates.
// Each frequency has its own checker.
package services

import (
	"fmt"
	"time"

	"rinkbook/internal/core"
)

// DuenessChecker is the strategy interface for checking if a recurring expense is due.
type DuenessChecker interface {
	// IsDue reports whether a new occurrence should be created given the
	// previous occurrence and the template's anchor date.
	IsDue(lastExecution, now time.Time, anchor core.Date) bool
}

// WeeklyChecker implements DuenessChecker for weekly recurring expenses.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since last execution.
func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	daysSince := now.Sub(lastExecution).Hours() / 24
	return daysSince >= 7
}

// MonthlyChecker implements DuenessChecker for monthly recurring expenses.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the anchor day.
func (MonthlyChecker) IsDue(lastExecution, now time.Time, anchor core.Date) bool {
	return dueAfterMonths(lastExecution, now, anchor, 1)
}

// QuarterlyChecker implements DuenessChecker for quarterly recurring expenses.
type QuarterlyChecker struct{}

func (QuarterlyChecker) IsDue(lastExecution, now time.Time, anchor core.Date) bool {
	return dueAfterMonths(lastExecution, now, anchor, 3)
}

// YearlyChecker implements DuenessChecker for yearly recurring expenses.
type YearlyChecker struct{}

// IsDue returns true if we're in a new year and have reached the anchor month and day.
func (YearlyChecker) IsDue(lastExecution, now time.Time, anchor core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() >= now.Year() {
		return false
	}
	if now.Month() != anchor.Month() {
		return now.Month() > anchor.Month()
	}
	return now.Day() >= clampDay(anchor.Day(), now)
}

// dueAfterMonths is due once at least n calendar months separate the two
// dates, and on the boundary month only from the anchor day on.
func dueAfterMonths(lastExecution, now time.Time, anchor core.Date, n int) bool {
	if lastExecution.IsZero() {
		return true
	}
	elapsed := (now.Year()-lastExecution.Year())*12 + int(now.Month()) - int(lastExecution.Month())
	switch {
	case elapsed < n:
		return false
	case elapsed > n:
		return true
	}
	return now.Day() >= clampDay(anchor.Day(), now)
}

// clampDay maps an anchor day such as the 31st onto the last day of now's month.
func clampDay(day int, now time.Time) int {
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDayOfMonth {
		return lastDayOfMonth
	}
	return day
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Weekly:    WeeklyChecker{},
	core.Monthly:   MonthlyChecker{},
	core.Quarterly: QuarterlyChecker{},
	core.Yearly:    YearlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown recurring frequency: %s", frequency)
	}
	return checker, nil
}
