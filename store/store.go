// Package store persists the single high-score slot.
//
// Every driver stores the value as an integer string under HighScoreKey so
// the slot stays readable by hand.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HighScoreKey names the slot in key/value backends.
const HighScoreKey = "highScore"

var (
	// ErrNotFound means the slot has never been written.
	ErrNotFound = errors.New("high score not found")
	// ErrCorrupt means the slot holds something that is not a non-negative integer.
	ErrCorrupt = errors.New("high score unparseable")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// HighScoreStore reads and writes the high-score slot.
type HighScoreStore interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, score int) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open returns the store for driver. path is ignored by the memory driver.
func Open(driver, path string) (HighScoreStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFile:
		s, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func parseScore(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrCorrupt, s)
	}
	return n, nil
}

func formatScore(score int) string {
	return strconv.Itoa(score)
}
