package raster

import "fmt"

// MissingBandError aborts an epoch whose band set is incomplete or unreadable.
type MissingBandError struct {
	Band  Band
	Tile  string
	Epoch string
	Cause error
}

func (e *MissingBandError) Error() string {
	msg := fmt.Sprintf("band %s missing for tile %s (%s epoch)", e.Band, e.Tile, e.Epoch)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *MissingBandError) Unwrap() error {
	return e.Cause
}

// GridMismatchError aborts an epoch whose bands cannot be reconciled onto a
// common pixel grid.
type GridMismatchError struct {
	Band   Band
	Tile   string
	Epoch  string
	Reason string
}

func (e *GridMismatchError) Error() string {
	return fmt.Sprintf("band %s of tile %s (%s epoch) cannot be placed on the common grid: %s",
		e.Band, e.Tile, e.Epoch, e.Reason)
}
