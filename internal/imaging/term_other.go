//go:build !unix

package imaging

import (
	"errors"
	"os"
	"time"
)

// CellSizeOf returns DefaultCellSize; pixel sizes are not reported here.
func CellSizeOf(*os.File) CellSize {
	return DefaultCellSize
}

// QueryTerminal is not supported on this platform.
func QueryTerminal(_, _ *os.File, _ time.Duration) (string, error) {
	return "", errors.New("terminal capability query not supported on this platform")
}
