package httpx

import "log/slog"

// testLogger returns a logger that discards output, keeping test runs quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
