package cli

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// setupLogging points the standard logrus logger at w. verbose forces the
// debug level; otherwise level comes from configuration.
func setupLogging(w io.Writer, level string, verbose bool) error {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	if verbose {
		log.SetLevel(log.DebugLevel)
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	log.SetLevel(lvl)
	return nil
}
