package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger: human-readable
// console output in development, JSON everywhere else.
func InitLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
