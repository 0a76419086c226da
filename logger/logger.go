package logger

import (
	"log"

	"go.uber.org/zap"
)

// New builds the process-wide sugared logger. Release mode gets the JSON
// production encoder, everything else the human-readable development one.
func New(environment string) *zap.SugaredLogger {
	var l *zap.Logger
	var err error
	if environment == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return l.Sugar()
}
