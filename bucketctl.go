package main

import (
	"fmt"
	"os"
	"time"

	"github.com/LeeDigitalWorks/bucketctl/cmd"
	"github.com/LeeDigitalWorks/bucketctl/pkg/logger"

	"github.com/getsentry/sentry-go"
)

func main() {
	err := sentry.Init(sentry.ClientOptions{
		Environment: logger.Environment(),
		Release:     "bucketctl@" + cmd.Version,
		SampleRate:  1.0,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sentry.Init: %v", err)
	}

	code := cmd.Execute()

	// Flush buffered events before the program terminates.
	sentry.Flush(2 * time.Second)
	os.Exit(code)
}
