// Command scheduler runs one reminder lifecycle pass per invocation. In AWS it is a Lambda
// fired by an EventBridge schedule at 09:00 and 19:00 UTC; locally it runs once and exits.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hisworks-api/internal/app"
	"github.com/hisworks-api/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	run := a.ScheduledRun(logger)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		res, _ := run.Handle(ctx, events.CloudWatchEvent{Time: time.Now().UTC()})
		if res != nil {
			logger.Info("local run finished", "run_id", res.RunID, "marked_sent", res.MarkedSent, "failed", res.Failed)
		}
		return
	}

	lambda.Start(run.Handle)
}
