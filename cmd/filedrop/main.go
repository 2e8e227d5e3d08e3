package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/amezav/filedrop/internal/consumer"
	"github.com/amezav/filedrop/internal/engine"
	"github.com/amezav/filedrop/internal/preview"
	"github.com/amezav/filedrop/internal/services"
	"github.com/amezav/filedrop/internal/telemetry"
)

func setupLogging() {
	var log_level slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG", "debug":
		log_level = slog.LevelDebug
	case "WARN", "warn":
		log_level = slog.LevelWarn
	case "ERROR", "error":
		log_level = slog.LevelError
	default:
		log_level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     log_level,
		AddSource: false,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {

			// Format time to show only the time (HH:MM:SS)
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format("15:04:05"))
			}

			return a
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)
}

func loadEnv() {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		slog.Warn("No .env file found, using environment variables directly.")
		return
	}

	err := godotenv.Load(".env")
	if err != nil {
		slog.Error("Error loading .env file", "error", err)
		os.Exit(1)
	}
}

func prepareAMQPUri() string {
	rb_host := os.Getenv("RABBITMQ_HOST")
	rb_port := os.Getenv("RABBITMQ_PORT")
	rb_user := os.Getenv("RABBITMQ_USER")
	rb_pass := os.Getenv("RABBITMQ_PASS")

	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		rb_user,
		rb_pass,
		rb_host,
		rb_port,
	)
}

func prepareAMQPConsumer(
	telemetry *telemetry.TelemetrySvc,
) (consumer.MessageConsumer, error) {
	var amqpCfg consumer.AMQPConfig
	amqpCfg.AMQPUri = prepareAMQPUri()
	amqpCfg.Exchange = os.Getenv("AMQP_EXCHANGE")
	amqpCfg.ConvertQueueName = os.Getenv("AMQP_QUEUE_CONVERT_REQUESTS")
	amqpCfg.PurgeQueueName = os.Getenv("AMQP_QUEUE_PURGE_REQUESTS")

	conversionsSvc, err := prepareConversionsService(telemetry)
	if err != nil {
		return nil, err
	}

	return consumer.NewAMQPConsumer(amqpCfg, conversionsSvc, telemetry)
}

func prepareConversionsService(
	telemetry *telemetry.TelemetrySvc,
) (*services.ConversionsService, error) {
	conversionsCfg := services.ConversionsConfig{
		DirInboxRoot:     os.Getenv("DIR_INBOX_ROOT"),
		DirDownloadsRoot: os.Getenv("DIR_DOWNLOADS_ROOT"),
	}

	if conversionsCfg.DirInboxRoot == "" || conversionsCfg.DirDownloadsRoot == "" {
		slog.Error(
			"Missing required environment variables for conversions service",
			"DIR_INBOX_ROOT", conversionsCfg.DirInboxRoot,
			"DIR_DOWNLOADS_ROOT", conversionsCfg.DirDownloadsRoot,
		)
		os.Exit(1)
	}

	previewWidth := preview.DefaultPreviewWidth
	widthStr := os.Getenv("PREVIEW_WIDTH_PX")
	if widthStr != "" {
		width, err := strconv.Atoi(strings.TrimSpace(widthStr))
		if err != nil {
			slog.Error(
				"Invalid preview width in PREVIEW_WIDTH_PX",
				"width",
				widthStr,
				"error",
				err,
			)
			os.Exit(1)
		}

		if width <= 0 {
			slog.Error(
				"Preview width must be a positive integer", "width", width,
			)
			os.Exit(1)
		}

		previewWidth = width
	}

	previews := preview.NewLilliputGenerator(previewWidth, telemetry)
	converter := engine.New(telemetry)

	return services.NewConversionsService(conversionsCfg, previews, converter)
}

func main() {
	loadEnv()
	setupLogging()

	slog.Info("Starting Filedrop service...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init telemetry services
	telemetry, err := telemetry.NewTelemetrySvc(ctx)
	if err != nil {
		slog.Error("Failed to initialize Telemetry services", "error", err)
		os.Exit(1)
	}

	amqpConsumer, err := prepareAMQPConsumer(telemetry)
	if err != nil {
		slog.Error("Failed to create AMQP consumer", "error", err)
		os.Exit(1)
	}

	if err := amqpConsumer.Start(ctx); err != nil {
		slog.Error("Failed to start AMQP consumer", "error", err)
		os.Exit(1)
	}
	slog.Info("Filedrop service is running. Press Ctrl+C to stop.")

	// Graceful shutdown (listen for OS signals)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigChan:
		slog.Info("Received OS signal, shutting down...", "signal", s.String())
	case <-ctx.Done():
		slog.Info(
			"Parent context cancelled, shutting down...",
			"reason",
			ctx.Err(),
		)
	}

	// --- --- --- --- --- --- --- --- --- --- --- ---
	// Perform graceful shutdown operations
	// before cancelling context

	amqpConsumer.Stop()
	if err := telemetry.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown telemetry services", "error", err)
	}

	// Trigger context cancellation
	cancel()
	slog.Info("Filedrop service exited gracefully.")
}
