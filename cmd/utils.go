package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"frontdesk-backend/internal/config"
	"frontdesk-backend/internal/messaging"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// SetupLogFile tees the log output into path as well as stderr. The returned
// file must be closed by the caller; it is nil when path is empty.
func SetupLogFile(path string) (*os.File, error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if path == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating directory for log file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(f, os.Stderr))
	return f, nil
}

// CreateQueue returns the publisher the chat pipeline writes escalations to and
// the reciever the alert worker consumes from.
func CreateQueue(cfg config.Config) (messaging.Publisher, messaging.Reciever, error) {
	switch cfg.QueueBackend {
	case config.QueueRabbitMQ:
		publisher, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to rabbitmq publisher: %w", err)
		}
		reciever, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
		if err != nil {
			publisher.Close()
			return nil, nil, fmt.Errorf("failed to connect to rabbitmq receiver: %w", err)
		}
		return publisher, reciever, nil
	default:
		queue := messaging.NewInMemoryQueue()
		return queue, queue, nil
	}
}
