package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"council/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

// viewer lists persisted sessions without touching them.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repository := repositories.NewSessionRepository(db, logs.GetLoggerFromString(config.LogLevel))
	sessions, err := repository.GetAllSessions()
	if err != nil {
		log.Fatalf("Failed to load sessions: %v", err)
	}
	current, err := repository.GetCurrentSessionID()
	if err != nil {
		log.Fatalf("Failed to load current session pointer: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Participants", "Messages", "Updated", "Current"})
	for _, session := range sessions {
		isCurrent := ""
		if current != nil && *current == session.ID {
			isCurrent = "*"
		}
		table.Append([]string{
			session.ID,
			session.Title,
			strconv.Itoa(len(session.Participants)),
			strconv.Itoa(len(session.Messages)),
			session.UpdatedAt.Format(time.RFC822),
			isCurrent,
		})
	}
	table.Render()
	fmt.Printf("%d session(s)\n", len(sessions))
}
