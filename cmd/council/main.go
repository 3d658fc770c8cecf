package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"council/backends"
	"council/domain"
	"council/repositories"
	"council/runtime"
	"council/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, drives the conversation loop and
// centralizes error reporting so deferred cleanups always execute.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Wiring: gateway, backends, dispatcher, session service
	seed := config.OfflineSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	backendConfig := backends.Config{
		Mode:             backends.Mode(config.AppMode),
		OpenAIKey:        config.OpenAIKey,
		AnthropicKey:     config.AnthropicKey,
		AnthropicBaseURL: config.AnthropicBaseURL,
		RequestTimeout:   config.RequestTimeout,
		Seed:             seed,
	}
	registry := backends.NewRegistry(backendConfig)
	repository := repositories.NewSessionRepository(db, log)
	dispatcher := runtime.NewDispatcher(log, registry, registry.Fallback())
	service := services.NewSessionService(log, repository, dispatcher)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Restore the last shown session, or start a fresh one
	session, err := service.CurrentSession()
	if err != nil {
		return err
	}
	if session == nil {
		created, err := service.CreateSession()
		if err != nil {
			return err
		}
		session = &created
	}
	log.Info("Session ready", "session", session.ID, "title", session.Title)
	printTranscript(*session)

	// 6. Conversation loop
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		updated, err := service.SubmitUserMessage(ctx, session.ID, text)
		if err != nil {
			log.Error("Submission failed", "error", err)
			continue
		}
		printReplies(updated, len(session.Messages)+1)
		*session = updated
	}

	log.Info("Program stopped cleanly")
	return scanner.Err()
}

func printTranscript(session domain.Session) {
	for _, message := range session.Messages {
		printMessage(session, message)
	}
}

// printReplies prints every message appended after the message at
// index from, skipping the echoed user message itself.
func printReplies(session domain.Session, from int) {
	for _, message := range session.Messages[from:] {
		printMessage(session, message)
	}
}

func printMessage(session domain.Session, message domain.Message) {
	if message.FromUser() {
		fmt.Printf("you: %s\n", message.Content)
		return
	}
	name := message.ParticipantID
	tag := ""
	if p := session.FindParticipant(message.ParticipantID); p != nil {
		name = p.Name
		tag = p.Color
	}
	participantColor(tag).Printf("%s: ", name)
	fmt.Println(message.Content)
}

func participantColor(tag string) color.Color {
	switch tag {
	case "blue":
		return color.FgBlue
	case "purple":
		return color.FgMagenta
	case "green":
		return color.FgGreen
	case "red":
		return color.FgRed
	default:
		return color.FgCyan
	}
}
