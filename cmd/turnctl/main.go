// Command turnctl drives a game from the command line against the
// configured storage.
//
//	turnctl create -name "Game A" -p1 P1 -p2 P2 [-code ABC123]
//	turnctl join -code ABC123 -steam P2
//	turnctl show -code ABC123
//	turnctl status -game <id> -steam P2 -status busy [-message afk | -clear-message]
//	turnctl complete -game <id> -steam P1
//	turnctl subscribe -steam P1 -endpoint https://push.example/abc -p256dh KEY -auth SECRET
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"turnping/internal/app"
	"turnping/internal/config"
	"turnping/internal/logger"
	"turnping/internal/model"
	"turnping/internal/service"
)

var errUsage = errors.New("usage: turnctl <create|join|show|status|complete|subscribe> [flags]")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// keep stdout for command output
	cfg.Log.Level = "warn"
	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialise", zap.Error(err))
	}
	defer a.Close()

	if err := run(ctx, a.Games, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, games *service.GameService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var result any
	var err error

	switch cmd {
	case "create":
		name := fs.String("name", "", "game name")
		code := fs.String("code", "", "join code, generated when empty")
		p1 := fs.String("p1", "", "player 1 steam id (moves first)")
		p2 := fs.String("p2", "", "player 2 steam id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		result, err = games.CreateGame(ctx, service.CreateGameInput{
			Name:           *name,
			Code:           *code,
			Player1SteamID: *p1,
			Player2SteamID: *p2,
		})

	case "join":
		code := fs.String("code", "", "join code")
		steam := fs.String("steam", "", "your steam id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		result, err = games.JoinGame(ctx, *code, *steam)

	case "show":
		code := fs.String("code", "", "join code")
		if err := fs.Parse(args); err != nil {
			return err
		}
		result, err = games.GetGameByCode(ctx, *code)

	case "status":
		game := fs.String("game", "", "game session id")
		steam := fs.String("steam", "", "your steam id")
		status := fs.String("status", "", "ready, busy or unavailable")
		message := fs.String("message", "", "status message")
		clear := fs.Bool("clear-message", false, "remove the stored message")
		if err := fs.Parse(args); err != nil {
			return err
		}
		msg := model.KeepMessage()
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "message" {
				msg = model.SetMessage(*message)
			}
		})
		if *clear {
			msg = model.ClearMessage()
		}
		result, err = games.UpdateStatus(ctx, *game, *steam, model.Status(*status), msg)

	case "complete":
		game := fs.String("game", "", "game session id")
		steam := fs.String("steam", "", "your steam id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		result, err = games.CompleteTurn(ctx, *game, *steam)

	case "subscribe":
		steam := fs.String("steam", "", "your steam id")
		endpoint := fs.String("endpoint", "", "push endpoint")
		p256dh := fs.String("p256dh", "", "push p256dh key")
		auth := fs.String("auth", "", "push auth secret")
		if err := fs.Parse(args); err != nil {
			return err
		}
		result, err = games.Subscribe(ctx, model.SubscriptionInput{
			SteamID:  *steam,
			Endpoint: *endpoint,
			P256dh:   *p256dh,
			Auth:     *auth,
		})

	default:
		return errUsage
	}

	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
