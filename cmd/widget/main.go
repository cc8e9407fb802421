package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vittamhq/loan-widget/internal/widget"
)

// Terminal front-end for the widget runtime: the same instance the embed
// script would drive, wired to stdin/stdout instead of a panel.
func main() {
	godotenv.Load()

	cfg := widget.ConfigFromEnv()
	apiURL := flag.String("api", cfg.BaseURL, "backend API root, e.g. http://localhost:8000/api/v1")
	botID := flag.String("bot", cfg.BotID, "bot identifier")
	position := flag.String("position", string(cfg.Position), "panel corner: bottom-right|bottom-left|top-right|top-left")
	width := flag.Int("width", cfg.Width, "panel width")
	height := flag.Int("height", cfg.Height, "panel height")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	controller := widget.NewController()
	inst, err := controller.Mount(widget.Config{
		BaseURL:  *apiURL,
		BotID:    *botID,
		Position: widget.Position(*position),
		Width:    *width,
		Height:   *height,
		Logger:   log.Logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "mount failed:", err)
		os.Exit(1)
	}
	defer controller.Unmount()

	go printEvents(inst)

	fmt.Println("Type a message and press enter. Commands: /attach <requirement> <file>, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/attach "):
			attach(inst, strings.TrimPrefix(line, "/attach "))
		default:
			controller.SendMessage(line)
		}
	}
}

func printEvents(inst *widget.Instance) {
	for ev := range inst.Events() {
		switch ev.Type {
		case widget.EventMessageAppended:
			if ev.Message.Role == widget.RoleBot {
				fmt.Printf("\nassistant> %s\n", ev.Message.Text)
				if ev.Message.SanctionID != "" {
					fmt.Printf("sanction issued: %s\n", ev.Message.SanctionID)
				}
			}
		case widget.EventRequirementsChanged:
			if len(ev.Requirements) > 0 {
				fmt.Println("\ndocuments requested:")
				for _, r := range ev.Requirements {
					fmt.Printf("  - %s (%s)\n", r.Name, r.Description)
				}
				fmt.Println("attach with: /attach <requirement name> <path>")
			}
		case widget.EventError:
			fmt.Fprintf(os.Stderr, "error: %v\n", ev.Err)
		}
	}
}

// attach parses "<requirement name> <path>", reading the path's contents and
// staging them on the instance. The requirement name may contain spaces; the
// last field is the path.
func attach(inst *widget.Instance, args string) {
	idx := strings.LastIndex(args, " ")
	if idx <= 0 {
		fmt.Println("usage: /attach <requirement name> <path>")
		return
	}
	name := strings.TrimSpace(args[:idx])
	path := strings.TrimSpace(args[idx+1:])

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read failed:", err)
		return
	}

	inst.AttachFile(name, path, data)
	fmt.Printf("attached %s for %s\n", path, name)
}
