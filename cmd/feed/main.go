package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"

	"github.com/deephealth-lab/community/internal/api"
	"github.com/deephealth-lab/community/internal/feed"
	"github.com/deephealth-lab/community/internal/tui"
)

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/api/v1"
	}

	client := api.New(baseURL, os.Getenv("API_TOKEN"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	email, password := os.Getenv("API_EMAIL"), os.Getenv("API_PASSWORD")
	if os.Getenv("API_TOKEN") == "" && email == "" {
		fmt.Fprintln(os.Stderr, "Set API_TOKEN, or API_EMAIL and API_PASSWORD, to sign in")
		os.Exit(1)
	}

	userID := ""
	if email != "" {
		auth, err := client.Login(ctx, email, password)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		userID = auth.User.ID
	}

	engine := feed.NewEngine(client, userID, feed.DefaultPageSize)

	p := tea.NewProgram(tui.NewModel(engine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("UI error: %v", err)
	}
}
