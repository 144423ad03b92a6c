package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"fashion-recommender-be/internal/dto"
	"fashion-recommender-be/internal/pkg/serverutils"
	"fashion-recommender-be/pkg/recommend/response"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Interactive terminal client for the chat API. Lines are sent as turns;
// an empty line or EOF quits.
func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	sessionID := flag.String("session", "", "Session id (random when empty)")
	flag.Parse()

	if *sessionID == "" {
		*sessionID = "sim-" + uuid.NewString()[:8]
	}

	color.Cyan("=== Recommender Simulation Client ===")
	fmt.Printf("Session: %s\n", *sessionID)

	client := &http.Client{Timeout: 2 * time.Minute}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		color.New(color.FgHiBlue).Print("\nYOU: ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			return
		}

		start := time.Now()
		messages, err := sendTurn(client, *baseURL, *sessionID, text)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		for _, m := range messages {
			render(m)
		}
		color.HiBlack("(%s)", time.Since(start).Round(time.Millisecond))
	}
}

func sendTurn(client *http.Client, baseURL, sessionID, text string) ([]response.OutboundMessage, error) {
	body, _ := json.Marshal(dto.SendTurnRequest{Text: text})
	resp, err := client.Post(baseURL+"/chat/"+sessionID+"/turns", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed serverutils.Response[dto.TurnResponse]
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", resp.Status, parsed.Message)
	}
	return parsed.Data.Messages, nil
}

func render(m response.OutboundMessage) {
	switch m.Kind {
	case response.KindPhoto:
		color.Green("BOT [photo] %s", m.ImageURL)
		fmt.Println(indent(m.Caption))
	case response.KindGallery:
		color.Green("BOT [gallery of %d]", len(m.Items))
		for i, item := range m.Items {
			fmt.Printf("  %d. %s\n", i+1, strings.ReplaceAll(item.Caption, "\n", " | "))
		}
	default:
		color.Green("BOT: %s", m.Text)
	}
}

func indent(s string) string {
	if s == "" {
		return s
	}
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
