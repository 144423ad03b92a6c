package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"fashion-recommender-be/internal/pkg/serverutils"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 2 * time.Minute} // NLU calls are slow on local models
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func step(title, method, url, token string, body interface{}) {
	color.Yellow("\n%s", title)
	resp, respBody, err := sendRequest(method, url, token, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		fmt.Println(string(respBody))
		return
	}
	prettyPrint(parsed)
}

func main() {
	_ = godotenv.Load()
	color.Cyan("Starting Recommender Chat Smoke Test\n")

	sessionID := "smoke-" + uuid.NewString()[:8]
	turn := func(text string) {
		step(fmt.Sprintf("[CHAT] %q", text), "POST", "/chat/"+sessionID+"/turns", "", map[string]string{"text": text})
	}

	turn("/start")
	turn("hello")
	turn("my customer id is 1001")
	turn("show me black running shoes for men")
	turn("tell me more about the first one")
	turn("show me similar products")
	turn("/estado")
	step("[CHAT] Reset", "POST", "/chat/"+sessionID+"/reset", "", nil)
	step("[CHAT] Stats", "GET", "/chat/stats", "", nil)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		color.Yellow("\nJWT_SECRET not set, skipping admin checks")
		return
	}
	token, err := serverutils.SignAdminToken(secret, "smoke-test", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
	})
	if err != nil {
		color.Red("Failed to sign admin token: %v", err)
		os.Exit(1)
	}

	step("[ADMIN] Index status", "GET", "/admin/index", token, nil)
	step("[ADMIN] Rebuild index", "POST", "/admin/index/rebuild", token, nil)
	step("[ADMIN] Without token", "GET", "/admin/index", "", nil)
}
