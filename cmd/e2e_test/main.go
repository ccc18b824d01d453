package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint("GET", "/health", nil, 200)

	// 2. Point the server at a sheet endpoint (stub or real)
	sheetURL := os.Getenv("SHEET_URL")
	if sheetURL != "" {
		setSource(sheetURL)
	}

	// 3. Force a foreground refresh
	checkEndpoint("POST", "/api/refresh", nil, 200)

	// 4. Read everything the dashboard reads
	checkEndpoint("GET", "/api/overview", nil, 200)
	checkEndpoint("GET", "/api/portfolio?sort=market_value&order=desc", nil, 200)
	checkEndpoint("GET", "/api/history", nil, 200)
	checkEndpoint("GET", "/api/stats", nil, 200)
	checkEndpoint("GET", "/api/market", nil, 200)
	checkEndpoint("GET", "/api/rates", nil, 200)
	checkEndpoint("GET", "/api/macro", nil, 200)
	checkEndpoint("GET", "/api/source", nil, 200)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, body interface{}, expectedStatus int) {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, baseURL+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))
}

func setSource(sheetURL string) {
	fmt.Printf("Setting source to %s...\n", sheetURL)
	checkEndpoint("PUT", "/api/source", map[string]string{"url": sheetURL}, 200)
}
