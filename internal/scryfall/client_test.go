package scryfall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNewClient(t *testing.T) {
	client := NewClient()

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}

	if client.httpClient == nil {
		t.Error("httpClient is nil")
	}

	if client.rateLimiter == nil {
		t.Error("rateLimiter is nil")
	}

	if client.userAgent == "" {
		t.Error("userAgent is empty")
	}

	if client.BaseURL() != DefaultBaseURL {
		t.Errorf("Expected base URL %s, got %s", DefaultBaseURL, client.BaseURL())
	}
}

func TestNewClient_Options(t *testing.T) {
	client := NewClient(
		WithBaseURL("http://localhost:1234"),
		WithUserAgent("test-agent"),
		WithTimeout(5*time.Second),
	)

	if client.BaseURL() != "http://localhost:1234" {
		t.Errorf("Expected overridden base URL, got %s", client.BaseURL())
	}
	if client.userAgent != "test-agent" {
		t.Errorf("Expected user agent 'test-agent', got '%s'", client.userAgent)
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", client.httpClient.Timeout)
	}
}

func TestClient_RateLimiting(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[],"total_cards":0,"has_more":false}`))
	}))
	defer server.Close()

	client := NewClient(WithRateLimit(100 * time.Millisecond))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.FetchPage(ctx, server.URL); err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
	}
	elapsed := time.Since(start)

	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}

	// Should take at least 200ms (2 delays of 100ms each between 3 requests)
	minDuration := 200 * time.Millisecond
	if elapsed < minDuration {
		t.Errorf("Rate limiting not working: completed 3 requests in %v (expected >= %v)", elapsed, minDuration)
	}
}

func TestClient_SetRateLimit(t *testing.T) {
	client := NewClient(WithRateLimit(100 * time.Millisecond))
	if got := client.RateLimit(); got != rate.Every(100*time.Millisecond) {
		t.Errorf("Expected one request per 100ms, got %v", got)
	}

	client.SetRateLimit(0)
	if got := client.RateLimit(); got != rate.Inf {
		t.Errorf("Expected zero delay to disable spacing, got %v", got)
	}

	client.SetRateLimit(250 * time.Millisecond)
	if got := client.RateLimit(); got != rate.Every(250*time.Millisecond) {
		t.Errorf("Expected one request per 250ms, got %v", got)
	}
}

func TestClient_FetchPage(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"object": "list",
			"total_cards": 2,
			"has_more": true,
			"next_page": "https://api.scryfall.com/cards/search?page=2&q=bolt",
			"data": [
				{"id": "a", "name": "Lightning Bolt", "cmc": 1.0, "color_identity": ["R"], "rarity": "common", "layout": "normal"},
				{"id": "b", "name": "A-Lightning Bolt", "color_identity": ["R"], "rarity": "uncommon", "layout": "normal"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(WithRateLimit(0))
	page, err := client.FetchPage(context.Background(), server.URL+"/cards/search?q=bolt")
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if len(page.Data) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(page.Data))
	}
	if page.TotalCards != 2 {
		t.Errorf("Expected total_cards 2, got %d", page.TotalCards)
	}
	if !page.HasMore || page.NextPage == "" {
		t.Errorf("Expected has_more with next_page, got %v %q", page.HasMore, page.NextPage)
	}
	if page.Data[0].CMC != 1 {
		t.Errorf("Expected cmc 1, got %v", page.Data[0].CMC)
	}
	if page.Data[1].CMC != 0 {
		t.Errorf("Expected absent cmc to decode as 0, got %v", page.Data[1].CMC)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("Expected User-Agent %q, got %q", DefaultUserAgent, gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept application/json, got %q", gotAccept)
	}
}

func TestClient_FetchPage_DropsNextPageWithoutMore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[],"total_cards":0,"has_more":false,"next_page":"http://stale"}`))
	}))
	defer server.Close()

	page, err := NewClient(WithRateLimit(0)).FetchPage(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.NextPage != "" {
		t.Errorf("Expected empty next_page when has_more is false, got %q", page.NextPage)
	}
}

func TestClient_NotFoundError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"Your query didn't match any cards."}`))
	}))
	defer server.Close()

	_, err := NewClient(WithRateLimit(0)).FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}

	if !IsNotFound(err) {
		t.Errorf("Expected not found error, got: %T %v", err, err)
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %T", err)
	}
	if netErr.Message != "Your query didn't match any cards." {
		t.Errorf("Expected details as message, got %q", netErr.Message)
	}
}

func TestClient_ServerErrorIsNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"object":"error","code":"rate_limit","status":429}`))
	}))
	defer server.Close()

	_, err := NewClient(WithRateLimit(0)).FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 429, got nil")
	}
	if IsNotFound(err) {
		t.Error("429 must not be reported as not found")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.Status != http.StatusTooManyRequests {
		t.Errorf("Expected NetworkError with status 429, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", attempts)
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{invalid json}`))
	}))
	defer server.Close()

	_, err := NewClient(WithRateLimit(0)).FetchPage(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %T", err)
	}
	if netErr.Status != 0 {
		t.Errorf("Expected status 0 for decode failure, got %d", netErr.Status)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(WithRateLimit(0)).FetchPage(context.Background(), url)
	if err == nil {
		t.Fatal("Expected error for closed server, got nil")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.Status != 0 {
		t.Errorf("Expected transport NetworkError with status 0, got %v", err)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(WithRateLimit(0)).FetchPage(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error for cancelled context, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded in chain, got %v", err)
	}
}
