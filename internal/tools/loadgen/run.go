package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

type authMode int

const (
	authNone authMode = iota
	authSession
	authBogus
)

type request struct {
	method string
	path   string
	body   []byte
	auth   authMode
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	email := fmt.Sprintf("loadgen-%d@example.com", cfg.Seed)
	const password = "loadgen-password"
	requests, err := requestsForProfile(cfg.Profile, email, password)
	if err != nil {
		return Result{}, err
	}

	client := &http.Client{Timeout: 5 * time.Second}
	token := ""
	if needsSession(requests) {
		token, err = session(ctx, client, cfg.BaseURL, email, password)
		if err != nil {
			return Result{}, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx int64
	jobs := make(chan request, cfg.Concurrency*2)
	var g errgroup.Group

	for i := 0; i < cfg.Concurrency; i++ {
		g.Go(func() error {
			for job := range jobs {
				req, err := newRequest(ctx, cfg.BaseURL, job, token)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				atomic.AddInt64(&total, 1)
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
			return nil
		})
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	for i := 0; ; {
		select {
		case <-ctx.Done():
			close(jobs)
			_ = g.Wait()
			return Result{TotalRequests: total, Failures: failures, Status2xx: s2xx, Status4xx: s4xx, Status5xx: s5xx}, nil
		case <-ticker.C:
			select {
			case jobs <- requests[i%len(requests)]:
				i++
			case <-ctx.Done():
			}
		}
	}
}

func newRequest(ctx context.Context, baseURL string, job request, token string) (*http.Request, error) {
	var body io.Reader
	if job.body != nil {
		body = bytes.NewReader(job.body)
	}
	req, err := http.NewRequestWithContext(ctx, job.method, baseURL+job.path, body)
	if err != nil {
		return nil, err
	}
	if job.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch job.auth {
	case authSession:
		req.Header.Set("Authorization", "Bearer "+token)
	case authBogus:
		req.Header.Set("Authorization", "Bearer not-a-token")
	}
	return req, nil
}

// session registers the load user when missing and logs in once.
func session(ctx context.Context, client *http.Client, baseURL, email, password string) (string, error) {
	register, _ := json.Marshal(map[string]string{"username": "loadgen", "email": email, "password": password})
	status, _, err := post(ctx, client, baseURL+"/api/auth/register", register)
	if err != nil {
		return "", fmt.Errorf("register load user: %w", err)
	}
	if status != http.StatusCreated && status != http.StatusBadRequest {
		return "", fmt.Errorf("register load user: unexpected status %d", status)
	}

	login, _ := json.Marshal(map[string]string{"email": email, "password": password})
	status, body, err := post(ctx, client, baseURL+"/api/auth/login", login)
	if err != nil {
		return "", fmt.Errorf("login load user: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("login load user: unexpected status %d", status)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return out.Token, nil
}

func post(ctx context.Context, client *http.Client, url string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	return resp.StatusCode, body, err
}

func needsSession(requests []request) bool {
	for _, r := range requests {
		if r.auth == authSession {
			return true
		}
	}
	return false
}

func requestsForProfile(profile, email, password string) ([]request, error) {
	goodLogin, _ := json.Marshal(map[string]string{"email": email, "password": password})
	badLogin, _ := json.Marshal(map[string]string{"email": email, "password": "wrong-password"})

	reads := []request{
		{method: http.MethodGet, path: "/api/customers", auth: authSession},
		{method: http.MethodGet, path: "/api/stages", auth: authSession},
		{method: http.MethodGet, path: "/api/leads", auth: authSession},
		{method: http.MethodGet, path: "/api/contacts", auth: authSession},
		{method: http.MethodGet, path: "/api/tasks", auth: authSession},
		{method: http.MethodGet, path: "/api/communication/history", auth: authSession},
	}
	switch strings.ToLower(profile) {
	case "", "mixed":
		return append(reads,
			request{method: http.MethodPost, path: "/api/auth/login", body: goodLogin},
			request{method: http.MethodGet, path: "/api/customers"},
		), nil
	case "auth":
		return []request{
			{method: http.MethodPost, path: "/api/auth/login", body: goodLogin},
			{method: http.MethodPost, path: "/api/auth/login", body: badLogin},
			{method: http.MethodPost, path: "/auth/login", body: goodLogin},
		}, nil
	case "read":
		return reads, nil
	case "error-heavy":
		return []request{
			{method: http.MethodGet, path: "/api/customers"},
			{method: http.MethodGet, path: "/api/leads", auth: authBogus},
			{method: http.MethodPost, path: "/api/auth/login", body: badLogin},
		}, nil
	default:
		return nil, fmt.Errorf("unknown profile: %s", profile)
	}
}
