// Command smoketest probes a running server's API surface, intended for
// post-deploy verification.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mkarvone/repsmith/internal/logging"
	"github.com/mkarvone/repsmith/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	readyTimeout   = 30 * time.Second
	requestTimeout = 10 * time.Second
	smokeUserID    = 999999
)

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) request(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", fmt.Sprint(smokeUserID))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *client) waitForReady(ctx context.Context) error {
	deadline := time.Now().Add(readyTimeout)
	for {
		if err := c.request(ctx, http.MethodGet, "/api/healthy", nil, nil); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server not ready within %s", readyTimeout)
		}
		time.Sleep(time.Second)
	}
}

func testEstimate(ctx context.Context, c *client) error {
	var resp struct {
		Estimate float64 `json:"estimate"`
	}
	err := c.request(ctx, http.MethodPost, "/api/estimate",
		map[string]any{"weight": 100, "reps": 5}, &resp)
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}
	if resp.Estimate <= 100 {
		return fmt.Errorf("estimate %v not above the lifted weight", resp.Estimate)
	}
	return nil
}

func testCatalog(ctx context.Context, c *client) error {
	var resp struct {
		Exercises []struct {
			ID int `json:"id"`
		} `json:"exercises"`
	}
	if err := c.request(ctx, http.MethodGet, "/api/exercises", nil, &resp); err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if len(resp.Exercises) == 0 {
		return fmt.Errorf("exercise catalog is empty")
	}
	return nil
}

func testSelect(ctx context.Context, c *client) error {
	var resp struct {
		ExerciseIDs []int `json:"exerciseIds"`
	}
	err := c.request(ctx, http.MethodPost, "/api/workouts/select", map[string]any{
		"splitDay":       "push",
		"compoundCount":  2,
		"isolationCount": 1,
		"experience":     "intermediate",
	}, &resp)
	if err != nil {
		return fmt.Errorf("select workout: %w", err)
	}
	if len(resp.ExerciseIDs) == 0 {
		return fmt.Errorf("selection returned no exercises")
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	hostname := os.Args[1]
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	start := time.Now()
	c := &client{baseURL: url, http: &http.Client{}}

	if err := c.waitForReady(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	// The probes are independent, exercise them concurrently.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return testEstimate(groupCtx, c) })
	group.Go(func() error { return testCatalog(groupCtx, c) })
	group.Go(func() error { return testSelect(groupCtx, c) })
	if err := group.Wait(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "smoke test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
