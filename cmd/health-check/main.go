// Package main provides a standalone health check command
// Used for Docker health checks and monitoring scripts
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

type options struct {
	url     string
	timeout time.Duration
	retries int
	delay   time.Duration
	verbose bool
}

func main() {
	opts := parseFlags()
	os.Exit(run(opts))
}

func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.url, "url", "http://localhost:8080/health", "Health check endpoint URL")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flag.IntVar(&opts.retries, "retries", 1, "Number of attempts before reporting failure")
	flag.DurationVar(&opts.delay, "retry-delay", 2*time.Second, "Delay between attempts")
	flag.BoolVar(&opts.verbose, "verbose", false, "Verbose output")
	flag.Parse()

	return opts
}

func run(opts options) int {
	client := &http.Client{Timeout: opts.timeout}

	var lastErr error
	for attempt := 1; attempt <= opts.retries; attempt++ {
		status, err := check(client, opts)
		if err == nil {
			if opts.verbose {
				fmt.Printf("Health check passed: %s\n", status)
			}
			return exitCodeSuccess
		}
		lastErr = err
		if attempt < opts.retries {
			time.Sleep(opts.delay)
		}
	}

	fmt.Fprintf(os.Stderr, "Health check failed: %v\n", lastErr)
	return exitCodeFailure
}

func check(client *http.Client, opts options) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.url, nil)
	if err != nil {
		os.Exit(exitCodeError)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid health response: %w", err)
	}
	if body.Status != "healthy" {
		return "", fmt.Errorf("service reported status %q", body.Status)
	}

	return fmt.Sprintf("%s is %s", body.Service, body.Status), nil
}
