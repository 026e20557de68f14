// Package config resolves ingestmon settings from the environment and CLI flags.
package config

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

const (
	defaultEndpoint       = "http://localhost:9200"
	defaultResource       = "cybersecurity-threats"
	defaultPollInterval   = 5 * time.Second
	defaultRequestTimeout = 5 * time.Second
)

// MonitorConfig holds everything the ingestion monitor needs at startup.
type MonitorConfig struct {
	Endpoint       string
	Resource       string
	APIKey         string
	StatusAddress  string
	SamplesFile    string
	DSN            string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// ENV > CLI > defaults
func LoadMonitorConfig(args []string, out io.Writer) (MonitorConfig, error) {
	if out == nil {
		out = io.Discard
	}

	fs := flag.NewFlagSet("ingestmon", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		endpointOpt string
		resourceOpt string
		keyOpt      string
		statusOpt   string
		fileOpt     string
		dsnOpt      string
		pollOpt     int
		timeoutOpt  int
	)

	fs.StringVar(&endpointOpt, "a", "", fmt.Sprintf("search engine address (host:port or URL), default: %s", defaultEndpoint))
	fs.StringVar(&resourceOpt, "i", "", fmt.Sprintf("index to monitor, default: %s", defaultResource))
	fs.StringVar(&keyOpt, "k", "", "API key sent as Authorization: ApiKey")
	fs.IntVar(&pollOpt, "p", 0, fmt.Sprintf("poll interval in seconds, default: %d", int(defaultPollInterval/time.Second)))
	fs.IntVar(&timeoutOpt, "t", 0, fmt.Sprintf("request timeout in seconds, default: %d", int(defaultRequestTimeout/time.Second)))
	fs.StringVar(&statusOpt, "s", "", "listen address of the status endpoint (disabled when empty)")
	fs.StringVar(&fileOpt, "f", "", "append every event as JSON to this file (disabled when empty)")
	fs.StringVar(&dsnOpt, "d", "", "postgres DSN for sample history (disabled when empty)")

	if err := fs.Parse(args); err != nil {
		return MonitorConfig{}, err
	}

	endpoint := normalizeEndpointURL(FromEnvOrFlag("ENDPOINT_URL", endpointOpt, defaultEndpoint))
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return MonitorConfig{}, fmt.Errorf("invalid endpoint address: %q", endpoint)
	}

	resource := FromEnvOrFlag("RESOURCE_NAME", resourceOpt, defaultResource)
	if strings.Contains(resource, "/") {
		return MonitorConfig{}, fmt.Errorf("invalid resource name: %q", resource)
	}

	poll, err := FromEnvOrFlagDuration("POLL_INTERVAL", pollOpt, defaultPollInterval)
	if err != nil {
		return MonitorConfig{}, err
	}
	if poll <= 0 {
		return MonitorConfig{}, fmt.Errorf("poll interval must be > 0, got %v", poll)
	}

	timeout, err := FromEnvOrFlagDuration("REQUEST_TIMEOUT", timeoutOpt, defaultRequestTimeout)
	if err != nil {
		return MonitorConfig{}, err
	}
	if timeout <= 0 {
		return MonitorConfig{}, fmt.Errorf("request timeout must be > 0, got %v", timeout)
	}

	return MonitorConfig{
		Endpoint:       endpoint,
		Resource:       resource,
		APIKey:         FromEnvOrFlag("API_KEY", keyOpt, ""),
		StatusAddress:  FromEnvOrFlag("STATUS_ADDRESS", statusOpt, ""),
		SamplesFile:    FromEnvOrFlag("SAMPLES_FILE", fileOpt, ""),
		DSN:            FromEnvOrFlag("DATABASE_DSN", dsnOpt, ""),
		PollInterval:   poll,
		RequestTimeout: timeout,
	}, nil
}

func normalizeEndpointURL(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return defaultEndpoint
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	if strings.HasPrefix(s, ":") {
		return "http://localhost" + s
	}
	return "http://" + s
}
