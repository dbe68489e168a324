package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/linked-planet/go-http-client/pkg/applink"
	"github.com/linked-planet/go-http-client/pkg/basicauth"
	"github.com/linked-planet/go-http-client/pkg/cache"
	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// newClient builds the backend selected by the global flags. The returned
// close function releases the Redis connection when the cache is enabled.
func newClient() (httpclient.BaseHTTPClient, func(), error) {
	baseURL := viper.GetString(keyBaseURL)
	if baseURL == "" {
		return nil, nil, fmt.Errorf("base URL is required (--base-url or HTTPC_BASE_URL)")
	}

	username := viper.GetString(keyUsername)
	password, err := resolvePassword(viper.GetString(keyPassword))
	if err != nil {
		return nil, nil, err
	}

	var client httpclient.BaseHTTPClient
	switch backend := viper.GetString(keyBackend); backend {
	case BackendBasic, "":
		client, err = basicauth.New(basicauth.DefaultConfig(baseURL, username, password))
	case BackendAppLink:
		var link *applink.Link
		link, err = applink.NewBasicAuthLink(baseURL, username, password)
		if err == nil {
			client, err = applink.New(link)
		}
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (use %s or %s)", backend, BackendBasic, BackendAppLink)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	addr := viper.GetString(keyRedis)
	if addr == "" {
		return client, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	cfg := cache.DefaultConfig()
	if ttl := viper.GetDuration(keyCacheTTL); ttl > 0 {
		cfg.TTL = ttl
	}
	cfg.Prefix = cache.DefaultPrefix + ":" + baseURL

	return cache.NewClient(client, rdb, cfg), func() { rdb.Close() }, nil
}

// resolvePassword prompts for the password when none is configured and
// stdin is a terminal.
func resolvePassword(password string) (string, error) {
	if password != "" || !term.IsTerminal(int(syscall.Stdin)) {
		return password, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

// parseKeyValues turns repeated key=value flags into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		result[key] = value
	}
	return result, nil
}

// PrintError writes err to w. Domain errors are written in their canonical
// JSON form.
func PrintError(w io.Writer, err error) {
	if de, ok := domainerr.As(err); ok {
		fmt.Fprintln(w, de.ToJSON())
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func printStatus(w io.Writer, statusCode int) {
	fmt.Fprintf(w, "HTTP %d %s\n", statusCode, httpclient.StatusText(statusCode))
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
