package strategy

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

//go:embed basic_strategy.json
var defaultDocument []byte

// Source fetches a raw strategy document
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// EmbeddedSource serves the built-in basic strategy document
type EmbeddedSource struct{}

func (EmbeddedSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return defaultDocument, nil
}

func (EmbeddedSource) String() string { return "embedded" }

// FileSource reads a strategy document from disk
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read strategy file: %w", err)
	}
	return data, nil
}

func (s FileSource) String() string { return s.Path }

// HTTPSource downloads a strategy document
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build strategy request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch strategy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch strategy: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read strategy response: %w", err)
	}
	return data, nil
}

func (s HTTPSource) String() string { return s.URL }

// NewSource picks a source from a location string: "" or "embedded" for
// the built-in table, an http(s) URL, or a file path.
func NewSource(location string, client *http.Client) Source {
	switch {
	case location == "" || location == "embedded":
		return EmbeddedSource{}
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return HTTPSource{URL: location, Client: client}
	default:
		return FileSource{Path: location}
	}
}
