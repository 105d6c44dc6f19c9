package contentstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

const githubTimeout = 15 * time.Second

// GitHubOptions configures a GitHub content store.
type GitHubOptions struct {
	Owner string
	Repo  string
	// Ref is a branch, tag, or commit. Empty means the default branch.
	Ref   string
	Token string
	// BaseURL overrides DefaultGitHubAPI, e.g. for GitHub Enterprise.
	BaseURL    string
	HTTPClient *http.Client
}

// GitHub reads repository content through the GitHub contents API.
type GitHub struct {
	owner      string
	repo       string
	ref        string
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewGitHub creates a GitHub store.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, errors.New("github store requires owner and repo")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultGitHubAPI
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: githubTimeout}
	}
	return &GitHub{
		owner:      opts.Owner,
		repo:       opts.Repo,
		ref:        opts.Ref,
		token:      opts.Token,
		baseURL:    base,
		httpClient: client,
	}, nil
}

type githubItem struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
}

func (g *GitHub) contentsURL(p string) string {
	segs := strings.Split(cleanPath(p), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.baseURL,
		url.PathEscape(g.owner), url.PathEscape(g.repo), strings.Join(segs, "/"))
	if g.ref != "" {
		u += "?ref=" + url.QueryEscape(g.ref)
	}
	return u
}

func (g *GitHub) get(ctx context.Context, rawURL, accept, p string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", "dossier")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request %s: %w", p, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read github response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotExist, p)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("github API returned status %d for %s: %s", resp.StatusCode, p, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (g *GitHub) List(ctx context.Context, dir string) ([]Entry, error) {
	body, err := g.get(ctx, g.contentsURL(dir), "application/vnd.github.v3+json", dir)
	if err != nil {
		return nil, err
	}

	var items []githubItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("list %s: not a directory", dir)
	}

	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		var typ EntryType
		switch it.Type {
		case "file":
			typ = TypeFile
		case "dir":
			typ = TypeDir
		default:
			continue
		}
		entries = append(entries, Entry{Type: typ, Name: it.Name, Path: it.Path, DownloadURL: it.DownloadURL})
	}
	return entries, nil
}

func (g *GitHub) Fetch(ctx context.Context, p string) ([]byte, error) {
	body, err := g.get(ctx, g.contentsURL(p), "application/vnd.github.v3+json", p)
	if err != nil {
		return nil, err
	}

	var item githubItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("fetch %s: not a file", p)
	}
	if item.Type != "" && item.Type != "file" {
		return nil, fmt.Errorf("fetch %s: not a file (%s)", p, item.Type)
	}

	switch item.Encoding {
	case "base64":
		data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		return data, nil
	case "", "none":
		// Files over 1 MB come back without inline content.
		if item.DownloadURL == "" {
			return []byte(item.Content), nil
		}
		return g.get(ctx, item.DownloadURL, "application/octet-stream", p)
	default:
		return nil, fmt.Errorf("fetch %s: unsupported encoding %q", p, item.Encoding)
	}
}
