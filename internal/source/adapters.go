package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// maxResponseBody caps the bytes read from a source response (64KB). The
// feeds return tiny JSON documents; anything bigger is broken.
const maxResponseBody = 64 << 10

// DogAdapter pulls a random dog image from random.dog. The feed reports
// the file size, which the validator uses to cap downloads.
type DogAdapter struct {
	endpoint string
	client   *http.Client
}

// NewDogAdapter creates an adapter for the random.dog feed.
func NewDogAdapter(endpoint string, client *http.Client) *DogAdapter {
	return &DogAdapter{endpoint: endpoint, client: client}
}

type dogResponse struct {
	FileSizeBytes int64  `json:"fileSizeBytes"`
	URL           string `json:"url"`
}

func (a *DogAdapter) Fetch(ctx context.Context) (Candidate, error) {
	var resp dogResponse
	if err := getJSON(ctx, a.client, a.endpoint+"woof.json", &resp); err != nil {
		return Candidate{}, err
	}
	return Candidate{URL: resp.URL, SizeBytes: resp.FileSizeBytes}, nil
}

// CatAdapter pulls a random cat image from random.cat.
type CatAdapter struct {
	endpoint string
	client   *http.Client
}

// NewCatAdapter creates an adapter for the random.cat feed.
func NewCatAdapter(endpoint string, client *http.Client) *CatAdapter {
	return &CatAdapter{endpoint: endpoint, client: client}
}

type catResponse struct {
	File string `json:"file"`
}

func (a *CatAdapter) Fetch(ctx context.Context) (Candidate, error) {
	var resp catResponse
	if err := getJSON(ctx, a.client, a.endpoint+"meow", &resp); err != nil {
		return Candidate{}, err
	}
	return Candidate{URL: resp.File}, nil
}

// FoxAdapter pulls a random fox image from randomfox.ca.
type FoxAdapter struct {
	endpoint string
	client   *http.Client
}

// NewFoxAdapter creates an adapter for the randomfox.ca feed.
func NewFoxAdapter(endpoint string, client *http.Client) *FoxAdapter {
	return &FoxAdapter{endpoint: endpoint, client: client}
}

type foxResponse struct {
	Image string `json:"image"`
	Link  string `json:"link"`
}

func (a *FoxAdapter) Fetch(ctx context.Context) (Candidate, error) {
	var resp foxResponse
	if err := getJSON(ctx, a.client, a.endpoint+"floof/", &resp); err != nil {
		return Candidate{}, err
	}
	return Candidate{URL: resp.Image}, nil
}

// getJSON performs one GET and decodes the JSON body into v. Every failure
// mode maps to ErrSourceUnavailable; the caller's retry loop handles it.
func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", ErrSourceUnavailable, resp.StatusCode, url)
	}

	body := io.LimitReader(resp.Body, maxResponseBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	return nil
}
