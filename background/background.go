// Package background sources the video's backdrop image. Providers are
// tried in configured order; the terminal "solid" provider renders a plain
// color frame locally with ffmpeg, so acquisition never fails the pipeline.
package background

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/fallback"
)

// Deep muted tones that read well under white overlay text.
var solidColors = []string{"#1a1a2e", "#16213e", "#0f3460", "#1b262c", "#330867"}

type Fetcher struct {
	cfg        *config.Config
	keys       config.Keys
	log        zerolog.Logger
	retry      fallback.Retry
	httpClient *http.Client
}

func NewFetcher(cfg *config.Config, keys config.Keys, log zerolog.Logger, retry fallback.Retry) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		keys:       keys,
		log:        log.With().Str("stage", "background").Logger(),
		retry:      retry,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
	}
}

// Fetch downloads (or renders) a portrait background for query into outFile.
func (f *Fetcher) Fetch(ctx context.Context, query, outFile string) (string, error) {
	var chain []fallback.Provider[string]
	for _, name := range f.cfg.Background.Providers {
		name := name
		chain = append(chain, fallback.Provider[string]{
			Name: name,
			Call: func(ctx context.Context) (string, error) {
				return f.fetchOne(ctx, name, query, outFile)
			},
		})
	}

	return fallback.Do(ctx, f.log, "background", f.retry,
		func(ctx context.Context) (string, error) {
			return fallback.Execute(ctx, f.log, "background", chain)
		})
}

func (f *Fetcher) fetchOne(ctx context.Context, provider, query, outFile string) (string, error) {
	switch provider {
	case "unsplash":
		return f.fetchUnsplash(ctx, query, outFile)
	case "pexels":
		return f.fetchPexels(ctx, query, outFile)
	case "pixabay":
		return f.fetchPixabay(ctx, query, outFile)
	case "pollinations":
		return f.fetchPollinations(ctx, query, outFile)
	case "solid":
		return f.renderSolid(ctx, outFile)
	default:
		return "", fmt.Errorf("unknown background provider %q", provider)
	}
}

func (f *Fetcher) fetchUnsplash(ctx context.Context, query, outFile string) (string, error) {
	if f.keys.UnsplashAccessKey == "" {
		return "", fmt.Errorf("UNSPLASH_ACCESS_KEY not set")
	}
	u := "https://api.unsplash.com/photos/random?" + url.Values{
		"query":       {query},
		"orientation": {"portrait"},
	}.Encode()

	var parsed struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	}
	if err := f.getJSON(ctx, u, map[string]string{"Authorization": "Client-ID " + f.keys.UnsplashAccessKey}, &parsed); err != nil {
		return "", fmt.Errorf("unsplash: %w", err)
	}
	if parsed.URLs.Regular == "" {
		return "", fmt.Errorf("unsplash returned no image URL")
	}
	return outFile, f.download(ctx, parsed.URLs.Regular, outFile)
}

func (f *Fetcher) fetchPexels(ctx context.Context, query, outFile string) (string, error) {
	if f.keys.PexelsAPIKey == "" {
		return "", fmt.Errorf("PEXELS_API_KEY not set")
	}
	u := "https://api.pexels.com/v1/search?" + url.Values{
		"query":       {query},
		"orientation": {"portrait"},
		"per_page":    {"1"},
	}.Encode()

	var parsed struct {
		Photos []struct {
			Src struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := f.getJSON(ctx, u, map[string]string{"Authorization": f.keys.PexelsAPIKey}, &parsed); err != nil {
		return "", fmt.Errorf("pexels: %w", err)
	}
	if len(parsed.Photos) == 0 {
		return "", fmt.Errorf("pexels returned no photos")
	}
	return outFile, f.download(ctx, parsed.Photos[0].Src.Large, outFile)
}

func (f *Fetcher) fetchPixabay(ctx context.Context, query, outFile string) (string, error) {
	if f.keys.PixabayAPIKey == "" {
		return "", fmt.Errorf("PIXABAY_API_KEY not set")
	}
	u := "https://pixabay.com/api/?" + url.Values{
		"key":         {f.keys.PixabayAPIKey},
		"q":           {query},
		"orientation": {"vertical"},
		"image_type":  {"photo"},
		"per_page":    {"3"},
	}.Encode()

	var parsed struct {
		Hits []struct {
			LargeImageURL string `json:"largeImageURL"`
		} `json:"hits"`
	}
	if err := f.getJSON(ctx, u, nil, &parsed); err != nil {
		return "", fmt.Errorf("pixabay: %w", err)
	}
	if len(parsed.Hits) == 0 {
		return "", fmt.Errorf("pixabay returned no images")
	}
	return outFile, f.download(ctx, parsed.Hits[0].LargeImageURL, outFile)
}

// fetchPollinations generates an image; needs no API key.
func (f *Fetcher) fetchPollinations(ctx context.Context, query, outFile string) (string, error) {
	u := fmt.Sprintf(
		"https://image.pollinations.ai/prompt/%s?width=%d&height=%d&nologo=true&model=flux",
		url.PathEscape(query+", soft abstract background, muted colors, no text, no watermark"),
		f.cfg.Render.Width, f.cfg.Render.Height,
	)
	return outFile, f.download(ctx, u, outFile)
}

// renderSolid produces a single plain-color frame locally. It only exercises
// ffmpeg, which the renderer needs anyway, so it is the chain's floor.
func (f *Fetcher) renderSolid(ctx context.Context, outFile string) (string, error) {
	color := solidColors[len(solidColors)/2]
	spec := fmt.Sprintf("color=c=%s:s=%dx%d", color, f.cfg.Render.Width, f.cfg.Render.Height)
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi",
		"-i", spec,
		"-frames:v", "1",
		outFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg solid background: %w: %s", err, truncate(string(out), 200))
	}
	return outFile, nil
}

func (f *Fetcher) getJSON(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (f *Fetcher) download(ctx context.Context, rawURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; QuizShortsPipeline/1.0)")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d downloading image", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// Tiny responses are error pages, not images.
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes)", len(data))
	}
	return os.WriteFile(outFile, data, 0o644)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
