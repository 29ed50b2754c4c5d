// Package upload publishes rendered videos to YouTube via the Data API v3.
package upload

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/faults"
)

// Request carries everything one publish needs.
type Request struct {
	File        string
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

type Uploader struct {
	cfg  *config.Config
	keys config.Keys
	log  zerolog.Logger
}

func NewUploader(cfg *config.Config, keys config.Keys, log zerolog.Logger) *Uploader {
	return &Uploader{cfg: cfg, keys: keys, log: log.With().Str("stage", "publish").Logger()}
}

// Upload publishes req.File and returns the video ID and watch URL.
// Every failure comes back as an upload fault; the orchestrator owns retry.
func (u *Uploader) Upload(ctx context.Context, req Request) (string, string, error) {
	client, err := u.oauthClient(ctx)
	if err != nil {
		return "", "", faults.Wrap(err, faults.KindUpload, "youtube auth")
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", faults.Wrap(err, faults.KindUpload, "youtube service")
	}

	video := u.videoResource(req)

	f, err := os.Open(req.File)
	if err != nil {
		return "", "", faults.Wrap(err, faults.KindUpload, "open video file")
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		u.log.Info().Str("title", req.Title).
			Float64("size_mb", float64(fi.Size())/1024/1024).
			Msg("uploading video")
	}

	// Notify-subscribers is a parameter of the insert call, not of the
	// video status resource.
	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).
		NotifySubscribers(u.cfg.Upload.NotifySubscribers).
		Media(f).
		Do()
	if err != nil {
		return "", "", faults.Wrap(err, faults.KindUpload, "youtube upload")
	}

	url := fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id)
	u.log.Info().Str("video_id", uploaded.Id).Str("url", url).Msg("upload complete")
	return uploaded.Id, url, nil
}

// videoResource maps a Request onto the API's video resource.
func (u *Uploader) videoResource(req Request) *youtube.Video {
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  req.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           req.Privacy,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}
}

// oauthClient builds an HTTP client from the long-lived refresh token. The
// expired Expiry forces a refresh on first use.
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	if u.keys.YTClientID == "" || u.keys.YTClientSecret == "" || u.keys.YTRefreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     u.keys.YTClientID,
		ClientSecret: u.keys.YTClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: u.keys.YTRefreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}
	return conf.Client(ctx, token), nil
}
