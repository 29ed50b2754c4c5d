package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/background"
	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/fallback"
	"quiz-shorts-pipeline/logging"
	"quiz-shorts-pipeline/pipeline"
	"quiz-shorts-pipeline/probe"
	"quiz-shorts-pipeline/question"
	"quiz-shorts-pipeline/render"
	"quiz-shorts-pipeline/safety"
	"quiz-shorts-pipeline/state"
	"quiz-shorts-pipeline/tts"
	"quiz-shorts-pipeline/upload"
)

func main() {
	// .env is local-dev convenience; CI injects real environment secrets.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		err = nil
	}
	if err != nil {
		bootLog := logging.New("info", "console")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	keys := config.KeysFromEnv()
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	runID := uuid.NewString()[:8]
	runDir := filepath.Join(cfg.Paths.Output, runID)
	for _, dir := range []string{runDir, cfg.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("create directory")
		}
	}
	log.Info().Str("run_id", runID).Str("run_dir", runDir).Msg("pipeline starting")

	gate, err := safety.NewGate(cfg.Safety)
	if err != nil {
		log.Fatal().Err(err).Msg("build safety gate")
	}

	retry := fallback.Retry{
		Attempts: cfg.Retry.Attempts,
		Base:     time.Duration(cfg.Retry.BaseDelaySec * float64(time.Second)),
		Cap:      time.Duration(cfg.Retry.CapDelaySec * float64(time.Second)),
	}
	dedup := state.NewDedupStore(cfg.Paths.DedupFile)
	quota := state.NewRateLimiter(cfg.Paths.RateLimitFile, cfg.Upload.MaxPerDay)

	// Topic hints are advisory; a missing Reddit client just disables them.
	topics, err := question.NewTopicHinter(keys.RedditClientID, keys.RedditSecret, cfg.Generation.TopicSubreddit)
	if err != nil {
		log.Warn().Err(err).Msg("topic hints disabled")
		topics = nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	source := question.NewSource(cfg, keys, log, gate, dedup, retry, rng, topics)

	orch := pipeline.NewOrchestrator(
		cfg, log, runID, runDir,
		source,
		tts.NewSynthesizer(cfg, log, retry),
		background.NewFetcher(cfg, keys, log, retry),
		render.NewRenderer(cfg, log),
		upload.NewUploader(cfg, keys, log),
		dedup,
		quota,
		probe.Duration,
	)

	report, runErr := orch.RunCycle(context.Background(), cfg.Upload.MaxPerDay)
	saveReport(log, filepath.Join(runDir, "report.json"), report)

	if runErr != nil {
		log.Fatal().Err(runErr).Msg("run aborted")
	}
	log.Info().Int("published", report.ItemsPublished).Int("failed", report.ItemsFailed).Msg("done")
}

func saveReport(log zerolog.Logger, path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("marshal run report")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("save run report")
	}
}
