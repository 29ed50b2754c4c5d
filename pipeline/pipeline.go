// Package pipeline orchestrates one run: quota check, question generation,
// narration, background, timing, render and publish, with state committed
// after every successful upload.
//
// Failure policy: render and upload errors abort only the current item;
// any persistence error aborts the whole run. Generation and synthesis
// absorb their provider failures internally via chains and fallbacks.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"quiz-shorts-pipeline/config"
	"quiz-shorts-pipeline/fallback"
	"quiz-shorts-pipeline/faults"
	"quiz-shorts-pipeline/render"
	"quiz-shorts-pipeline/timing"
	"quiz-shorts-pipeline/types"
	"quiz-shorts-pipeline/upload"
)

// State names the orchestrator's current phase. Transitions are logged so a
// run can be reconstructed from its log alone.
type State string

const (
	StateIdle              State = "idle"
	StateCheckQuota        State = "check_quota"
	StateGenerate          State = "generate"
	StateSynthesize        State = "synthesize"
	StateAcquireBackground State = "acquire_background"
	StatePlanTiming        State = "plan_timing"
	StateRender            State = "render"
	StatePublish           State = "publish"
	StateCommitState       State = "commit_state"
	StateSkip              State = "skip"
)

// Collaborator interfaces, satisfied by the concrete stage types. Declared
// here so tests can substitute fakes.

type QuestionSource interface {
	NextItem(ctx context.Context) (types.QuizItem, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, outFile string) (string, error)
}

type BackgroundFetcher interface {
	Fetch(ctx context.Context, query, outFile string) (string, error)
}

type Renderer interface {
	Render(ctx context.Context, spec render.Spec) (render.Result, error)
}

type Uploader interface {
	Upload(ctx context.Context, req upload.Request) (id, url string, err error)
}

// Dedup records accepted fingerprints. Recording happens the moment an item
// is accepted, before any rendering, so a crash mid-item can never let the
// same content publish twice.
type Dedup interface {
	Record(fingerprint string) error
}

// Quota is the persistent daily publish cap.
type Quota interface {
	Remaining(now time.Time) (int, error)
	RecordPublish(now time.Time) error
}

// Prober measures a media file's duration in seconds.
type Prober func(ctx context.Context, file string) (float64, error)

type Orchestrator struct {
	cfg        *config.Config
	log        zerolog.Logger
	runID      string
	runDir     string
	source     QuestionSource
	tts        Synthesizer
	background BackgroundFetcher
	renderer   Renderer
	uploader   Uploader
	dedup      Dedup
	quota      Quota
	probe      Prober

	state State

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewOrchestrator(
	cfg *config.Config,
	log zerolog.Logger,
	runID, runDir string,
	source QuestionSource,
	tts Synthesizer,
	background BackgroundFetcher,
	renderer Renderer,
	uploader Uploader,
	dedup Dedup,
	quota Quota,
	probe Prober,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		log:        log.With().Str("run_id", runID).Logger(),
		runID:      runID,
		runDir:     runDir,
		source:     source,
		tts:        tts,
		background: background,
		renderer:   renderer,
		uploader:   uploader,
		dedup:      dedup,
		quota:      quota,
		probe:      probe,
		state:      StateIdle,
		now:        time.Now,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
			}
		},
	}
}

// RunCycle attempts up to maxItems publishes. It always returns a Report;
// a non-nil error means the run was aborted by a persistence failure and
// the report covers only the items processed before the abort.
func (o *Orchestrator) RunCycle(ctx context.Context, maxItems int) (types.Report, error) {
	report := types.Report{RunID: o.runID}

	for i := 0; i < maxItems; i++ {
		if err := ctx.Err(); err != nil {
			report.Reasons = append(report.Reasons, "canceled")
			return report, nil
		}

		o.transition(StateCheckQuota)
		remaining, err := o.quota.Remaining(o.now())
		if err != nil {
			return report, o.fatal(err, "read rate limit state")
		}
		if remaining <= 0 {
			o.transition(StateSkip)
			o.log.Info().Int("slots_skipped", maxItems-i).Msg("daily quota exhausted, stopping")
			for ; i < maxItems; i++ {
				report.Reasons = append(report.Reasons, "quota_exhausted")
			}
			break
		}

		report.ItemsAttempted++
		published, err := o.runItem(ctx, &report, i)
		if err != nil {
			return report, err
		}

		// Space out consecutive publishes.
		if published && i < maxItems-1 {
			o.sleep(ctx, time.Duration(o.cfg.Upload.PublishGapSec)*time.Second)
		}
	}

	o.transition(StateIdle)
	o.log.Info().Int("attempted", report.ItemsAttempted).
		Int("published", report.ItemsPublished).Int("failed", report.ItemsFailed).
		Msg("run complete")
	return report, nil
}

// runItem carries one item from generation through publish. The bool result
// reports whether the item was published; a non-nil error is run-fatal.
func (o *Orchestrator) runItem(ctx context.Context, report *types.Report, idx int) (bool, error) {
	o.transition(StateGenerate)
	item, err := o.source.NextItem(ctx)
	if err != nil {
		return false, o.fatal(err, "generate question")
	}
	log := o.log.With().Str("item_id", item.ID).Logger()
	log.Info().Str("question", item.Question).Str("provider", item.Provider).Msg("item accepted")

	// Burn the fingerprint now. If anything downstream fails, the content
	// stays unusable forever rather than risking a double publish after a
	// crash between upload and commit.
	if err := o.dedup.Record(item.Fingerprint); err != nil {
		return false, o.fatal(err, "record fingerprint")
	}

	o.transition(StateSynthesize)
	audioFile, err := o.tts.Synthesize(ctx, item.VoiceScript(), o.itemFile(idx, "narration.mp3"))
	if err != nil {
		return false, o.failItem(report, log, "synthesize", err)
	}
	narrationDur, err := o.probe(ctx, audioFile)
	if err != nil {
		return false, o.failItem(report, log, "probe narration", err)
	}

	o.transition(StateAcquireBackground)
	query := item.Category
	if query == "" {
		query = o.cfg.Background.Query
	}
	bgFile, err := o.background.Fetch(ctx, query, o.itemFile(idx, "background.jpg"))
	if err != nil {
		return false, o.failItem(report, log, "background", err)
	}

	o.transition(StatePlanTiming)
	plan := timing.Compute(narrationDur,
		o.cfg.Timing.CountdownSeconds, o.cfg.Timing.RevealSeconds, o.cfg.Timing.MinNarrationFloor)
	overlays := timing.BuildOverlays(item.Question, item.CTA, item.Answer, plan)
	log.Debug().Float64("narration_sec", plan.NarrationDuration).
		Float64("total_sec", plan.TotalDuration).Msg("timing planned")

	o.transition(StateRender)
	result, err := o.renderer.Render(ctx, render.Spec{
		Background: bgFile,
		Audio:      audioFile,
		Overlays:   overlays,
		Plan:       plan,
		OutFile:    o.itemFile(idx, "video.mp4"),
	})
	if err != nil {
		return false, o.failItem(report, log, "render", err)
	}
	if diff := math.Abs(result.Duration - plan.TotalDuration); diff > o.cfg.Timing.DurationToleranceS {
		err := faults.Newf(faults.KindRender,
			"rendered duration %.2fs deviates %.2fs from planned %.2fs",
			result.Duration, diff, plan.TotalDuration)
		return false, o.failItem(report, log, "render", err)
	}

	o.transition(StatePublish)
	videoID, _, err := o.publish(ctx, item, result.File)
	if err != nil {
		return false, o.failItem(report, log, "publish", err)
	}

	o.transition(StateCommitState)
	if err := o.quota.RecordPublish(o.now()); err != nil {
		return false, o.fatal(err, "commit rate limit state")
	}

	o.saveArtifact(log, idx, types.PublishArtifact{
		Item:      item,
		MediaFile: result.File,
		Plan:      plan,
		UploadID:  videoID,
	})

	report.ItemsPublished++
	log.Info().Str("video_id", videoID).Msg("item published")
	return true, nil
}

// saveArtifact drops the publish record next to the media file. Best effort:
// the publish already happened and its durable state is already committed.
func (o *Orchestrator) saveArtifact(log zerolog.Logger, idx int, a types.PublishArtifact) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("marshal publish artifact")
		return
	}
	path := o.itemFile(idx, "artifact.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("save publish artifact")
	}
}

// publish retries the upload a small bounded number of times; the broader
// chain-level retry policy is deliberately not reused here because an upload
// may have partially succeeded server-side.
func (o *Orchestrator) publish(ctx context.Context, item types.QuizItem, file string) (string, string, error) {
	req := upload.Request{
		File:        file,
		Title:       item.Title,
		Description: item.Description,
		Tags:        item.Tags,
		CategoryID:  o.cfg.Upload.CategoryID,
		Privacy:     o.cfg.Upload.Privacy,
	}
	policy := fallback.Retry{
		Attempts: o.cfg.Retry.UploadAttempts,
		Base:     time.Duration(o.cfg.Retry.BaseDelaySec * float64(time.Second)),
		Cap:      time.Duration(o.cfg.Retry.CapDelaySec * float64(time.Second)),
	}

	type uploaded struct{ id, url string }
	out, err := fallback.Do(ctx, o.log, "publish", policy,
		func(ctx context.Context) (uploaded, error) {
			id, url, err := o.uploader.Upload(ctx, req)
			return uploaded{id: id, url: url}, err
		})
	if err != nil {
		return "", "", err
	}
	return out.id, out.url, nil
}

// failItem records a per-item failure and lets the run continue.
func (o *Orchestrator) failItem(report *types.Report, log zerolog.Logger, stage string, err error) error {
	report.ItemsFailed++
	report.Reasons = append(report.Reasons, fmt.Sprintf("%s: %s", stage, faults.KindOf(err)))
	log.Error().Str("failed_stage", stage).Err(err).Msg("item failed")
	return nil
}

// fatal wraps a run-aborting error. Persistence failures land here: with
// state files unreadable or unwritable, continuing risks double publishes.
func (o *Orchestrator) fatal(err error, msg string) error {
	o.log.Error().Err(err).Msg("aborting run")
	if faults.IsKind(err, faults.KindPersistence) {
		return err
	}
	return faults.Wrap(err, faults.KindPersistence, msg)
}

func (o *Orchestrator) transition(next State) {
	if o.state == next {
		return
	}
	o.log.Debug().Str("from", string(o.state)).Str("to", string(next)).Msg("state transition")
	o.state = next
}

func (o *Orchestrator) itemFile(idx int, name string) string {
	return filepath.Join(o.runDir, fmt.Sprintf("item_%02d_%s", idx, name))
}
