// SPDX-License-Identifier: MIT
package recognition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"earshot/internal/analysis"
	"earshot/internal/audio"
	"earshot/internal/classify"
	applog "earshot/internal/log"

	"github.com/google/uuid"
)

// Orchestrator defaults.
const (
	DefaultReadyTimeout         = 5 * time.Second
	DefaultClassifierTimeout    = 2 * time.Second
	DefaultTranscriptionTimeout = 30 * time.Second
)

// Subsystems is the capability set a recognition call runs on.
type Subsystems struct {
	Extractor   analysis.FeatureExtractor
	Classifiers []classify.Classifier
	Model       classify.Classifier // optional, outranks the heuristic vote
	Transcriber Transcriber         // optional
}

func (s *Subsystems) validate() error {
	if s == nil {
		return errors.New("provider returned no subsystems")
	}
	if s.Extractor == nil {
		return errors.New("subsystems have no feature extractor")
	}
	return nil
}

// Provider builds the subsystem set. It is called at most once per
// successful initialization and never concurrently with itself.
type Provider func(ctx context.Context) (*Subsystems, error)

// StaticProvider returns a Provider that always yields s.
func StaticProvider(s *Subsystems) Provider {
	return func(context.Context) (*Subsystems, error) { return s, nil }
}

// State is the lifecycle of the subsystem set.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options tunes the orchestrator. Zero fields take the defaults.
type Options struct {
	ReadyTimeout         time.Duration
	ClassifierTimeout    time.Duration
	TranscriptionTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultReadyTimeout
	}
	if o.ClassifierTimeout <= 0 {
		o.ClassifierTimeout = DefaultClassifierTimeout
	}
	if o.TranscriptionTimeout <= 0 {
		o.TranscriptionTimeout = DefaultTranscriptionTimeout
	}
	return o
}

// initAttempt is one run of the Provider. done is closed once subs or err is
// set.
type initAttempt struct {
	done chan struct{}
	subs *Subsystems
	err  error
}

// Orchestrator runs recognition calls over a lazily built subsystem set.
type Orchestrator struct {
	provider Provider
	opts     Options
	log      applog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	subs    *Subsystems
	attempt *initAttempt
}

// New returns an Orchestrator that will build its subsystems with provider on
// first use.
func New(provider Provider, opts Options) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		provider: provider,
		opts:     opts.withDefaults(),
		log:      applog.For("orchestrator"),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close cancels the context handed to the Provider.
func (o *Orchestrator) Close() error {
	o.cancel()
	return nil
}

// IsReady reports whether the subsystems have been built.
func (o *Orchestrator) IsReady() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == Ready
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Prepare builds the subsystems now instead of on the first Recognize.
func (o *Orchestrator) Prepare(ctx context.Context) error {
	_, err := o.ensureReady(ctx)
	return err
}

// ensureReady returns the subsystems, starting initialization if nobody has
// and waiting at most ReadyTimeout for it to finish.
func (o *Orchestrator) ensureReady(ctx context.Context) (*Subsystems, error) {
	o.mu.Lock()
	switch o.state {
	case Ready:
		subs := o.subs
		o.mu.Unlock()
		return subs, nil
	case Uninitialized, Failed:
		o.state = Initializing
		o.attempt = &initAttempt{done: make(chan struct{})}
		go o.initialize(o.attempt)
	}
	attempt := o.attempt
	o.mu.Unlock()

	timer := time.NewTimer(o.opts.ReadyTimeout)
	defer timer.Stop()

	select {
	case <-attempt.done:
		if attempt.err != nil {
			return nil, &ServiceUnavailableError{Err: attempt.err}
		}
		return attempt.subs, nil
	case <-timer.C:
		o.log.Warnf("subsystems not ready after %s", o.opts.ReadyTimeout)
		return nil, &ServiceUnavailableError{Waited: o.opts.ReadyTimeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (o *Orchestrator) initialize(a *initAttempt) {
	o.log.Debugf("initializing subsystems")
	started := o.now()

	subs, err := func() (subs *Subsystems, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("provider panicked: %v", r)
			}
		}()
		subs, err = o.provider(o.ctx)
		if err == nil {
			err = subs.validate()
		}
		return subs, err
	}()

	o.mu.Lock()
	if err != nil {
		o.state = Failed
		o.log.Errorf("initialization failed: %v", err)
	} else {
		o.state = Ready
		o.subs = subs
		o.log.Infof("subsystems ready in %s (%d classifiers, model=%t, transcriber=%t)",
			o.now().Sub(started).Round(time.Millisecond), len(subs.Classifiers),
			subs.Model != nil, subs.Transcriber != nil)
	}
	a.subs, a.err = subs, err
	o.mu.Unlock()
	close(a.done)
}

// progressEmitter forwards events to fn, dropping any that would move the
// progress value backwards.
type progressEmitter struct {
	fn   ProgressFunc
	last int
	log  applog.Logger
}

func (p *progressEmitter) emit(stage Stage, value int, format string, args ...any) {
	if value < p.last {
		return
	}
	p.last = value
	msg := fmt.Sprintf(format, args...)
	p.log.Debugf("[%3d%%] %s: %s", value, stage, msg)
	if p.fn != nil {
		p.fn(Progress{Stage: stage, Progress: value, Message: msg})
	}
}

// Recognize runs one recognition call over buf. Extraction failures, readiness
// failures and cancellation abort the call; classifier and transcription
// failures are recorded in the result's DetectedContent.
func (o *Orchestrator) Recognize(ctx context.Context, buf *audio.Buffer, onProgress ProgressFunc) (*Result, error) {
	started := o.now()
	progress := &progressEmitter{fn: onProgress, log: o.log}

	progress.emit(StageInitializing, 0, "Preparing recognition subsystems")
	subs, err := o.ensureReady(ctx)
	if err != nil {
		return nil, err
	}
	progress.emit(StageInitializing, 10, "Subsystems ready")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.emit(StageFeatureExtraction, 20, "Extracting spectral features")
	features, err := subs.Extractor.Extract(ctx, buf)
	if err != nil {
		o.log.Warnf("feature extraction failed: %v", err)
		return nil, fmt.Errorf("feature extraction: %w", err)
	}
	progress.emit(StageFeatureExtraction, 40, "Extracted features from %s of audio", features.Duration.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.emit(StageClassification, 50, "Running %d classifiers", len(subs.Classifiers))
	votes := o.vote(ctx, subs, buf, features)
	agg := classify.Aggregate(votes.heuristic)
	progress.emit(StageClassification, 70, "Primary vote: %s", agg.Primary.Label)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.emit(StageFusion, 80, "Fusing classification signals")
	f := fuse(agg, votes.model, votes.transcript)

	res := &Result{
		ID:                 uuid.NewString(),
		PrimaryRecognition: f.summary,
		Confidence:         f.confidence,
		Source:             f.source,
		AudioType:          f.audioType,
		Timestamp:          started.UTC(),
		Features:           features.Clone(),
		Classification:     agg,
	}
	if votes.transcript.Spoken() {
		res.Transcription = votes.transcript.Text
		res.Language = votes.transcript.Language
		s := AnalyzeSentiment(votes.transcript.Text)
		res.Sentiment = &s
	}
	res.DetectedContent = detectedContent(res, votes)
	res.AnalysisTime = o.now().Sub(started).Milliseconds()

	progress.emit(StageComplete, 100, "%s (%.0f%%)", res.PrimaryRecognition, res.Confidence*100)
	return res, nil
}
