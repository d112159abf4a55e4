// SPDX-License-Identifier: MIT
package recognition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earshot/internal/analysis"
	"earshot/internal/audio"
	"earshot/internal/classify"

	"golang.org/x/sync/errgroup"
)

// classifierOutcome is the accounted end of one classifier invocation.
type classifierOutcome struct {
	name    string
	outcome Outcome
	result  *classify.Result
	err     error
}

// votes collects every signal produced during the classification stage.
type votes struct {
	heuristic  []*classify.Result
	model      *classify.Result
	transcript *Transcript
	failures   []error
}

// vote fans the classifiers, the model and the transcriber out in parallel
// and joins all of them. Every invocation ends as resolved, rejected or
// timed out; none is dropped.
func (o *Orchestrator) vote(ctx context.Context, subs *Subsystems, buf *audio.Buffer, f analysis.Features) votes {
	outcomes := make([]classifierOutcome, len(subs.Classifiers))
	var modelOutcome classifierOutcome
	var transcript *Transcript
	var transcriptErr error

	var g errgroup.Group
	for i, c := range subs.Classifiers {
		g.Go(func() error {
			outcomes[i] = o.invoke(ctx, c, f.Clone())
			return nil
		})
	}
	if subs.Model != nil {
		g.Go(func() error {
			modelOutcome = o.invoke(ctx, subs.Model, f.Clone())
			return nil
		})
	}
	if subs.Transcriber != nil {
		g.Go(func() error {
			transcript, transcriptErr = o.transcribe(ctx, subs.Transcriber, buf)
			return nil
		})
	}
	_ = g.Wait()

	var v votes
	for _, oc := range outcomes {
		if oc.outcome != OutcomeResolved {
			v.failures = append(v.failures, &ClassifierFailure{Classifier: oc.name, Outcome: oc.outcome, Err: oc.err})
			continue
		}
		v.heuristic = append(v.heuristic, oc.result)
	}
	if subs.Model != nil {
		if modelOutcome.outcome == OutcomeResolved {
			v.model = modelOutcome.result
		} else {
			v.failures = append(v.failures, &ClassifierFailure{Classifier: modelOutcome.name, Outcome: modelOutcome.outcome, Err: modelOutcome.err})
		}
	}
	if transcriptErr != nil {
		v.failures = append(v.failures, transcriptErr)
	} else {
		v.transcript = transcript
	}

	for _, err := range v.failures {
		o.log.Warnf("degraded: %v", err)
	}
	return v
}

// invoke runs one classifier with a timeout, turning errors and panics into
// a rejected outcome. A classifier that overruns is abandoned; its goroutine
// finishes into a buffered channel nobody reads.
func (o *Orchestrator) invoke(ctx context.Context, c classify.Classifier, f analysis.Features) classifierOutcome {
	name := c.Name()
	done := make(chan classifierOutcome, 1)
	go func() {
		oc := classifierOutcome{name: name}
		defer func() {
			if r := recover(); r != nil {
				oc.outcome = OutcomeRejected
				oc.result = nil
				oc.err = fmt.Errorf("panic: %v", r)
			}
			done <- oc
		}()
		r, err := c.Classify(f)
		if err != nil {
			oc.outcome, oc.err = OutcomeRejected, err
			return
		}
		if r != nil {
			v := r.Clone()
			v.Confidence = max(0, min(1, v.Confidence))
			r = &v
		}
		oc.outcome, oc.result = OutcomeResolved, r
	}()

	timer := time.NewTimer(o.opts.ClassifierTimeout)
	defer timer.Stop()

	select {
	case oc := <-done:
		return oc
	case <-timer.C:
		return classifierOutcome{
			name:    name,
			outcome: OutcomeTimedOut,
			err:     &analysis.TimeoutError{Op: "classifier " + name, Limit: o.opts.ClassifierTimeout},
		}
	case <-ctx.Done():
		return classifierOutcome{name: name, outcome: OutcomeTimedOut, err: ctx.Err()}
	}
}

// transcribe runs the optional transcriber under its own timeout. The returned
// error, when non-nil, is always a *TranscriptionFailure.
func (o *Orchestrator) transcribe(ctx context.Context, t Transcriber, buf *audio.Buffer) (tr *Transcript, err error) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.TranscriptionTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			tr, err = nil, &TranscriptionFailure{Outcome: OutcomeRejected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	tr, err = t.Transcribe(ctx, buf)
	if err != nil {
		outcome := OutcomeRejected
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = OutcomeTimedOut
		}
		return nil, &TranscriptionFailure{Outcome: outcome, Err: err}
	}
	return tr, nil
}
