package pipeline

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/domain/run"
	"neuroslope/internal"
	"neuroslope/internal/errors"
	"neuroslope/internal/fit"
	"neuroslope/internal/spectral"
	"neuroslope/ports"
)

// Runner iterates the cohort: validates configuration and metadata
// coverage up front, processes subjects across bounded workers, and
// assembles the result table in original subject order. A failure on
// any subject surfaces as a run-level error; a partial cohort would
// silently change the statistical population.
type Runner struct {
	params     run.Params
	recordings ports.RecordingPort
	events     ports.EventPort
	metadata   ports.MetadataPort
	log        *internal.Logger

	// Workers bounds parallel subject processing; 0 means one per CPU.
	Workers int
	// Seed makes RANSAC consensus sampling reproducible. Each subject
	// derives its fitter seed from Seed and its cohort index, so results
	// do not depend on worker scheduling.
	Seed int64
}

// Result is one completed run: the manifest, the tabular dataset and
// the processed subjects backing it.
type Result struct {
	Manifest *run.Manifest
	Table    *cohort.Table
	Subjects []*cohort.Subject
}

// NewRunner wires a cohort runner from its collaborator ports.
func NewRunner(params run.Params, recordings ports.RecordingPort, events ports.EventPort,
	metadata ports.MetadataPort, logger *internal.Logger) *Runner {
	return &Runner{
		params:     params,
		recordings: recordings,
		events:     events,
		metadata:   metadata,
		log:        logger.WithComponent("Runner"),
		Seed:       1,
	}
}

// Run executes the pipeline over every discovered subject.
func (r *Runner) Run(ctx context.Context, codeVersion string) (*Result, error) {
	if err := r.params.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	ids, err := r.recordings.ListSubjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover recordings")
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.CodeLoadError, "no recordings discovered")
	}

	roster, err := r.metadata.LoadRoster(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cohort metadata")
	}
	if missing := roster.MissingFrom(ids); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, id := range missing {
			names[i] = id.String()
		}
		return nil, errors.WithCode(errors.CodeMissingMetadata,
			fmt.Errorf("%w: %s", core.ErrMissingMetadata, strings.Join(names, ", ")))
	}

	// The first subject fixes the run-global frequency grid and channel
	// order; every later subject is validated against both.
	first, err := r.loadSubject(ctx, ids[0], roster)
	if err != nil {
		return nil, err
	}
	winLen := int(math.Round(r.params.WindowSeconds * first.Recording.SampleRate))
	est, err := spectral.NewEstimator(first.Recording.SampleRate, winLen)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	channels := first.Recording.Channels
	proc := NewSubjectProcessor(r.params, est, r.log)

	r.log.Info("run over %d subjects: montage=%s fit=%s range=[%v, %v] buffer=[%v, %v] window=%vs cap=%d",
		len(ids), r.params.Montage, r.params.FittingFunc,
		r.params.FittingLoFreq, r.params.FittingHiFreq,
		r.params.PSDBufferLoFreq, r.params.PSDBufferHiFreq,
		r.params.WindowSeconds, r.params.NWinsUpperLimit)

	subjects := make([]*cohort.Subject, len(ids))
	subjects[0] = first

	g, gctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)

	for i := range ids {
		i := i
		g.Go(func() error {
			s := subjects[i]
			if s == nil {
				loaded, err := r.loadSubject(gctx, ids[i], roster)
				if err != nil {
					return err
				}
				if err := r.checkConsistency(loaded, first.Recording.SampleRate, channels); err != nil {
					return err
				}
				subjects[i] = loaded
				s = loaded
			}
			r.log.Info("processing %s (%s, age %d)", s.ID, s.Group, s.Age)
			fitter, err := fit.NewFitter(r.params.FittingFunc, r.Seed+int64(i))
			if err != nil {
				return err
			}
			return proc.Process(s, fitter)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table, err := cohort.BuildTable(subjects, channels)
	if err != nil {
		return nil, err
	}

	manifest := run.NewManifest(r.params, codeVersion, len(subjects))
	manifest.Channels = channels
	return &Result{Manifest: manifest, Table: table, Subjects: subjects}, nil
}

func (r *Runner) loadSubject(ctx context.Context, id core.SubjectID, roster cohort.Roster) (*cohort.Subject, error) {
	rec, err := r.recordings.LoadRecording(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load recording for subject %s", id)
	}
	if err := rec.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeLoadError, err)
	}
	events, err := r.events.LoadEvents(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load events for subject %s", id)
	}
	meta := roster[id]
	return cohort.NewSubject(rec, events, meta.Group, meta.Age, meta.Sex), nil
}

func (r *Runner) checkConsistency(s *cohort.Subject, sampleRate float64, channels []string) error {
	if s.Recording.SampleRate != sampleRate {
		return fmt.Errorf("%w: subject %s sampled at %v Hz, run at %v Hz",
			core.ErrGridMismatch, s.ID, s.Recording.SampleRate, sampleRate)
	}
	if len(s.Recording.Channels) != len(channels) {
		return fmt.Errorf("%w: subject %s has %d channels, run has %d",
			core.ErrChannelMismatch, s.ID, len(s.Recording.Channels), len(channels))
	}
	for i := range channels {
		if s.Recording.Channels[i] != channels[i] {
			return fmt.Errorf("%w: subject %s channel %d is %q, run has %q",
				core.ErrChannelMismatch, s.ID, i, s.Recording.Channels[i], channels[i])
		}
	}
	return nil
}
