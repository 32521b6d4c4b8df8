// Package preload runs the asset stages a render needs before its first
// frame and tracks which of them succeeded.
package preload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNoStages is returned by Run on an empty loader
var ErrNoStages = errors.New("preload: no stages")

// Stage is one unit of loading work
type Stage struct {
	Name     string
	Weight   float64 // Share of overall progress, <= 0 counts as 1
	Optional bool    // A failure substitutes a placeholder instead of aborting
	Load     func(ctx context.Context) error
}

func (s Stage) weight() float64 {
	if s.Weight <= 0 {
		return 1
	}
	return s.Weight
}

// Status is reported once per finished stage
type Status struct {
	Stage       string
	Progress    float64 // Weighted fraction of finished stages, in [0,1]
	Err         error
	Substituted bool    // Optional stage failed, placeholder in use
}

// State is the outcome of a run
type State struct {
	mu      sync.Mutex
	done    map[string]bool
	failed  []string
	errs    map[string]error
	stages  int
	aborted bool
}

// Ready reports whether every required stage finished successfully
func (s *State) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.aborted && len(s.done)+len(s.failed) == s.stages
}

// Failed lists optional stages that were substituted, in completion order
func (s *State) Failed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.failed...)
}

// Err returns the error of the named stage, nil if it succeeded
func (s *State) Err(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[name]
}

// Loader runs stages concurrently
type Loader struct {
	Stages []Stage
	Limit  int // Concurrent stages, <= 0 for no limit
}

// Add appends a stage
func (l *Loader) Add(s Stage) {
	l.Stages = append(l.Stages, s)
}

// Run executes all stages. report, if not nil, is called serially after
// each stage with the weighted progress so far. The first required failure
// cancels the remaining stages and is returned.
func (l *Loader) Run(ctx context.Context, report func(Status)) (*State, error) {
	if len(l.Stages) == 0 {
		return nil, ErrNoStages
	}

	total := 0.0
	names := make(map[string]bool, len(l.Stages))
	for _, s := range l.Stages {
		if s.Load == nil {
			return nil, fmt.Errorf("preload: stage %q has no loader", s.Name)
		}
		if names[s.Name] {
			return nil, fmt.Errorf("preload: duplicate stage %q", s.Name)
		}
		names[s.Name] = true
		total += s.weight()
	}

	st := &State{
		done:   make(map[string]bool, len(l.Stages)),
		errs:   make(map[string]error),
		stages: len(l.Stages),
	}
	finished := 0.0

	g, gctx := errgroup.WithContext(ctx)
	if l.Limit > 0 {
		g.SetLimit(l.Limit)
	}

	for _, s := range l.Stages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.Load(gctx)

			st.mu.Lock()
			defer st.mu.Unlock()

			status := Status{Stage: s.Name, Err: err}
			switch {
			case err == nil:
				st.done[s.Name] = true
			case s.Optional:
				st.failed = append(st.failed, s.Name)
				st.errs[s.Name] = err
				status.Substituted = true
			default:
				st.errs[s.Name] = err
				st.aborted = true
			}
			finished += s.weight()
			status.Progress = finished / total

			if report != nil {
				report(status)
			}
			if err != nil && !s.Optional {
				return fmt.Errorf("stage %s: %w", s.Name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		st.mu.Lock()
		st.aborted = true
		st.mu.Unlock()
		return st, err
	}
	return st, nil
}
