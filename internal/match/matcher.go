package match

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dupfinder/internal/models"
)

// FileSystem provides the size and content primitives the matchers rely on
type FileSystem interface {
	Size(file models.FileID) (int64, error)
	Equal(a, b models.FileID) (bool, error)
}

// Matcher is the interface for duplicate detection strategies
type Matcher interface {
	FindGroups(files []models.FileID) *models.GroupResult
}

// Strategy names a grouping strategy
type Strategy string

const (
	StrategyNaive  Strategy = "naive"
	StrategyPruned Strategy = "pruned"
)

// New returns the matcher for the named strategy
func New(strategy Strategy, fs FileSystem, opts ...Option) (Matcher, error) {
	switch strategy {
	case StrategyNaive:
		return NewNaiveMatcher(fs, opts...), nil
	case StrategyPruned:
		return NewSizeMatcher(fs, opts...), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want %q or %q)", strategy, StrategyNaive, StrategyPruned)
	}
}

type options struct {
	workers int
	logger  log.FieldLogger
}

// Option configures a matcher
type Option func(*options)

// WithWorkers compares a file against the rest of the working set with up to
// n concurrent comparisons. The grouping is the same for any n.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger used to report per-file failures
func WithLogger(l log.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{workers: 1, logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// outcome of comparing the popped file against one working set member.
// err names the file that failed; pairErr is a failure that names neither.
type outcome struct {
	match   bool
	err     *models.FileError
	pairErr error
}

// grouper runs the pop-and-scan loop shared by every strategy
type grouper struct {
	fs          FileSystem
	opts        options
	canMatch    func(a, b models.FileID) bool // nil means any pair may match
	comparisons atomic.Int64
	result      *models.GroupResult
}

func newGrouper(fs FileSystem, opts options, result *models.GroupResult) *grouper {
	return &grouper{fs: fs, opts: opts, result: result}
}

// run partitions files into groups of content-identical members.
// Each iteration removes at least the popped file, so it terminates after
// at most len(files) iterations.
func (g *grouper) run(files []models.FileID) {
	work := slices.Clone(files)

	for len(work) > 0 {
		a := work[0]
		work = work[1:]

		outcomes := g.compareAll(a, work)

		// a is unreadable: it drops out, everything else stays for later rounds
		if failed := blamesA(a, outcomes); failed != nil {
			g.fail(failed)
			continue
		}

		members := []models.FileID{a}
		var rest []models.FileID
		for i, b := range work {
			o := outcomes[i]
			switch {
			case o.pairErr != nil:
				g.pairFailed(&models.FileError{File: b, Other: a, Op: "compare", Err: o.pairErr})
				rest = append(rest, b)
			case o.err != nil:
				g.fail(o.err)
			case o.match:
				members = append(members, b)
			default:
				rest = append(rest, b)
			}
		}
		work = rest

		if len(members) > 1 {
			g.result.Groups = append(g.result.Groups, &models.DuplicateGroup{Files: members})
		}
	}

	g.result.Comparisons += int(g.comparisons.Load())
}

// blamesA returns the error that excludes a: one naming a, or the first of
// two or more failures against different partners that name neither file.
func blamesA(a models.FileID, outcomes []outcome) *models.FileError {
	var unnamed []error
	for _, o := range outcomes {
		if o.err != nil && o.err.File == a {
			return o.err
		}
		if o.pairErr != nil {
			unnamed = append(unnamed, o.pairErr)
		}
	}
	if len(unnamed) >= 2 {
		return &models.FileError{File: a, Op: "compare", Err: unnamed[0]}
	}
	return nil
}

func (g *grouper) compareAll(a models.FileID, work []models.FileID) []outcome {
	outcomes := make([]outcome, len(work))

	if g.opts.workers <= 1 {
		unnamed := 0
		for i, b := range work {
			outcomes[i] = g.compare(a, b)
			if outcomes[i].err != nil && outcomes[i].err.File == a {
				break
			}
			if outcomes[i].pairErr != nil {
				if unnamed++; unnamed == 2 {
					break
				}
			}
		}
		return outcomes
	}

	var eg errgroup.Group
	eg.SetLimit(g.opts.workers)
	for i, b := range work {
		eg.Go(func() error {
			outcomes[i] = g.compare(a, b)
			return nil
		})
	}
	eg.Wait()
	return outcomes
}

func (g *grouper) compare(a, b models.FileID) outcome {
	if g.canMatch != nil && !g.canMatch(a, b) {
		return outcome{}
	}

	g.comparisons.Add(1)
	equal, err := g.fs.Equal(a, b)
	if err == nil {
		return outcome{match: equal}
	}

	var fe *models.FileError
	if errors.As(err, &fe) && (fe.File == a || fe.File == b) {
		return outcome{err: fe}
	}
	return outcome{pairErr: err}
}

func (g *grouper) fail(err *models.FileError) {
	g.opts.logger.WithFields(log.Fields{
		"file": err.File,
		"op":   err.Op,
	}).Warnf("excluding file: %v", err.Err)
	g.result.Errors = append(g.result.Errors, err)
}

// pairFailed records a comparison that failed without naming a file.
// Both files stay in play.
func (g *grouper) pairFailed(err *models.FileError) {
	g.opts.logger.WithFields(log.Fields{
		"file":  err.File,
		"other": err.Other,
	}).Warnf("comparison failed: %v", err.Err)
	g.result.Errors = append(g.result.Errors, err)
}
