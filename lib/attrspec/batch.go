// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package attrspec

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// Job is one blob to decode in a batch.
type Job struct {
	// Label identifies the blob in logs and results (typically the
	// attribute's target site).
	Label string

	Constructor *typesys.Constructor
	Blob        []byte
}

// Result is the outcome of one [Job]. Exactly one of Spec and Err is
// set.
type Result struct {
	Job  Job
	Spec *Spec
	Err  error
}

// BatchOptions configures [DecodeAll].
type BatchOptions struct {
	// Workers is the number of concurrent decoders. Zero means
	// GOMAXPROCS.
	Workers int

	// Logger receives one debug record per failed job. Nil discards.
	Logger *slog.Logger
}

// DecodeAll decodes jobs concurrently against a shared resolver and
// returns results in job order. A failing job does not stop the batch.
// Cancelling ctx stops workers from starting new jobs; DecodeAll then
// returns the context error and the results gathered so far (jobs never
// started have Err set to the context error).
func DecodeAll(ctx context.Context, jobs []Job, resolver typesys.Resolver, options BatchOptions) ([]Result, error) {
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, max(len(jobs), 1))
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]Result, len(jobs))
	indexes := make(chan int)

	var waitGroup sync.WaitGroup
	for range workers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for index := range indexes {
				job := jobs[index]
				spec, err := Parse(job.Constructor, job.Blob, resolver)
				results[index] = Result{Job: job, Spec: spec, Err: err}
				if err != nil {
					logger.Debug("attribute blob failed to decode",
						"label", job.Label,
						"error", err,
					)
				}
			}
		}()
	}

	var cancelled error
	next := 0
dispatch:
	for ; next < len(jobs); next++ {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case indexes <- next:
		}
	}
	close(indexes)
	waitGroup.Wait()

	if cancelled != nil {
		for index := next; index < len(jobs); index++ {
			results[index] = Result{Job: jobs[index], Err: cancelled}
		}
		return results, cancelled
	}
	return results, nil
}

// Failed returns the results whose decode failed.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Errors joins the errors of all failed results.
func Errors(results []Result) error {
	var errs []error
	for _, result := range Failed(results) {
		errs = append(errs, result.Err)
	}
	return errors.Join(errs...)
}
