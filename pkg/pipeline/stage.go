// Package pipeline defines the generic stage contract and the input and
// result types exchanged between feature pipeline stages.
package pipeline

import (
	"context"
)

// Stage turns one input into one output. Implementations must honour ctx
// cancellation while blocked on I/O.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// Extractor is the fused motion and flow pass shared by dataset builds and
// single-video inference.
type Extractor = Stage[ExtractInput, ExtractResult]

// Sampler exports resized frames of one video.
type Sampler = Stage[SampleInput, SampleResult]

// StageFunc lets a plain function act as a Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute calls f(ctx, input).
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
