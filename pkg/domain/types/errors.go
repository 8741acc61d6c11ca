package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy for the chat pipeline. Everything except ErrValidation is
// recovered locally: downstream service failures degrade the reply but never
// surface as an HTTP error for a well-formed request.
var (
	// ErrIndexBuild: embedding service unreachable during index rebuild.
	// A previously built index, if any, stays in service.
	ErrIndexBuild = goerr.New("failed to build catalog index")

	// ErrRetrievalDegraded: no usable index; search yields an empty result.
	ErrRetrievalDegraded = goerr.New("catalog retrieval degraded")

	// ErrGeneration: text generation failed after retries.
	ErrGeneration = goerr.New("text generation failed")

	// ErrMemoryService: persistent memory store unavailable; treated as
	// empty recall.
	ErrMemoryService = goerr.New("memory service unavailable")

	// ErrValidation: malformed or empty input. The only error returned to
	// the client as a non-200 chat response.
	ErrValidation = goerr.New("invalid request")

	// ErrInvalidTransition: issue status may only move forward.
	ErrInvalidTransition = goerr.New("invalid issue status transition")
)
