// Package service provides domain services for SessionDX.
//
// Domain services contain the diagnosis business logic and orchestrate
// operations against the session gateway. They hold no state of their own
// beyond configuration, allowing for dependency injection and testability.
//
// This package contains:
//
//   - LifecycleService: opening, closing, and deleting diagnosis sessions
//   - RecorderService: recording diagnostic steps with bounded retry
//   - ReconstructorService: rebuilding the diagnostic context of a session
//   - ProbeService: staged end-to-end verification of gateway connectivity
//   - Annotator: heuristic extraction of components and hypotheses from text
//
// Services are stateless and thread-safe.
//
// @req RQ-0102
// @design DS-0103
package service
