// Package domain defines the core domain models for sessiondx.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Session: remote diagnostic session record (normalized shape)
//   - Invocation / InvocationStep: sub-resources of a session
//   - ContentBlock: one text or image item of a step payload
//   - DiagnosticContext: client-side reconstructed narrative view
//   - Errors: domain-specific error definitions
//
// The remote gateway owns every stateful record; these types are the
// canonical client-side shapes produced by response normalization.
//
// @req RQ-0101
// @design DS-0101
package domain
