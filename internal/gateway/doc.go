// Package gateway provides access to the remote session gateway.
//
// This package isolates all remote-API concerns behind one interface:
//
//   - gateway.go: Gateway contract consumed by the services
//   - http.go: HTTP/HTTPS client implementation
//   - normalize.go: response-shape normalization (wrapper objects,
//     alternate field names) into canonical domain records
//
// The gateway owns every stateful record. Responses arrive in loosely
// versioned shapes (`session` wrapper vs bare record, `invocationSummaries`
// vs `invocations`); normalization confines that variability here so the
// services only ever see domain types.
//
// @design DS-0201
package gateway
