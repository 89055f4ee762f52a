// Package memory provides an in-process session gateway.
//
// It implements the gateway contract with plain maps behind a single
// mutex. It backs the memory: endpoint scheme so the CLI can be exercised
// without a remote gateway, and serves as the fixture for service tests.
//
// @design DS-0203
package memory
