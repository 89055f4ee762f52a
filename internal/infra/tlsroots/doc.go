// Package tlsroots provides the trusted root certificate pool used for
// HTTPS connections to the session gateway.
//
// The pool starts from the system roots and can be extended with a
// custom CA bundle, so deployments behind a private CA can point the
// client at their own PEM file via configuration.
//
// @design DS-0501
package tlsroots
