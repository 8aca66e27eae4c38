// Package http implements the HTTP/1.1 message codec used by the client:
// header normalization, body encoding, request assembly and response decoding.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
//
// - https://datatracker.ietf.org/doc/html/rfc7578
package http
