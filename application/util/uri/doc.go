// Package uri implements the subset of Uniform Resource Identifier (URI)
// parsing needed to address an HTTP origin server.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc3986
//
// - https://datatracker.ietf.org/doc/html/rfc9110#section-4.2
package uri
