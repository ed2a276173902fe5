// Package frappe implements datasource.Source against the Frappe REST
// API, the backend protocol spoken by ERPNext and compatible systems.
//
// The client reads through /api/resource endpoints with token
// authentication. CheckConnection probes the configured base URL and
// falls back to discovering a local instance on the well-known ports
// 8000, 8001, 8080 and 9000; the first instance that answers the
// /api/method/ping probe becomes the base URL for all later requests.
//
// Transient failures (transport errors, 5xx responses) are retried
// with exponential backoff. Client errors (4xx) and malformed response
// bodies fail immediately.
package frappe
