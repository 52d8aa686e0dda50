/*
Package bookingapi is the HTTP client of the restaurant booking API.

Requests are form encoded and authenticated with a bearer token. Transport
failures and 500/502/503/504 responses are retried with exponential backoff;
an optional circuit breaker stops calling a service that keeps failing.
Every failure is returned as a *domain.RemoteError.
*/
package bookingapi
