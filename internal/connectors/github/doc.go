// Package github looks up GitHub repositories so they can be cloned into
// the gits directory.
//
// # Authentication
//
// A personal access token is optional. Without one only public
// repositories are visible and the API allows 60 requests per hour;
// with one the limit is 5,000 per hour and private repositories the
// token can read are included.
//
// # Rate Limiting
//
// Requests are throttled proactively with a token bucket and reactively
// from the X-RateLimit-* response headers. When the remaining quota drops
// below a small buffer, requests wait for the reset time.
package github
