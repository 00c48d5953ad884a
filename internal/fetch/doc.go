// Package fetch retrieves pages over HTTP for the scrape and enrich stages.
//
// Each Get uses a fresh colly collector with the configured user agent and
// timeout. There are no retries: a transport error or any status other than
// 200 produces a failed Result carrying an *Error.
package fetch
