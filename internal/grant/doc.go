// Package grant defines the records that flow through the GrantFlow pipeline.
//
// A Grant is created by the listing scraper (title, link, niche and source only),
// filled in by the enrichment stage, and consumed read-only by curation, slug
// assignment and the site renderer. Optional fields use the empty string for
// "absent"; the Amount type additionally folds JSON numbers, zero and null into
// that same absent state so curated files with loose typing load cleanly.
//
// Resources are the separately curated free/low-cost therapy programs shown on
// the resources page. Sources describe the listing pages the scraper visits.
package grant
