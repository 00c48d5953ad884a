// Package scraper discovers candidate grant listings on source pages.
//
// A source page is fetched once and every anchor whose text looks like a
// grant title is kept: the text must contain one of Keywords and be between
// MinTitleLength and MaxTitleLength characters long (exclusive). Root-relative
// links are resolved against the source's scheme and host. No other
// filtering happens here; junk entries are removed during curation.
package scraper
