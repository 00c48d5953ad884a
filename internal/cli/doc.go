// Package cli implements the command-line interface for grantflow.
//
// The cli package provides the Cobra-based CLI that runs the three pipeline
// stages (scrape, enrich, build) on their own or together, lists curated
// grants in the terminal with filtering, sorting and text/JSON/table output,
// and prints the effective configuration. It coordinates the scraper,
// enrich, curate, slug, site and storage packages.
package cli
