// Package storage reads and writes the pipeline's JSON files.
//
// Every file holds a JSON array. Mandatory inputs (the raw scrape for the
// enrich stage, the enriched list for the build stage) must exist; a missing
// mandatory file is reported as ErrMissingInput. Optional inputs (curated
// grants, resources) that do not exist read as empty lists.
package storage
