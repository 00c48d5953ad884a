// Package curate turns enriched and hand-curated grants into the list the
// site shows: merged, with junk and duplicates removed, in display order.
package curate
