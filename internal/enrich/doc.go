// Package enrich visits each grant's detail page and fills in its
// deadline, amount, eligibility, summary and TL;DR.
//
// Grants are processed one at a time. A page that cannot be fetched leaves
// its grant untouched; the reason is recorded in the grant's Outcome.
package enrich
