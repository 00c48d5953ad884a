// Package extract turns a grant detail page into structured fields.
//
// Extraction is an ordered chain of regular-expression rules per field; the
// first rule that matches wins and a field no rule matches stays empty. An
// optional Model can fill fields the rules left empty and supply a one-line
// TL;DR.
package extract
