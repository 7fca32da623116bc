// Package domain models the shady-spot map: community-reported cool spots from
// a published spreadsheet, curated sites, and the layer tree that a map widget
// renders.
//
// # Data Source
//
// Shady spots are collected through a form that writes into a spreadsheet. The
// spreadsheet is published as CSV with a header row:
//
//	name,latitude,longitude,description,timestamp,timeday,upvotes,objectID
//
// Any column may be missing and any cell may be blank or malformed. Rows are
// decoded into [RawRecord] values where a nil field means the column was
// absent from the header.
//
// # Normalization
//
// [NormalizeRecord] accepts a row only when latitude and longitude both parse
// to finite numbers. There is no range check, so a finite but impossible
// value such as latitude 900 is accepted and will render off-map. Blank
// text fields take fixed defaults:
//
//	name        "Unnamed"
//	description ""
//	timestamp   "unknown"
//	upvotes     0
//
// # Time-of-Day Categories
//
// The free-text timeday column is lower-cased, trimmed and matched exactly
// against morning, afternoon, evening and night. Everything else, including
// a blank cell, is filed under Night. This mirrors the behaviour the map has
// always had; an Unknown bucket has been discussed but not adopted.
//
// # Coordinates in Popups
//
// Feed points print latitude with six decimals and longitude with five, e.g.
// "43.640000, -79.40000". Curated sites print the five-decimal values they
// were authored with.
package domain
