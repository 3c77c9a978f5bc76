// Package sheets synchronizes the local database with a Google spreadsheet.
//
// Each table maps to one sheet whose first row holds column headers.
// Pull reads every sheet and merges rows into the store; blank cells never
// overwrite stored values. Push appends rows whose key is missing from the
// sheet, or rewrites the sheet when asked to replace it. There is no
// conflict resolution: the last writer wins column by column.
package sheets
