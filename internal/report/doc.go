// Package report turns a populated stash into a workbook and writes it out.
//
// Builder reads each cemetery's burial list in order, parses the cached
// burial pages and extracts one row per memorial. The resulting Workbook
// has one Sheet per cemetery unit of the instruction file.
//
// Writers render a Workbook:
//   - XLSXWriter: the spreadsheet, with hyperlink and rich text cells
//   - CSVWriter: one plain CSV file per sheet
//   - MarkdownWriter: a summary with row counts and column fill rates
//   - SimpleWriter: the same summary as plain text for the terminal
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
