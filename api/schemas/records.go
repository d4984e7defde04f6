// File: api/schemas/records.go
package schemas

// ProductRecord maps a column header to the trimmed cell text of one table
// row. The key set follows the header row of the table that produced the
// record; the schema is not fixed and may differ between runs.
type ProductRecord map[string]string

// ResultSet is the ordered accumulation of records extracted across all
// pages. Append-only during extraction.
type ResultSet []ProductRecord
