package model

import "strings"

// CompanyRecord is one row in a session's company table. RowID is a
// synthetic identifier assigned at extraction time; all later lookups
// (call outcomes, notes) key on it rather than on Name, because model
// output may contain duplicate company names.
type CompanyRecord struct {
	RowID       string `json:"row_id"`
	Name        string `json:"name"`
	LinkedInURL string `json:"linkedin_url"`
	CompanyURL  string `json:"company_url"`
	Size        string `json:"size"`
	Funding     string `json:"funding"`
	FoundedYear string `json:"founded_year"`
	HeadOffice  string `json:"head_office"`
	SalesEmail  string `json:"sales_email"`
	SalesPhone  string `json:"sales_phone"`
	Notes       string `json:"notes"`

	// Incomplete marks rows that extracted without a company name. The row
	// is retained so the table count matches what the model claimed; the
	// flag makes the gap visible in the table instead of dropping the row.
	Incomplete bool `json:"incomplete,omitempty"`
}

// AppendNote appends text to the record's notes, separating entries with a
// blank line. Empty input is a no-op.
func (c *CompanyRecord) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if c.Notes == "" {
		c.Notes = note
		return
	}
	c.Notes += "\n\n" + note
}
