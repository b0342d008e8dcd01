package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanies_ProseWrappedTable(t *testing.T) {
	raw := "Here are the enriched companies:\n```json\n[\n" +
		`{"name": "Acme Robotics", "linkedin": "https://linkedin.com/company/acme", "company_url": "https://acme.example", "size": "51-200", "funding": "$12M", "founded": 2015, "head_office": "Austin, TX", "sales_dept": {"email": "sales@acme.example", "phone": "+1 512 555 0100"}},` +
		"\n" +
		`{"company_name": "Globex", "website": "https://globex.example", "employees": "1000+",},` +
		"\n]\n```\nLet me know if you need more."

	records, err := Companies(raw)
	require.NoError(t, err)
	require.Len(t, records, 2)

	acme := records[0]
	assert.Equal(t, "Acme Robotics", acme.Name)
	assert.Equal(t, "https://linkedin.com/company/acme", acme.LinkedInURL)
	assert.Equal(t, "https://acme.example", acme.CompanyURL)
	assert.Equal(t, "51-200", acme.Size)
	assert.Equal(t, "$12M", acme.Funding)
	assert.Equal(t, "2015", acme.FoundedYear)
	assert.Equal(t, "Austin, TX", acme.HeadOffice)
	assert.Equal(t, "sales@acme.example", acme.SalesEmail)
	assert.Equal(t, "+1 512 555 0100", acme.SalesPhone)
	assert.False(t, acme.Incomplete)
	assert.NotEmpty(t, acme.RowID)

	globex := records[1]
	assert.Equal(t, "Globex", globex.Name)
	assert.Equal(t, "https://globex.example", globex.CompanyURL)
	assert.Equal(t, "1000+", globex.Size)
	assert.Empty(t, globex.SalesEmail)

	assert.NotEqual(t, records[0].RowID, records[1].RowID)
}

func TestCompanies_TrailingCommasAndProse(t *testing.T) {
	raw := "Here you go:\n[{\"name\":\"Acme\",\"size\":\"50\",},]\n"

	records, err := Companies(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "50", rec.Size)
	assert.Empty(t, rec.Funding)
	assert.Empty(t, rec.FoundedYear)
	assert.Empty(t, rec.HeadOffice)
	assert.Empty(t, rec.SalesEmail)
	assert.Empty(t, rec.SalesPhone)
	assert.Empty(t, rec.Notes)
	assert.False(t, rec.Incomplete)
}

func TestCompanies_MissingNameKeptIncomplete(t *testing.T) {
	raw := `[{"name": "Acme"}, {"size": "10-50"}, {"name": null}]`

	records, err := Companies(raw)
	require.NoError(t, err)
	require.Len(t, records, 3, "rows without names must not be dropped")

	assert.False(t, records[0].Incomplete)
	assert.True(t, records[1].Incomplete)
	assert.True(t, records[2].Incomplete)
	assert.Equal(t, "10-50", records[1].Size)
}

func TestCompanies_FlatSalesContactFallback(t *testing.T) {
	raw := `[{"name": "Acme", "sales_email": "hello@acme.example", "sales_phone": "+1 555 0100"}]`

	records, err := Companies(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello@acme.example", records[0].SalesEmail)
	assert.Equal(t, "+1 555 0100", records[0].SalesPhone)
}

func TestCompanies_NoContainer(t *testing.T) {
	_, err := Companies("I could not find any companies matching that description.")

	var xErr *Error
	require.ErrorAs(t, err, &xErr)
	assert.Equal(t, KindNoContainerFound, xErr.Kind)
	assert.Contains(t, xErr.Raw, "could not find")
}

func TestCompanies_MalformedRetainsRaw(t *testing.T) {
	raw := `[{"name": "Acme" "missing_comma": true}]`

	_, err := Companies(raw)

	var xErr *Error
	require.ErrorAs(t, err, &xErr)
	assert.Equal(t, KindMalformedJSON, xErr.Kind)
	assert.Contains(t, xErr.Raw, "Acme")
}

func TestCompanies_SchemaMismatch(t *testing.T) {
	// An array of scalars is parseable JSON but not a company table.
	_, err := Companies(`["Acme", "Globex"]`)

	var xErr *Error
	require.ErrorAs(t, err, &xErr)
	assert.Equal(t, KindSchemaMismatch, xErr.Kind)
	assert.NotEmpty(t, xErr.Raw)
}

func TestEvent_GoogleShape(t *testing.T) {
	raw := "```json\n" + `{
		"summary": "Intro call with Acme",
		"location": "Google Meet",
		"description": "Discuss pilot scope.",
		"start": {"dateTime": "2026-09-03T14:00:00-05:00", "timeZone": "America/Chicago"},
		"end": {"dateTime": "2026-09-03T14:30:00-05:00", "timeZone": "America/Chicago"},
		"attendees": [{"email": "jordan@acme.example"}, {"email": "sales@ours.example"}],
		"reminders": {"useDefault": false, "overrides": [
			{"method": "email", "minutes": 1440},
			{"method": "popup", "minutes": 10}
		]}
	}` + "\n```"

	ev, err := Event(raw)
	require.NoError(t, err)

	assert.Equal(t, "Intro call with Acme", ev.Title)
	assert.Equal(t, "Google Meet", ev.Location)
	assert.Equal(t, "2026-09-03T14:00:00-05:00", ev.Start.DateTime)
	assert.Equal(t, "America/Chicago", ev.Start.TimeZone)
	assert.Equal(t, "2026-09-03T14:30:00-05:00", ev.End.DateTime)
	assert.Equal(t, []string{"jordan@acme.example", "sales@ours.example"}, ev.Attendees)
	require.Len(t, ev.Reminders, 2)
	assert.Equal(t, "email", ev.Reminders[0].Method)
	assert.Equal(t, 1440, ev.Reminders[0].Minutes)
	assert.Equal(t, 10, ev.Reminders[1].Minutes)
}

func TestEvent_FlattenedVariants(t *testing.T) {
	raw := `{
		"title": "Follow-up",
		"start": {"date_time": "2026-09-04T10:00:00Z"},
		"end": {"datetime": "2026-09-04T10:30:00Z"},
		"attendees": ["a@example.com"],
		"reminders": [{"method": "popup", "minutes_before": 15}]
	}`

	ev, err := Event(raw)
	require.NoError(t, err)

	assert.Equal(t, "Follow-up", ev.Title)
	assert.Equal(t, "2026-09-04T10:00:00Z", ev.Start.DateTime)
	assert.Equal(t, "2026-09-04T10:30:00Z", ev.End.DateTime)
	assert.Equal(t, []string{"a@example.com"}, ev.Attendees)
	require.Len(t, ev.Reminders, 1)
	assert.Equal(t, 15, ev.Reminders[0].Minutes)
}

func TestEvent_MissingTimesDegrade(t *testing.T) {
	ev, err := Event(`{"summary": "Call"}`)
	require.NoError(t, err)
	assert.Equal(t, "Call", ev.Title)
	assert.Empty(t, ev.Start.DateTime)
	assert.Empty(t, ev.Attendees)
	assert.Empty(t, ev.Reminders)
}

func TestAnswers_OrderedList(t *testing.T) {
	raw := "Analysis complete. " + `{"answers": ["yes", "Jordan Smith", "Tuesday 2pm", "no objections", "Spoke with Jordan; agreed to a Tuesday 2pm intro call."]}`

	answers, err := Answers(raw)
	require.NoError(t, err)
	require.Len(t, answers, 5)
	assert.Equal(t, "yes", answers[0])
	assert.True(t, strings.HasPrefix(answers[4], "Spoke with Jordan"))
}

func TestAnswers_ScalarsStringified(t *testing.T) {
	answers, err := Answers(`{"answers": [true, 42, "text", null]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "42", "text", ""}, answers)
}

func TestAnswers_MissingKeySchemaMismatch(t *testing.T) {
	_, err := Answers(`{"results": ["a"]}`)

	var xErr *Error
	require.ErrorAs(t, err, &xErr)
	assert.Equal(t, KindSchemaMismatch, xErr.Kind)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "2015", stringify(float64(2015)))
	assert.Equal(t, "57.5", stringify(57.5))
	assert.Equal(t, "text", stringify("  text  "))
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "", stringify(map[string]any{"k": "v"}))
}
