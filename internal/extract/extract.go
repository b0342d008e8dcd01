// Package extract converts repaired model output into typed records. Field
// mapping is permissive: alias keys are checked in a fixed declared order,
// absent fields resolve to empty strings, and missing sub-objects degrade
// gracefully instead of raising.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/repair"
)

// Alias lists, first match wins. Models rename fields freely between runs;
// these cover the variants observed from the enrichment prompt.
var (
	nameKeys       = []string{"name", "company_name", "company"}
	linkedinKeys   = []string{"linkedin", "linkedin_url", "linkedin_link"}
	companyURLKeys = []string{"company_url", "website", "url"}
	sizeKeys       = []string{"size", "company_size", "employees"}
	fundingKeys    = []string{"funding", "funding_amount"}
	foundedKeys    = []string{"founded", "founded_year", "year_founded"}
	headOfficeKeys = []string{"head_office", "head_office_location", "headquarters", "location"}
	salesDeptKeys  = []string{"sales_dept", "sales_department", "sales_contact"}
	emailKeys      = []string{"email", "sales_email"}
	phoneKeys      = []string{"phone", "sales_phone"}
)

// Companies extracts a company table from raw model output. Every element
// of the parsed array yields exactly one record: rows missing a name are
// kept with the Incomplete flag set so the count matches the model's claim.
// Each record receives a fresh synthetic RowID.
func Companies(raw string) ([]model.CompanyRecord, error) {
	doc, repaired, err := parse(raw, repair.ArrayHint)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(companyTableSchema, doc, repaired); err != nil {
		return nil, err
	}

	arr := doc.([]any)
	records := make([]model.CompanyRecord, 0, len(arr))
	for _, el := range arr {
		rec := model.CompanyRecord{RowID: uuid.NewString()}
		obj, ok := el.(map[string]any)
		if ok {
			rec.Name = firstString(obj, nameKeys)
			rec.LinkedInURL = firstString(obj, linkedinKeys)
			rec.CompanyURL = firstString(obj, companyURLKeys)
			rec.Size = firstString(obj, sizeKeys)
			rec.Funding = firstString(obj, fundingKeys)
			rec.FoundedYear = firstString(obj, foundedKeys)
			rec.HeadOffice = firstString(obj, headOfficeKeys)
			rec.SalesEmail, rec.SalesPhone = salesContact(obj)
		}
		if rec.Name == "" {
			rec.Incomplete = true
		}
		records = append(records, rec)
	}
	return records, nil
}

// Event extracts a calendar event from raw model output. The model is
// prompted with the Google-style event shape; both that shape and a few
// flattened variants map onto the domain type.
func Event(raw string) (*model.CalendarEvent, error) {
	doc, repaired, err := parse(raw, repair.ObjectHint)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(calendarEventSchema, doc, repaired); err != nil {
		return nil, err
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &Error{Kind: KindSchemaMismatch, Raw: repaired, Detail: "top-level value is not an object"}
	}

	ev := &model.CalendarEvent{
		Title:       firstString(obj, []string{"summary", "title"}),
		Location:    firstString(obj, []string{"location"}),
		Description: firstString(obj, []string{"description"}),
		Start:       eventTime(obj, "start"),
		End:         eventTime(obj, "end"),
		Attendees:   attendees(obj),
		Reminders:   reminders(obj),
	}
	return ev, nil
}

// Answers extracts the ordered answer list from a call-analysis response.
// By convention the last answer is the call summary.
func Answers(raw string) ([]string, error) {
	doc, repaired, err := parse(raw, repair.ObjectHint)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(callAnswersSchema, doc, repaired); err != nil {
		return nil, err
	}

	obj := doc.(map[string]any)
	list, _ := obj["answers"].([]any)
	answers := make([]string, 0, len(list))
	for _, v := range list {
		answers = append(answers, stringify(v))
	}
	return answers, nil
}

// parse runs repair then a strict JSON parse, mapping failures onto the
// extraction error taxonomy. The repaired text is retained on both paths.
func parse(raw string, hint repair.ContainerHint) (any, string, error) {
	repaired, err := repair.Repair(raw, hint)
	if err != nil {
		return nil, "", &Error{Kind: KindNoContainerFound, Raw: raw, Detail: err.Error()}
	}

	var doc any
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		return nil, "", &Error{Kind: KindMalformedJSON, Raw: repaired, Detail: err.Error()}
	}
	return doc, repaired, nil
}

// firstString returns the first alias key whose value stringifies to a
// non-empty string. Keys present with null values count as absent.
func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

// salesContact resolves the sales email and phone, preferring the nested
// sales-department sub-object and falling back to flat keys. An absent
// sub-object degrades to empty strings.
func salesContact(obj map[string]any) (email, phone string) {
	for _, k := range salesDeptKeys {
		if sub, ok := obj[k].(map[string]any); ok {
			email = firstString(sub, emailKeys)
			phone = firstString(sub, phoneKeys)
			break
		}
	}
	if email == "" {
		email = firstString(obj, []string{"sales_email", "email"})
	}
	if phone == "" {
		phone = firstString(obj, []string{"sales_phone", "phone"})
	}
	return email, phone
}

func eventTime(obj map[string]any, key string) model.EventTime {
	sub, ok := obj[key].(map[string]any)
	if !ok {
		return model.EventTime{}
	}
	return model.EventTime{
		DateTime: firstString(sub, []string{"dateTime", "datetime", "date_time"}),
		TimeZone: firstString(sub, []string{"timeZone", "timezone", "time_zone"}),
	}
}

func attendees(obj map[string]any) []string {
	list, ok := obj["attendees"].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, el := range list {
		switch v := el.(type) {
		case map[string]any:
			if email := firstString(v, []string{"email"}); email != "" {
				out = append(out, email)
			}
		case string:
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// reminders accepts both the Google shape {"useDefault":false,"overrides":
// [...]} and a bare override array.
func reminders(obj map[string]any) []model.Reminder {
	var overrides []any
	switch v := obj["reminders"].(type) {
	case map[string]any:
		overrides, _ = v["overrides"].([]any)
	case []any:
		overrides = v
	default:
		return nil
	}

	var out []model.Reminder
	for _, el := range overrides {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		r := model.Reminder{Method: firstString(m, []string{"method"})}
		if mins, ok := toInt(m["minutes"]); ok {
			r.Minutes = mins
		} else if mins, ok := toInt(m["minutes_before"]); ok {
			r.Minutes = mins
		}
		if r.Method != "" || r.Minutes != 0 {
			out = append(out, r)
		}
	}
	return out
}

// stringify renders scalar JSON values as the free-form strings the data
// model uses. Numbers keep their shortest decimal form ("2015", "57.5").
func stringify(v any) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}
