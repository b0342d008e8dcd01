package extract

import "github.com/xeipuuv/gojsonschema"

// Shape checks are deliberately structural, not semantic: they catch a model
// returning the wrong container kind, not a wrong value. Field-level slack
// (absent keys, alias keys, missing sub-objects) is handled by the
// permissive mapping in extract.go.

const companyTableSchemaJSON = `{
	"type": "array",
	"items": {"type": "object"}
}`

const calendarEventSchemaJSON = `{
	"type": "object",
	"properties": {
		"start": {"type": "object"},
		"end": {"type": "object"},
		"attendees": {"type": "array"},
		"reminders": {"type": ["object", "array"]}
	}
}`

const callAnswersSchemaJSON = `{
	"type": "object",
	"properties": {
		"answers": {"type": "array"}
	},
	"required": ["answers"]
}`

var (
	companyTableSchema  = mustSchema(companyTableSchemaJSON)
	calendarEventSchema = mustSchema(calendarEventSchemaJSON)
	callAnswersSchema   = mustSchema(callAnswersSchemaJSON)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return schema
}

// checkSchema validates a parsed document and converts the first violation
// into a SchemaMismatch error carrying the repaired text.
func checkSchema(schema *gojsonschema.Schema, doc any, repaired string) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &Error{Kind: KindSchemaMismatch, Raw: repaired, Detail: err.Error()}
	}
	if !result.Valid() {
		detail := ""
		if errs := result.Errors(); len(errs) > 0 {
			detail = errs[0].String()
		}
		return &Error{Kind: KindSchemaMismatch, Raw: repaired, Detail: detail}
	}
	return nil
}
