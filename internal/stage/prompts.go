package stage

// Prompt construction is deterministic: fixed templates, fixed field order,
// filled with fmt.Sprintf. The literal formatting instructions matter —
// they are what keeps model output close enough to JSON for the repair
// pipeline to finish the job.

const knowledgeBasePrompt = `Write a short knowledge base describing the company %s (%s) for an AI agent that will place outreach calls on its behalf. Cover what the company sells, who its target customers are, and its key differentiators. Write plain prose, no headings, no lists.`

const discoveryPromptSuffix = ` Return strictly the list in one sentence format.`

const enrichmentPrompt = `%s. Return me the LinkedIn link (only link), company size (only approximate number), funding (only dollar amount), year founded (only year), and head office location (in city/state/country format). Return me contact of their sales dept (email and phone). Return in JSON format for each company and nothing else besides the JSON text.`

const callTask = `You are calling from %s to schedule a follow-up conversation with a sales specialist.
Use the following knowledge base for reference: %s
Goal: Collect contact name, email address, meeting time, and buying intent (high, low, medium).
Also, provide a summary of the call.`

const analysisGoal = `Extract the contact name, email address, meeting time, buying intent, and provide a summary of the call.`

// analysisQuestions are (question, expected-type) pairs sent to the call
// analyzer. Order is part of the contract: answers come back in the same
// order and the last answer is the call summary.
var analysisQuestions = [][2]string{
	{"What is the contact name?", "string"},
	{"What is the email address?", "string"},
	{"What is the meeting time?", "string"},
	{"What is the buying intent?", "string"},
	{"Provide a summary of the call.", "string"},
}

const eventExtractionPrompt = `Extract event details from the following summary and generate a JSON in the exact format as specified below, return nothing but the JSON.

Summary: %s

JSON Format:
{
  "summary": "Event Title",
  "location": "Event Location",
  "description": "Event Description",
  "start": {
    "dateTime": "YYYY-MM-DDTHH:MM:SS-07:00",
    "timeZone": "America/Los_Angeles"
  },
  "end": {
    "dateTime": "YYYY-MM-DDTHH:MM:SS-07:00",
    "timeZone": "America/Los_Angeles"
  },
  "attendees": [
    {
      "email": "attendee@example.com"
    }
  ],
  "reminders": {
    "useDefault": false,
    "overrides": [
      {
        "method": "email",
        "minutes": 1440
      },
      {
        "method": "popup",
        "minutes": 10
      }
    ]
  }
}
Ensure again you are returning only the JSON and nothing else.`
