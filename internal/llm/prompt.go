package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/majordomo/internal/service"
)

const classifySystem = `You are the intent classifier for a personal assistant bot that manages expenses, subscriptions, and todo items. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }.`

// actionSchema is the closed set of recognized actions and their fields,
// shown to the model verbatim.
const actionSchema = `Recognized actions and their fields:
- record_expense: amount (number as string), category, note, date, currency
- record_income: amount, category, note, date, currency
- create_subscription: name, cost, cycle (monthly|yearly|custom:<days>), date (first charge)
- query_subscriptions: status (active|cancelled, optional)
- cancel_subscription: name
- create_todo: title, priority (high|medium|low), due (date or datetime)
- query_todos: status (pending|in_progress|done), priority, due (all optional)
- update_todo: title (of the existing item), status, priority, due (set only what changes)
- query_report: no fields (user asks for their daily summary)
- unknown: anything that fits none of the above

Dates may be relative ("today", "tomorrow", "next monday") or absolute
(YYYY-MM-DD, optionally with HH:MM). Copy them as the user said them; do
not resolve relative dates yourself. Amounts are plain numbers without
currency symbols. The user may write in any language; field values stay in
the user's language, field names and the action value stay exactly as
listed.`

// BuildClassifyPrompt encodes one turn for the completion capability.
func BuildClassifyPrompt(req service.ClassifyRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current date: %s\nCurrent time: %s\nWeekday: %s\n\n",
		req.AsOf.Format("2006-01-02"),
		req.AsOf.Format("15:04"),
		req.AsOf.Weekday())

	b.WriteString(actionSchema)
	b.WriteString("\n\n")

	if len(req.RecentTurns) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range req.RecentTurns {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}

	if req.PendingQuestion != "" && req.PendingDraft != nil {
		draft, _ := json.Marshal(map[string]any{
			"action": string(req.PendingDraft.Type),
			"fields": req.PendingDraft.Fields,
		})
		fmt.Fprintf(&b, "The assistant just asked the user: %q\n", req.PendingQuestion)
		fmt.Fprintf(&b, "It was collecting this action: %s\n", draft)
		b.WriteString("If the user's message answers that question, return the SAME action with the missing field filled in. If the message is an unrelated new command, classify it fresh and ignore the pending question.\n\n")
	}

	b.WriteString(`Respond with JSON of the shape:
{"action": "<one of the listed actions>", "confidence": 0.0-1.0, "fields": {...}}

`)
	fmt.Fprintf(&b, "User message: %s", req.Utterance)

	return b.String()
}
