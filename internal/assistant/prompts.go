package assistant

import "text/template"

const systemPrompt = `You are an operations assistant for an early-stage startup founder.
Be concrete, concise and plain-spoken. Never invent numbers that were not provided.
Answer only with JSON matching the requested schema.`

var (
	dilutionTemplate = template.Must(template.New("dilution").Parse(
		`A founder is modelling a {{with .Label}}{{.}} {{end}}funding round.
Investment: {{printf "%.2f" .Investment}}
Pre-money valuation: {{printf "%.2f" .PreMoneyValuation}}
Post-money valuation: {{printf "%.2f" .PostMoneyValuation}}
New investor stake: {{printf "%.2f" .NewInvestorPercentage}}%

Ownership before and after the round:
{{range .Changes}}- {{.Stakeholder}}: {{printf "%.2f" .Before}}% -> {{printf "%.2f" .After}}%
{{end}}
Explain the dilution in two or three sentences, then give forward-looking advice on
the option pool, future rounds and founder control.`))

	documentTemplate = template.Must(template.New("document").Parse(
		`Answer the question using only the document below. If the document does not contain
the answer, say so.

Document: {{.DocumentName}}
---
{{.Content}}
---

Question: {{.Question}}`))

	milestoneTemplate = template.Must(template.New("milestone").Parse(
		`Write a short description (two to four sentences) for this startup milestone.
Title: {{.Title}}
{{with .Category}}Category: {{.}}
{{end}}{{with .TargetDate}}Target date: {{.}}
{{end}}{{with .Notes}}Founder notes: {{.}}
{{end}}Describe what done looks like and why it matters.`))

	wikiTemplate = template.Must(template.New("wiki").Parse(
		`Draft an internal wiki page in Markdown.
Title: {{.Title}}
{{with .Audience}}Audience: {{.}}
{{end}}{{if .Outline}}Cover these points:
{{range .Outline}}- {{.}}
{{end}}{{end}}Use headings and short paragraphs.`))

	financeTemplate = template.Must(template.New("finance").Parse(
		`Review these financials for the period {{.PeriodStart}} to {{.PeriodEnd}}.
Income: {{.Income}}
Expenses: {{.Expenses}}
Net: {{.Net}}
Average monthly burn: {{.MonthlyBurn}}
{{with .RunwayMonths}}Runway (months): {{.}}
{{end}}Expenses by category:
{{range .Categories}}- {{.Category}}: {{.Amount}}
{{end}}
Summarise the position, list the main risks and recommend next steps.`))
)

var (
	dilutionShape = Shape{Fields: []Field{
		{Name: "explanation", Type: FieldString, Description: "What the round does to existing ownership", Required: true},
		{Name: "advice", Type: FieldString, Description: "Forward-looking advice for the founder", Required: true},
	}}

	documentShape = Shape{Fields: []Field{
		{Name: "answer", Type: FieldString, Description: "Answer grounded in the document", Required: true},
	}}

	milestoneShape = Shape{Fields: []Field{
		{Name: "description", Type: FieldString, Description: "Milestone description", Required: true},
	}}

	wikiShape = Shape{Fields: []Field{
		{Name: "title", Type: FieldString, Description: "Page title", Required: true},
		{Name: "markdown", Type: FieldString, Description: "Page body in Markdown", Required: true},
	}}

	financeShape = Shape{Fields: []Field{
		{Name: "summary", Type: FieldString, Description: "Overall financial position", Required: true},
		{Name: "risks", Type: FieldStringList, Description: "Main financial risks"},
		{Name: "recommendations", Type: FieldStringList, Description: "Suggested next steps"},
	}}
)
