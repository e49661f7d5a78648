package extract

import (
	"fmt"
	"strings"

	"github.com/aselo_helpline/backend/internal/vocab"
)

const chatSystemPrompt = `You are a counselor assistant for a child helpline. Respond with warmth and patience.
Keep replies short and in plain language a child can follow.
Gently gather the information a counselor needs (name, age, where the child lives, who they live with, what happened) without pressuring.
If the child is in immediate danger, encourage them to contact emergency services or a trusted adult right away.`

const summarySystemPrompt = `You summarise child helpline conversations for case workers.
Write a concise plain-text summary of the call: who contacted the line, the concerns raised, any risks, and what was agreed.
Do not invent details that are not in the conversation. Do not use markdown.`

const summaryRequest = "Summarise this conversation:\n\n"

const metadataSystemPrompt = `You read child helpline conversations and report post-call details.
Return ONLY a JSON object with these keys, using null for anything the conversation does not state:
{
  "locationOfIssue": string or null,
  "actionTaken": string or null,
  "outcomeOfContact": string or null,
  "howDidYouKnowAboutOurLine": string or null,
  "okForCaseWorkerToCall": "Yes" | "No" | "Unknown" | null,
  "didTheChildFeelWeSolvedTheirProblem": "Yes" | "No" | "Unknown" | null,
  "wouldTheChildRecommendUsToAFriend": "Yes" | "No" | "Unknown" | null,
  "didYouDiscussRightsWithTheChild": "Yes" | "No" | "Unknown" | null
}`

const metadataRequest = "Report the post-call details of this conversation:\n\n"

const extractionRequest = "Extract the case record from this conversation:\n\n"

// extractionSystemPrompt carries every vocabulary inline; the model has no
// other source for valid values.
var extractionSystemPrompt = buildExtractionPrompt()

func buildExtractionPrompt() string {
	var b strings.Builder

	b.WriteString("You fill in the case-intake form of a child helpline from a conversation transcript.\n")
	b.WriteString("Return ONLY one JSON object with exactly three top-level keys: \"child\", \"category\" and \"summary\".\n")
	b.WriteString("Use null for any value the transcript does not state. Do not invent, guess or infer values.\n")
	b.WriteString("Enum fields must use one of the listed values spelled exactly as shown, or null.\n\n")

	b.WriteString("\"child\" object:\n")
	b.WriteString("  firstName, lastName, streetAddress, phone1, phone2, nationality, schoolName, gradeLevel: string or null\n")
	fmt.Fprintf(&b, "  gender: one of %s\n", quoteList(vocab.Genders.Values()))
	b.WriteString("  age: two-digit years 00-25 (e.g. \"07\", \"14\"), or \"Unborn\", \">25\", \"Unknown\"\n")
	fmt.Fprintf(&b, "  parish: one of %s\n", quoteList(vocab.Parishes.Values()))
	fmt.Fprintf(&b, "  livingSituation: one of %s\n", quoteList(vocab.LivingSituations.Values()))
	fmt.Fprintf(&b, "  vulnerableGroups: list drawn from %s\n", quoteList(vocab.VulnerableGroups.Values()))
	fmt.Fprintf(&b, "  region: one of %s\n\n", quoteList(vocab.Regions.Values()))

	b.WriteString("\"category\" object: every key below maps to a list of the matching issues (empty list when none apply):\n")
	for _, key := range vocab.CategoryKeys() {
		labels, _ := vocab.IssueLabels(key)
		fmt.Fprintf(&b, "  %s: %s\n", key, quoteList(labels.Values()))
	}

	b.WriteString("\n\"summary\" object:\n")
	b.WriteString("  callSummary: concise summary of the call (required)\n")
	b.WriteString("  locationOfIssue, actionTaken, outcomeOfContact, howDidYouKnowAboutOurLine: string or null\n")
	fmt.Fprintf(&b, "  okForCaseWorkerToCall, didTheChildFeelWeSolvedTheirProblem, wouldTheChildRecommendUsToAFriend, didYouDiscussRightsWithTheChild: one of %s or null\n", quoteList(vocab.YesNo.Values()))
	b.WriteString("  keepConfidential: true or false (default true)\n")
	b.WriteString("Leave summaryAccuracy, summaryFeedback and otherLocation out; the counselor completes them.\n")

	return b.String()
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
