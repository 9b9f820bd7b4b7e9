package copywriter

import (
	"fmt"
	"strings"
)

// slotHint tells the model what to write in a slot and how long it may be.
// Overflowing a text box breaks the template layout, so limits are strict.
type slotHint struct {
	key   string
	hint  string
	words int
}

var slotHints = []slotHint{
	{"OUR_COMPANY_TITLE", "short punchy title about the lead's company", 5},
	{"OUR_COMPANY_PARAGRAPH", "what the company does", 15},
	{"AWESOME_WORDS_QUOTE", "a line about the lead's success or vision", 12},
	{"AWESOME_WORDS_AUTHOR", "the lead's name", 4},
	{"ASPIRATIONS_NOW", "current state with its problem", 6},
	{"ASPIRATIONS_FUTURE", "desired state", 6},
	{"REQUIREMENTS_INTELLIGENCE", "do they have clear data or fly blind?", 8},
	{"REQUIREMENTS_ADAPTABILITY", "does the current process scale or collapse?", 8},
	{"REQUIREMENTS_SKILLS", "does the team lose time on admin work?", 8},
	{"REQUIREMENTS_FOCUS", "where do they lose the most money today?", 8},
	{"PROJECT_GOAL_1", "direct question that surfaces the pain: money left on the table", 10},
	{"PROJECT_GOAL_2", "direct question: what happens if this is not fixed in 6 months", 10},
	{"PROJECT_GOAL_3", "direct question: why fix it now", 10},
	{"PROJECT_STAGE_1", "phase 1 of the pilot, e.g. express audit", 4},
	{"PROJECT_STAGE_2", "phase 2, e.g. build the pilot demo", 4},
	{"PROJECT_STAGE_3", "phase 3, e.g. validation and rollout", 4},
	{"TIMELINE_DAY_1", "call agenda 0-5 min", 5},
	{"TIMELINE_DAY_2", "call agenda 5-10 min", 5},
	{"TIMELINE_DAY_3", "call agenda 10-20 min", 5},
	{"TIMELINE_DAY_4", "call agenda 20-30 min", 5},
	{"TEAM_MEMBER_1_NAME", "the lead's name", 4},
	{"TEAM_MEMBER_1_DESC", "the lead's role", 3},
	{"TEAM_MEMBER_2_NAME", "the presenter's name", 4},
	{"TEAM_MEMBER_2_DESC", "the presenter's role", 3},
	{"THANKS_EMAIL", "presenter email", 1},
	{"THANKS_PHONE", "presenter phone", 4},
	{"THANKS_WEBSITE", "presenter website", 1},
	{"BRIEF_CONTEXT_WHO", "who the lead is", 20},
	{"BRIEF_CONTEXT_PAIN", "their main pain", 20},
	{"BRIEF_CONTEXT_STATUS", "their current state or systems", 20},
	{"BRIEF_CONTEXT_HOOK", "your hook and value proposition", 20},
	{"BRIEF_SCRIPT_ICEBREAKER", "rapport line about their context", 30},
	{"BRIEF_SCRIPT_DIAGNOSIS_1", "key diagnosis question 1", 20},
	{"BRIEF_SCRIPT_DIAGNOSIS_2", "key diagnosis question 2", 20},
	{"BRIEF_SCRIPT_DIAGNOSIS_3", "key diagnosis question 3", 20},
	{"BRIEF_SCRIPT_SOLUTION", "short pitch of the AI solution", 40},
	{"BRIEF_SCRIPT_CLOSING", "closing: propose a low-cost pilot", 30},
}

// languageNames covers the codes accepted by COPY_LANGUAGE; anything else is used verbatim.
var languageNames = map[string]string{
	"es": "Spanish",
	"en": "English",
	"pt": "Portuguese",
	"fr": "French",
	"de": "German",
	"it": "Italian",
}

func systemPrompt(lang string) string {
	name := languageNames[strings.ToLower(lang)]
	if name == "" {
		name = lang
	}
	return "You are an elite sales coach for a young AI consultant. The goal of the call is not a large " +
		"project today but to sell the idea of a LOW-COST PILOT DEMO.\n" +
		"Write a deck that works as a script for the consultant: context and quick rapport, the pain " +
		"(uncomfortable questions that show why they do not sell more), the AI automation solution, and " +
		"the close proposing a risk-free pilot.\n" +
		"Every slot has a strict maximum word count. Exceeding it breaks the slide layout. No filler.\n" +
		"Write every value in " + name + ". Output valid JSON only."
}

func userPrompt(in Input) string {
	site := in.Website
	if site == "" {
		site = "N/A"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "LEAD: %s\n", in.ProfileText)
	fmt.Fprintf(&b, "PREVIOUS CONVERSATION: %s\n", in.Conversation)
	fmt.Fprintf(&b, "WEBSITE: %s\n\n", site)
	b.WriteString("Return one JSON object with exactly these keys (max words in brackets):\n{\n")
	for _, h := range slotHints {
		fmt.Fprintf(&b, "  %q: %q,\n", h.key, fmt.Sprintf("%s [%d]", h.hint, h.words))
	}
	b.WriteString(`  "AI_NUTSHELL_LIST": ["three concrete things the pilot will demonstrate [6 each]", "...", "..."]` + "\n}\n")
	return b.String()
}
