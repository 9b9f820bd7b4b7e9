package copywriter

import (
	"reflect"
	"strings"
)

// Content holds the copy for every slot of the deck template plus the
// internal briefing slide. Field tags are the slot keys the model fills.
//
//nolint:govet // fieldalignment: grouped by slide
type Content struct {
	OurCompanyTitle     string `json:"OUR_COMPANY_TITLE"`
	OurCompanyParagraph string `json:"OUR_COMPANY_PARAGRAPH"`

	AwesomeWordsQuote  string `json:"AWESOME_WORDS_QUOTE"`
	AwesomeWordsAuthor string `json:"AWESOME_WORDS_AUTHOR"`

	AspirationsNow    string `json:"ASPIRATIONS_NOW"`
	AspirationsFuture string `json:"ASPIRATIONS_FUTURE"`

	RequirementsIntelligence string `json:"REQUIREMENTS_INTELLIGENCE"`
	RequirementsAdaptability string `json:"REQUIREMENTS_ADAPTABILITY"`
	RequirementsSkills       string `json:"REQUIREMENTS_SKILLS"`
	RequirementsFocus        string `json:"REQUIREMENTS_FOCUS"`

	ProjectGoal1 string `json:"PROJECT_GOAL_1"`
	ProjectGoal2 string `json:"PROJECT_GOAL_2"`
	ProjectGoal3 string `json:"PROJECT_GOAL_3"`

	AINutshellList []string `json:"AI_NUTSHELL_LIST"`

	ProjectStage1 string `json:"PROJECT_STAGE_1"`
	ProjectStage2 string `json:"PROJECT_STAGE_2"`
	ProjectStage3 string `json:"PROJECT_STAGE_3"`

	TimelineDay1 string `json:"TIMELINE_DAY_1"`
	TimelineDay2 string `json:"TIMELINE_DAY_2"`
	TimelineDay3 string `json:"TIMELINE_DAY_3"`
	TimelineDay4 string `json:"TIMELINE_DAY_4"`

	TeamMember1Name string `json:"TEAM_MEMBER_1_NAME"`
	TeamMember1Desc string `json:"TEAM_MEMBER_1_DESC"`
	TeamMember2Name string `json:"TEAM_MEMBER_2_NAME"`
	TeamMember2Desc string `json:"TEAM_MEMBER_2_DESC"`

	ThanksEmail   string `json:"THANKS_EMAIL"`
	ThanksPhone   string `json:"THANKS_PHONE"`
	ThanksWebsite string `json:"THANKS_WEBSITE"`

	BriefContextWho    string `json:"BRIEF_CONTEXT_WHO"`
	BriefContextPain   string `json:"BRIEF_CONTEXT_PAIN"`
	BriefContextStatus string `json:"BRIEF_CONTEXT_STATUS"`
	BriefContextHook   string `json:"BRIEF_CONTEXT_HOOK"`

	BriefScriptIcebreaker string `json:"BRIEF_SCRIPT_ICEBREAKER"`
	BriefScriptDiagnosis1 string `json:"BRIEF_SCRIPT_DIAGNOSIS_1"`
	BriefScriptDiagnosis2 string `json:"BRIEF_SCRIPT_DIAGNOSIS_2"`
	BriefScriptDiagnosis3 string `json:"BRIEF_SCRIPT_DIAGNOSIS_3"`
	BriefScriptSolution   string `json:"BRIEF_SCRIPT_SOLUTION"`
	BriefScriptClosing    string `json:"BRIEF_SCRIPT_CLOSING"`
}

// slotIndex maps slot keys to string field indexes of Content.
var slotIndex = func() map[string]int {
	t := reflect.TypeOf(Content{})
	idx := make(map[string]int, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Type.Kind() != reflect.String {
			continue
		}
		idx[strings.Split(f.Tag.Get("json"), ",")[0]] = i
	}
	return idx
}()

// Slot returns the value of the string slot named key, and whether such a slot exists.
func (c *Content) Slot(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	i, ok := slotIndex[key]
	if !ok {
		return "", false
	}
	return reflect.ValueOf(c).Elem().Field(i).String(), true
}

// SlotKeys returns every string slot key.
func SlotKeys() []string {
	keys := make([]string, 0, len(slotIndex))
	t := reflect.TypeOf(Content{})
	for i := range t.NumField() {
		if t.Field(i).Type.Kind() == reflect.String {
			keys = append(keys, strings.Split(t.Field(i).Tag.Get("json"), ",")[0])
		}
	}
	return keys
}

// Nutshell returns the i-th AI_NUTSHELL_LIST entry, or "" when out of range.
func (c *Content) Nutshell(i int) string {
	if c == nil || i < 0 || i >= len(c.AINutshellList) {
		return ""
	}
	return c.AINutshellList[i]
}

// Seller describes the person presenting the deck. Non-empty fields
// overwrite the team and contact slots after generation.
type Seller struct {
	Name    string
	Role    string
	Email   string
	Phone   string
	Website string
}

func (s Seller) apply(c *Content) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.TeamMember2Name, s.Name)
	set(&c.TeamMember2Desc, s.Role)
	set(&c.ThanksEmail, s.Email)
	set(&c.ThanksPhone, s.Phone)
	set(&c.ThanksWebsite, s.Website)
}
