package slides

import (
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/copywriter"
	gslides "google.golang.org/api/slides/v1"
)

// Object IDs of the briefing slide.
const (
	BriefingSlideID = "briefing_slide_01"
	briefingTitleID = "briefing_title_box"
	briefingBodyID  = "briefing_body_box"
)

const notAvailable = "N/A"

// BuildRequests returns the batch update for one deck: a replaceAllText per
// placeholder followed by the briefing slide when enabled.
func BuildRequests(t Template, c *copywriter.Content) []*gslides.Request {
	reqs := make([]*gslides.Request, 0, len(t.Placeholders)+7)
	for _, p := range t.Placeholders {
		reqs = append(reqs, &gslides.Request{
			ReplaceAllText: &gslides.ReplaceAllTextRequest{
				ContainsText: &gslides.SubstringMatchCriteria{Text: p.Placeholder, MatchCase: true},
				ReplaceText:  p.Value(c),
				// An empty replacement must still be sent to clear the placeholder.
				ForceSendFields: []string{"ReplaceText"},
			},
		})
	}
	if t.Briefing.Enabled {
		reqs = append(reqs, briefingRequests(t.Briefing, c)...)
	}
	return reqs
}

func briefingRequests(b Briefing, c *copywriter.Content) []*gslides.Request {
	return []*gslides.Request{
		{CreateSlide: &gslides.CreateSlideRequest{
			ObjectId:             BriefingSlideID,
			InsertionIndex:       0,
			SlideLayoutReference: &gslides.LayoutReference{PredefinedLayout: "BLANK"},
			ForceSendFields:      []string{"InsertionIndex"},
		}},
		textBox(briefingTitleID, 40, 20),
		{InsertText: &gslides.InsertTextRequest{ObjectId: briefingTitleID, Text: BriefingTitle(b, c)}},
		{UpdateTextStyle: &gslides.UpdateTextStyleRequest{
			ObjectId:  briefingTitleID,
			TextRange: &gslides.Range{Type: "ALL"},
			Style: &gslides.TextStyle{
				FontSize:        pt(14),
				Bold:            true,
				ForegroundColor: black(),
			},
			Fields: "fontSize,bold,foregroundColor",
		}},
		textBox(briefingBodyID, 350, 60),
		{InsertText: &gslides.InsertTextRequest{ObjectId: briefingBodyID, Text: BriefingBody(c)}},
		{UpdateTextStyle: &gslides.UpdateTextStyleRequest{
			ObjectId:  briefingBodyID,
			TextRange: &gslides.Range{Type: "ALL"},
			Style: &gslides.TextStyle{
				FontSize:        pt(9),
				FontFamily:      "Roboto",
				ForegroundColor: black(),
			},
			Fields: "fontSize,fontFamily,foregroundColor",
		}},
	}
}

// BriefingTitle renders the upper-cased briefing header.
func BriefingTitle(b Briefing, c *copywriter.Content) string {
	title := slot(c, "OUR_COMPANY_TITLE")
	if strings.TrimSpace(title) == "" {
		title = b.FallbackTitle
	}
	return strings.ToUpper(fmt.Sprintf("%s (%s)", title, orNA(slot(c, "BRIEF_CONTEXT_WHO"))))
}

// BriefingBody renders the battle card: quick context, then the call script.
func BriefingBody(c *copywriter.Content) string {
	v := func(key string) string { return orNA(slot(c, key)) }
	var sb strings.Builder
	sb.WriteString("🧠 PARTE A: CONTEXTO RÁPIDO\n")
	fmt.Fprintf(&sb, "• Quién es: %s\n", v("BRIEF_CONTEXT_WHO"))
	fmt.Fprintf(&sb, "• Dolor: %s\n", v("BRIEF_CONTEXT_PAIN"))
	fmt.Fprintf(&sb, "• Estado: %s\n", v("BRIEF_CONTEXT_STATUS"))
	fmt.Fprintf(&sb, "• Gancho: %s\n\n", v("BRIEF_CONTEXT_HOOK"))
	sb.WriteString("📝 PARTE B: GUION ESCANEABLE\n")
	fmt.Fprintf(&sb, "%s\n\n", v("BRIEF_SCRIPT_ICEBREAKER"))
	sb.WriteString("❓ Diagnóstico:\n")
	fmt.Fprintf(&sb, "- %s\n", v("BRIEF_SCRIPT_DIAGNOSIS_1"))
	fmt.Fprintf(&sb, "- %s\n", v("BRIEF_SCRIPT_DIAGNOSIS_2"))
	fmt.Fprintf(&sb, "- %s\n\n", v("BRIEF_SCRIPT_DIAGNOSIS_3"))
	fmt.Fprintf(&sb, "💡 Solución: %s\n", v("BRIEF_SCRIPT_SOLUTION"))
	fmt.Fprintf(&sb, "🤝 Cierre: %s", v("BRIEF_SCRIPT_CLOSING"))
	return sb.String()
}

func textBox(id string, height, translateY float64) *gslides.Request {
	return &gslides.Request{CreateShape: &gslides.CreateShapeRequest{
		ObjectId:  id,
		ShapeType: "TEXT_BOX",
		ElementProperties: &gslides.PageElementProperties{
			PageObjectId: BriefingSlideID,
			Size:         &gslides.Size{Height: pt(height), Width: pt(650)},
			Transform: &gslides.AffineTransform{
				ScaleX:     1,
				ScaleY:     1,
				TranslateX: 30,
				TranslateY: translateY,
				Unit:       "PT",
			},
		},
	}}
}

func pt(v float64) *gslides.Dimension {
	return &gslides.Dimension{Magnitude: v, Unit: "PT"}
}

func black() *gslides.OptionalColor {
	return &gslides.OptionalColor{OpaqueColor: &gslides.OpaqueColor{
		RgbColor: &gslides.RgbColor{ForceSendFields: []string{"Red", "Green", "Blue"}},
	}}
}

func slot(c *copywriter.Content, key string) string {
	v, _ := c.Slot(key)
	return v
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
