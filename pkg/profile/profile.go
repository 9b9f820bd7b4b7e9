// Package profile defines the lead profile types shared by the scrapers and the deck pipeline.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
	"github.com/tidwall/gjson"
)

// Common errors returned by scraper packages.
var (
	ErrAuthRequired    = errors.New("authentication required")
	ErrNoCookies       = errors.New("no cookies available")
	ErrProfileNotFound = errors.New("no profile data found")
	ErrRateLimited     = errors.New("rate limited")
)

// Experience is one position held by the lead.
type Experience struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	Duration  string `json:"duration"`
	IsCurrent bool   `json:"isCurrent"`
}

// Education is one school entry.
type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
}

// Profile is the structured view of a scraped LinkedIn profile.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Profile struct {
	FullName       string       `json:"fullName"`
	Headline       string       `json:"headline"`
	About          string       `json:"about"`
	Location       string       `json:"location"`
	ProfileURL     string       `json:"profileUrl"`
	CurrentCompany string       `json:"currentCompany"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Languages      []string     `json:"languages,omitempty"`
}

// Record is what a scraper returns: the structured profile plus the raw
// scraped document, which is kept for the website heuristic.
type Record struct {
	Raw     website.Node
	Profile Profile
}

// Lead is a processed record, ready for copy generation.
type Lead struct {
	Text    string  `json:"-"`
	Website string  `json:"website"`
	Profile Profile `json:"profile"`
}

// Process renders the profile text and picks the lead's website from the raw record.
func Process(rec *Record, ex *website.Extractor) (*Lead, error) {
	if rec == nil {
		return nil, ErrProfileNotFound
	}
	if ex == nil {
		ex = website.New()
	}
	site, err := ex.Extract(rec.Raw)
	if err != nil {
		return nil, fmt.Errorf("select website: %w", err)
	}
	return &Lead{Profile: rec.Profile, Text: rec.Profile.Text(), Website: site}, nil
}

// Text renders the profile as the plain-text block handed to the language model.
func (p *Profile) Text() string {
	var b strings.Builder
	b.WriteString("LEAD INFORMATION\n")
	fmt.Fprintf(&b, "Name: %s\n", p.FullName)
	fmt.Fprintf(&b, "Headline: %s\n", p.Headline)
	fmt.Fprintf(&b, "Location: %s\n", p.Location)
	fmt.Fprintf(&b, "Current Company: %s\n", p.CurrentCompany)
	fmt.Fprintf(&b, "LinkedIn URL: %s\n", p.ProfileURL)
	fmt.Fprintf(&b, "About:\n%s\n\n", p.About)

	if len(p.Experience) > 0 {
		b.WriteString("Experience:\n")
		for i, e := range p.Experience {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "- %s @ %s (%s)", e.Title, e.Company, e.Duration)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// FromApifyItem maps one dataset item of the LinkedIn profile actor.
// Missing fields become empty values.
func FromApifyItem(item []byte) (Profile, error) {
	if !gjson.ValidBytes(item) {
		return Profile{}, errors.New("invalid profile item JSON")
	}
	doc := gjson.ParseBytes(item)
	if !doc.IsObject() {
		return Profile{}, errors.New("profile item is not an object")
	}

	basic := doc.Get("basic_info")
	p := Profile{
		FullName:       basic.Get("fullname").String(),
		Headline:       basic.Get("headline").String(),
		About:          basic.Get("about").String(),
		Location:       basic.Get("location.full").String(),
		ProfileURL:     basic.Get("profile_url").String(),
		CurrentCompany: basic.Get("current_company").String(),
	}

	for _, e := range doc.Get("experience").Array() {
		p.Experience = append(p.Experience, Experience{
			Title:     e.Get("title").String(),
			Company:   e.Get("company").String(),
			Duration:  e.Get("duration").String(),
			IsCurrent: e.Get("is_current").Bool(),
		})
	}
	for _, e := range doc.Get("education").Array() {
		p.Education = append(p.Education, Education{
			School:       e.Get("school").String(),
			Degree:       e.Get("degree").String(),
			FieldOfStudy: e.Get("field_of_study").String(),
		})
	}
	for _, l := range doc.Get("languages").Array() {
		// Languages are either plain strings or {"language": "...", "proficiency": "..."}.
		name := l.String()
		if l.IsObject() {
			name = l.Get("language").String()
		}
		if name != "" {
			p.Languages = append(p.Languages, name)
		}
	}
	return p, nil
}
