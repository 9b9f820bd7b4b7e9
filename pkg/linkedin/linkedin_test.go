package linkedin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/httpcache"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/profile"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.linkedin.com/in/johndoe", true},
		{"https://linkedin.com/in/johndoe/", true},
		{"linkedin.com/in/johndoe", true},
		{"https://LINKEDIN.COM/IN/johndoe", true},
		{"https://linkedin.com/company/acme", false},
		{"https://example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Match(tt.url); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://linkedin.com/in/johndoe", "johndoe"},
		{"https://linkedin.com/in/johndoe/", "johndoe"},
		{"https://www.linkedin.com/in/john-doe-123?trk=feed", "john-doe-123"},
		{"https://www.linkedin.com/in/thomas-str%C3%B6mberg-9977261/", "thomas-strömberg-9977261"},
		{"https://example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := extractPublicID(tt.url); got != tt.want {
				t.Errorf("extractPublicID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

const profileView = `{
	"profile": {
		"firstName": "Jane",
		"lastName": "Doe",
		"headline": "Founder at Acme",
		"summary": "We build things. https://www.acme-corp.io",
		"geoLocationName": "Madrid",
		"miniProfile": {"publicIdentifier": "janedoe"}
	},
	"positionView": {"elements": [
		{"title": "Founder", "companyName": "Acme", "timePeriod": {"startDate": {"year": 2021, "month": 3}}},
		{"title": "AE", "companyName": "Globex", "timePeriod": {"startDate": {"year": 2018}, "endDate": {"year": 2021, "month": 2}}}
	]},
	"educationView": {"elements": [
		{"schoolName": "IE University", "degreeName": "MBA", "fieldOfStudy": "Business"}
	]},
	"languageView": {"elements": [{"name": "Spanish"}, {"name": "English"}]}
}`

func TestParseProfileView(t *testing.T) {
	got, err := parseProfileView([]byte(profileView), "ignored")
	if err != nil {
		t.Fatalf("parseProfileView error: %v", err)
	}
	want := profile.Profile{
		FullName:       "Jane Doe",
		Headline:       "Founder at Acme",
		About:          "We build things. https://www.acme-corp.io",
		Location:       "Madrid",
		ProfileURL:     "https://www.linkedin.com/in/janedoe",
		CurrentCompany: "Acme",
		Experience: []profile.Experience{
			{Title: "Founder", Company: "Acme", Duration: "Mar 2021 - Present", IsCurrent: true},
			{Title: "AE", Company: "Globex", Duration: "2018 - Feb 2021"},
		},
		Education: []profile.Education{{School: "IE University", Degree: "MBA", FieldOfStudy: "Business"}},
		Languages: []string{"Spanish", "English"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseProfileView mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseProfileView([]byte(`{"other": 1}`), "x"); !errors.Is(err, profile.ErrProfileNotFound) {
		t.Errorf("parseProfileView(no profile) error = %v, want ErrProfileNotFound", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL) //nolint:errcheck // httptest URL
	httpcache.SetHostDelay(u.Host, 0)

	c, err := New(context.Background(),
		WithCookies(map[string]string{"li_at": "AQE", "JSESSIONID": `"ajax:123"`}),
		WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c
}

func TestFetchProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voyager/api/identity/profiles/janedoe/profileView" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Csrf-Token"); got != "ajax:123" {
			t.Errorf("Csrf-Token = %q, want %q", got, "ajax:123")
		}
		if got := r.Header.Get("X-Restli-Protocol-Version"); got != "2.0.0" {
			t.Errorf("X-Restli-Protocol-Version = %q", got)
		}
		w.Write([]byte(profileView)) //nolint:errcheck // test
	})

	rec, err := c.FetchProfile(context.Background(), "https://www.linkedin.com/in/janedoe/")
	if err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}
	if rec.Profile.FullName != "Jane Doe" {
		t.Errorf("FullName = %q, want %q", rec.Profile.FullName, "Jane Doe")
	}
	site, err := website.New().Extract(rec.Raw)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if site != "https://www.acme-corp.io" {
		t.Errorf("website = %q, want %q", site, "https://www.acme-corp.io")
	}
}

func TestFetchProfileErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, profile.ErrAuthRequired},
		{http.StatusForbidden, profile.ErrAuthRequired},
		{http.StatusNotFound, profile.ErrProfileNotFound},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := c.FetchProfile(context.Background(), "https://www.linkedin.com/in/janedoe")
			if !errors.Is(err, tt.want) {
				t.Errorf("FetchProfile error = %v, want %v", err, tt.want)
			}
		})
	}

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	if _, err := c.FetchProfile(context.Background(), ""); err == nil {
		t.Error("FetchProfile(\"\") should fail")
	}
	if _, err := c.FetchProfile(context.Background(), "https://example.com/about"); !errors.Is(err, profile.ErrProfileNotFound) {
		t.Errorf("FetchProfile(non-profile) error = %v, want ErrProfileNotFound", err)
	}
}

func TestNewWithoutCookies(t *testing.T) {
	t.Setenv("LINKEDIN_LI_AT", "")
	t.Setenv("LINKEDIN_JSESSIONID", "")
	t.Setenv("LINKEDIN_LIDC", "")
	t.Setenv("LINKEDIN_BCOOKIE", "")
	if _, err := New(context.Background()); !errors.Is(err, profile.ErrNoCookies) {
		t.Errorf("New() error = %v, want ErrNoCookies", err)
	}
}
