package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const record = `{
	"basic_info": {
		"fullname": "Jane Doe",
		"about": "Book a call at https://calendly.com/jane or visit www.janeconsulting.com"
	},
	"contact": {"twitter": "https://twitter.com/jane", "site": "https://blog.jane.dev"}
}`

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"first candidate", nil, "https://calendly.com/jane\n"},
		{"block", []string{"-block", "calendly.com, "}, "https://www.janeconsulting.com\n"},
		{"all", []string{"-all"}, "https://calendly.com/jane\tabout\nhttps://www.janeconsulting.com\tabout\nhttps://blog.jane.dev\tsite\n"},
		{"json", []string{"-json", "-block", "calendly.com"}, "{\n  \"website\": \"https://www.janeconsulting.com\"\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			if err := run(tt.args, strings.NewReader(record), &out, &errOut); err != nil {
				t.Fatalf("run(%q) error: %v (stderr %q)", tt.args, err, errOut.String())
			}
			if out.String() != tt.want {
				t.Errorf("run(%q) = %q, want %q", tt.args, out.String(), tt.want)
			}
		})
	}
}

func TestRunVerboseBlacklist(t *testing.T) {
	blacklistLine := func(stderr string) string {
		for line := range strings.SplitSeq(stderr, "\n") {
			if strings.Contains(line, "msg=blacklist") {
				return line
			}
		}
		return ""
	}

	var out, errOut bytes.Buffer
	if err := run([]string{"-v", "-block", "calendly.com"}, strings.NewReader(record), &out, &errOut); err != nil {
		t.Fatalf("run error: %v", err)
	}
	line := blacklistLine(errOut.String())
	for _, host := range []string{"calendly.com", "linkedin.com", "gmail.com"} {
		if !strings.Contains(line, host) {
			t.Errorf("blacklist log %q missing %q", line, host)
		}
	}

	errOut.Reset()
	if err := run(nil, strings.NewReader(record), &out, &errOut); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if line := blacklistLine(errOut.String()); line != "" {
		t.Errorf("blacklist logged without -v: %q", line)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.json")
	if err := os.WriteFile(path, []byte(`{"links": ["https://linkedin.com/in/x"]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run([]string{path}, strings.NewReader(""), &out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out.String() != "" {
		t.Errorf("run = %q, want no output when every candidate is blocked", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := run(nil, strings.NewReader("not json"), &out, &errOut); err == nil {
		t.Error("run(invalid JSON) error = nil")
	}
	if err := run(nil, strings.NewReader(`"just a string"`), &out, &errOut); err == nil {
		t.Error("run(scalar record) error = nil")
	}
	if err := run([]string{filepath.Join(t.TempDir(), "missing.json")}, strings.NewReader(""), &out, &errOut); err == nil {
		t.Error("run(missing file) error = nil")
	}
	if err := run([]string{"-h"}, strings.NewReader(""), &out, &errOut); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run(-h) error = %v, want flag.ErrHelp", err)
	}
}
