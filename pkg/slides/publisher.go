package slides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/copywriter"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gslides "google.golang.org/api/slides/v1"
)

const folderMimeType = "application/vnd.google-apps.folder"

// ClientFunc returns an authorized HTTP client for the Google APIs.
type ClientFunc func(ctx context.Context) (*http.Client, error)

// Publisher creates one deck per lead.
type Publisher struct {
	client   ClientFunc
	logger   *slog.Logger
	template Template
	apiOpts  []option.ClientOption
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

// WithAPIOptions appends client options to both the Drive and Slides services.
func WithAPIOptions(opts ...option.ClientOption) PublisherOption {
	return func(p *Publisher) { p.apiOpts = append(p.apiOpts, opts...) }
}

// NewPublisher returns a Publisher for t. client is called once per deck so
// that a token obtained after startup is picked up.
func NewPublisher(t Template, client ClientFunc, opts ...PublisherOption) *Publisher {
	p := &Publisher{template: t, client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Template returns the deck template in use.
func (p *Publisher) Template() Template { return p.template }

// PresentationURL returns the edit URL of a presentation.
func PresentationURL(id string) string {
	return "https://docs.google.com/presentation/d/" + id + "/edit"
}

// Create copies the template into the destination folder, fills it with c and
// returns the URL of the new presentation.
func (p *Publisher) Create(ctx context.Context, title string, c *copywriter.Content) (string, error) {
	if p.client == nil {
		return "", errors.New("no Google client configured")
	}
	hc, err := p.client(ctx)
	if err != nil {
		return "", err
	}
	opts := append([]option.ClientOption{option.WithHTTPClient(hc)}, p.apiOpts...)

	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("drive service: %w", err)
	}
	slidesSvc, err := gslides.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("slides service: %w", err)
	}

	folderID, err := p.ensureFolder(ctx, driveSvc)
	if err != nil {
		return "", err
	}

	file := &drive.File{Name: title}
	if folderID != "" {
		file.Parents = []string{folderID}
	}
	copied, err := driveSvc.Files.Copy(p.template.TemplateID, file).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("copy template %s: %w", p.template.TemplateID, err)
	}
	p.logger.InfoContext(ctx, "template copied", "presentation_id", copied.Id, "folder_id", folderID)

	reqs := BuildRequests(p.template, c)
	if len(reqs) > 0 {
		_, err = slidesSvc.Presentations.BatchUpdate(copied.Id, &gslides.BatchUpdatePresentationRequest{
			Requests: reqs,
		}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update presentation %s: %w", copied.Id, err)
		}
	}
	p.logger.InfoContext(ctx, "presentation updated", "presentation_id", copied.Id, "requests", len(reqs))
	return PresentationURL(copied.Id), nil
}

// ensureFolder returns the ID of the destination folder, creating it when missing.
// An empty folder name keeps the copy next to the template.
func (p *Publisher) ensureFolder(ctx context.Context, svc *drive.Service) (string, error) {
	name := p.template.Folder
	if name == "" {
		return "", nil
	}
	q := fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false", folderMimeType, escapeQuery(name))
	list, err := svc.Files.List().Q(q).Fields("files(id, name)").Spaces("drive").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("find folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	p.logger.InfoContext(ctx, "creating folder", "folder", name)
	f, err := svc.Files.Create(&drive.File{Name: name, MimeType: folderMimeType}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return f.Id, nil
}

// escapeQuery escapes a literal for a Drive search query.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
