package oht

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/languages"
	"github.com/revenuewire/translation/internal/provider"
)

const (
	productionBaseURL = "https://www.onehourtranslation.com/api/2"
	sandboxBaseURL    = "https://sandbox.onehourtranslation.com/api/2"

	defaultTimeout = 30 * time.Second

	// DefaultNote ships with every project unless overridden: translators
	// must leave templating placeholders untouched.
	DefaultNote = "DO NOT TRANSLATE any texts enclosed with 'curly brackets {}', '%s' notations and xml/html attributes."
)

// Config captures OneHourTranslation credentials and project metadata.
type Config struct {
	PublicKey string
	SecretKey string
	Sandbox   bool

	// Note, Expertise, Tag, and CallbackURL become project metadata on
	// every submission.
	Note        string
	Expertise   string
	Tag         string
	CallbackURL string
	WordCount   int

	// BaseURL overrides the vendor endpoint, used by tests.
	BaseURL string

	HTTPClient *http.Client
}

// Validate reports missing credentials before any vendor call is attempted.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PublicKey, validation.Required),
		validation.Field(&c.SecretKey, validation.Required),
	)
}

// Client is the asynchronous OneHourTranslation adapter.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
}

var _ provider.Marketplace = (*Client)(nil)

// New constructs an OHT client, failing fast on missing credentials.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("oht: %w", err)
	}
	if cfg.Note == "" {
		cfg.Note = DefaultNote
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Sandbox {
			baseURL = sandboxBaseURL
		} else {
			baseURL = productionBaseURL
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

func (c *Client) Kind() domain.Provider { return domain.ProviderOHT }
func (c *Client) Synchronous() bool     { return false }

// Submit uploads the submission as a single XML resource, opens a vendor
// project around it, and tags the project when a tag is configured.
func (c *Client) Submit(ctx context.Context, sub provider.Submission) (*provider.Receipt, error) {
	sourceLang, ok := languages.ProviderCode(domain.ProviderOHT, sub.SourceLanguage)
	if !ok {
		return nil, fmt.Errorf("oht: unsupported source language %q", sub.SourceLanguage)
	}
	targetLang, ok := languages.ProviderCode(domain.ProviderOHT, sub.TargetLanguage)
	if !ok {
		return nil, fmt.Errorf("oht: unsupported target language %q", sub.TargetLanguage)
	}

	doc, err := EncodeBundle(sub.ProjectID, sourceLang, targetLang, sub.Items)
	if err != nil {
		return nil, err
	}

	resourceID, err := c.uploadResource(ctx, doc)
	if err != nil {
		return nil, err
	}

	created, err := c.createProject(ctx, sub.ProjectID, sourceLang, targetLang, []string{resourceID})
	if err != nil {
		return nil, err
	}

	if c.cfg.Tag != "" {
		if err := c.tagProject(ctx, created.ProjectID, c.cfg.Tag); err != nil {
			return nil, err
		}
	}

	return &provider.Receipt{
		ProviderProjectID: strconv.FormatInt(created.ProjectID, 10),
		Resources:         map[string]string{resourceID: sub.ProjectID},
		Extra: map[string]any{
			"credits":   created.Credits,
			"wordcount": created.WordCount,
		},
	}, nil
}

// Status polls the vendor project and normalizes its status code.
func (c *Client) Status(ctx context.Context, providerProjectID string) (*provider.StatusReport, error) {
	var details struct {
		ProjectStatus     string              `json:"project_status"`
		ProjectStatusCode string              `json:"project_status_code"`
		ResourceBinding   map[string][]string `json:"resource_binding"`
	}
	if err := c.call(ctx, http.MethodGet, "/projects/"+url.PathEscape(providerProjectID), nil, &details); err != nil {
		return nil, err
	}
	return &provider.StatusReport{
		Code:     normalizeStatusCode(details.ProjectStatusCode),
		Bindings: details.ResourceBinding,
	}, nil
}

// FetchResults downloads a translated resource and decodes the bundle back
// into texts keyed by queue item id.
func (c *Client) FetchResults(ctx context.Context, resourceID string) (map[string]string, error) {
	var resource struct {
		Content string `json:"content"`
	}
	params := url.Values{"fetch": {"base64"}}
	if err := c.call(ctx, http.MethodGet, "/resources/"+url.PathEscape(resourceID)+"?"+params.Encode(), nil, &resource); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(resource.Content)
	if err != nil {
		return nil, fmt.Errorf("oht: decode resource %s: %w", resourceID, err)
	}
	return DecodeBundle(raw)
}

func (c *Client) uploadResource(ctx context.Context, content []byte) (string, error) {
	form := url.Values{"text": {string(content)}}
	var ids []string
	if err := c.call(ctx, http.MethodPost, "/resources/text", form, &ids); err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("oht: resource upload returned no resource id")
	}
	return ids[0], nil
}

type createdProject struct {
	ProjectID int64   `json:"project_id"`
	WordCount int     `json:"wordcount"`
	Credits   float64 `json:"credits"`
}

func (c *Client) createProject(ctx context.Context, name, sourceLang, targetLang string, resources []string) (*createdProject, error) {
	form := url.Values{
		"source_language": {sourceLang},
		"target_language": {targetLang},
		"sources":         {strings.Join(resources, ",")},
		"wordcount":       {strconv.Itoa(c.cfg.WordCount)},
		"notes":           {c.cfg.Note},
		"callback_url":    {c.cfg.CallbackURL},
		"name":            {name},
	}
	if c.cfg.Expertise != "" {
		form.Set("expertise", c.cfg.Expertise)
	}

	var created createdProject
	if err := c.call(ctx, http.MethodPost, "/projects/translation", form, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) tagProject(ctx context.Context, projectID int64, tag string) error {
	form := url.Values{"tag_name": {tag}}
	path := fmt.Sprintf("/project/%d/tag", projectID)
	return c.call(ctx, http.MethodPost, path, form, nil)
}

// call performs one vendor request, unwrapping the {status, results}
// envelope every OHT endpoint shares.
func (c *Client) call(ctx context.Context, method, path string, form url.Values, out any) error {
	if form == nil {
		form = url.Values{}
	}
	form.Set("public_key", c.cfg.PublicKey)
	form.Set("secret_key", c.cfg.SecretKey)

	var req *http.Request
	var err error
	if method == http.MethodGet {
		target := c.baseURL + path
		if strings.Contains(path, "?") {
			target += "&" + form.Encode()
		} else {
			target += "?" + form.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return fmt.Errorf("oht: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("oht: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("oht: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("oht: %s %s: HTTP %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Status struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		} `json:"status"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("oht: malformed response: %w", err)
	}
	if envelope.Status.Msg != "ok" {
		return fmt.Errorf("oht: %s %s: vendor error %q (code %d)", method, path, envelope.Status.Msg, envelope.Status.Code)
	}

	if out == nil || len(envelope.Results) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Results, out); err != nil {
		return fmt.Errorf("oht: decode results: %w", err)
	}
	return nil
}

func normalizeStatusCode(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "pending":
		return provider.StatusPending
	case "in_progress", "in progress":
		return provider.StatusInProgress
	case "signed":
		return provider.StatusSigned
	case "completed":
		return provider.StatusCompleted
	default:
		return strings.ToLower(strings.TrimSpace(code))
	}
}
