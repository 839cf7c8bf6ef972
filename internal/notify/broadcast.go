// Package notify relays new-listing announcements to WhatsApp through the Graph API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/normalize"
)

const (
	defaultGraphBaseURL = "https://graph.facebook.com"
	defaultAPIVersion   = "v21.0"
	defaultLanguage     = "fr"
	sendTimeout         = 15 * time.Second
)

// ReasonMissingConfig is reported when credentials are absent.
const ReasonMissingConfig = "missing_config"

// Config holds the WhatsApp Cloud API settings.
type Config struct {
	AccessToken      string
	PhoneNumberID    string
	APIVersion       string
	TemplateName     string
	TemplateLanguage string
	GraphBaseURL     string
	// MessagesPerSecond paces sends; zero means 10.
	MessagesPerSecond float64
}

// Enabled reports whether both credentials are set.
func (c Config) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// PostCreated describes a freshly published listing.
type PostCreated struct {
	AuthorName string
	Kind       domain.Kind
	Title      string
	ShareURL   string
}

// Text is the plain message body.
func (p PostCreated) Text() string {
	return fmt.Sprintf("%s a poste %s sur Link.\n%s\n%s", p.AuthorName, p.Kind.Label(), p.Title, p.ShareURL)
}

// Result counts the outcome of a broadcast.
type Result struct {
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Broadcaster sends announcements to a list of recipients.
type Broadcaster struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewBroadcaster creates a Broadcaster. It is usable even when cfg is not Enabled.
func NewBroadcaster(cfg Config, logger *slog.Logger) *Broadcaster {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.TemplateLanguage == "" {
		cfg.TemplateLanguage = defaultLanguage
	}
	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = defaultGraphBaseURL
	}
	cfg.GraphBaseURL = strings.TrimSuffix(cfg.GraphBaseURL, "/")

	mps := cfg.MessagesPerSecond
	if mps <= 0 {
		mps = 10
	}
	return &Broadcaster{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: sendTimeout},
		limiter:    rate.NewLimiter(rate.Limit(mps), 1),
		logger:     logger,
	}
}

// Enabled reports whether sends will be attempted.
func (b *Broadcaster) Enabled() bool {
	return b.cfg.Enabled()
}

// PostCreated sends post to every recipient. Individual failures are logged
// and counted, never returned.
func (b *Broadcaster) PostCreated(ctx context.Context, post PostCreated, recipients []string) Result {
	if !b.cfg.Enabled() {
		return Result{Skipped: len(recipients), Reason: ReasonMissingConfig}
	}

	var res Result
	for _, recipient := range recipients {
		to := normalize.Phone(recipient)
		if to == "" {
			res.Failed++
			continue
		}
		if err := b.limiter.Wait(ctx); err != nil {
			res.Failed++
			continue
		}
		if err := b.send(ctx, b.payload(to, post)); err != nil {
			res.Failed++
			b.logger.Warn("whatsapp broadcast failed", "to", to, "error", err)
			continue
		}
		res.Sent++
	}

	b.logger.Info("whatsapp broadcast finished",
		"title", post.Title,
		"sent", res.Sent,
		"failed", res.Failed,
	)
	return res
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateBody struct {
	Name     string `json:"name"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Components []templateComponent `json:"components"`
}

type message struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             *textBody     `json:"text,omitempty"`
	Template         *templateBody `json:"template,omitempty"`
}

func (b *Broadcaster) payload(to string, post PostCreated) message {
	msg := message{MessagingProduct: "whatsapp", To: to}
	if b.cfg.TemplateName == "" {
		msg.Type = "text"
		msg.Text = &textBody{PreviewURL: true, Body: post.Text()}
		return msg
	}

	tpl := &templateBody{Name: b.cfg.TemplateName}
	tpl.Language.Code = b.cfg.TemplateLanguage
	tpl.Components = []templateComponent{{
		Type: "body",
		Parameters: []templateParameter{
			{Type: "text", Text: post.AuthorName},
			{Type: "text", Text: post.Kind.Label()},
			{Type: "text", Text: post.Title},
			{Type: "text", Text: post.ShareURL},
		},
	}}
	msg.Type = "template"
	msg.Template = tpl
	return msg
}

func (b *Broadcaster) send(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", b.cfg.GraphBaseURL, b.cfg.APIVersion, b.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp api error %d: %s", resp.StatusCode, errBody)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
