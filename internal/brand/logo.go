// Package brand looks up company branding for generated designs.
package brand

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/engine"
	"github.com/kalambet/vitae/internal/prompt"
)

// LogoEndpoint is the logo service a resolved domain is appended to.
const LogoEndpoint = "https://logo.clearbit.com/"

const lookupTimeout = 15 * time.Second

const toolDescription = "Get the URL of a company's logo. Use this when the user's request names a specific company. " +
	"Returns an empty string when no logo can be found."

var domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// LogoResolver resolves a company name to a logo URL by asking the model for
// the company's domain. It never fails: every problem yields "".
type LogoResolver struct {
	cap     engine.Capability
	logger  *slog.Logger
	timeout time.Duration
}

// NewLogoResolver creates a resolver that uses c for domain lookups.
func NewLogoResolver(c engine.Capability, logger *slog.Logger) *LogoResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogoResolver{cap: c, logger: logger, timeout: lookupTimeout}
}

// Resolve returns the logo URL for subject, or "" when the company's domain
// cannot be determined.
func (r *LogoResolver) Resolve(ctx context.Context, subject string) (logoURL string) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ""
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("logo lookup panicked", "company", subject, "panic", p)
			logoURL = ""
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.logger.Info("looking up company domain", "company", subject)

	instruction, err := prompt.CompanyDomain.Render(contract.LogoQuery{CompanyName: subject})
	if err != nil {
		r.logger.Error("rendering domain prompt", "company", subject, "error", err)
		return ""
	}

	raw, err := r.cap.Invoke(ctx, instruction, prompt.CompanyDomain.Output.Schema())
	if err != nil {
		r.logger.Error("company domain lookup failed", "company", subject, "error", err)
		return ""
	}
	if raw == nil {
		r.logger.Warn("company domain lookup returned nothing", "company", subject)
		return ""
	}

	out, err := contract.Decode[contract.DomainOutput](prompt.CompanyDomain.Output, raw)
	if err != nil {
		r.logger.Warn("company domain lookup returned invalid output", "company", subject, "error", err)
		return ""
	}

	domain, ok := NormalizeDomain(out.Domain)
	if !ok {
		r.logger.Warn("company domain not usable", "company", subject, "domain", out.Domain)
		return ""
	}

	logoURL = LogoURL(domain)
	if err := contract.LogoResult.Validate(map[string]any{"url": logoURL}); err != nil {
		r.logger.Warn("logo url rejected", "company", subject, "url", logoURL, "error", err)
		return ""
	}

	r.logger.Info("found company logo", "company", subject, "domain", domain)
	return logoURL
}

// LogoURL builds the logo URL for a normalized domain.
func LogoURL(domain string) string {
	return LogoEndpoint + domain
}

// NormalizeDomain reduces a model answer such as "https://www.Spotify.com/about"
// to a bare domain ("spotify.com") and reports whether the result looks like
// a domain name.
func NormalizeDomain(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, `"'`)
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, ".")
	return s, domainPattern.MatchString(s)
}

// The resolver is offered to the model as the logo tool.

func (r *LogoResolver) Name() string        { return prompt.LogoToolName }
func (r *LogoResolver) Description() string { return toolDescription }
func (r *LogoResolver) Parameters() *engine.Schema {
	return contract.LogoLookup.Schema()
}

// Call decodes the tool arguments and resolves the logo. It always returns a
// nil error; failures produce an empty URL.
func (r *LogoResolver) Call(ctx context.Context, args json.RawMessage) (string, error) {
	q, err := contract.Decode[contract.LogoQuery](contract.LogoLookup, args)
	if err != nil {
		r.logger.Warn("invalid logo tool arguments", "args", string(args), "error", err)
		return "", nil
	}
	return r.Resolve(ctx, q.CompanyName), nil
}
