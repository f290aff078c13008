// Package preflight checks that a portal's login page still renders the
// form the login procedure expects, without starting a browser.
package preflight

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"ratequote-backend/internal/components/assert"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/scripts"
	"ratequote-backend/pkg/htmlutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_prober_probe = "prober.probe"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Report struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Title  string `json:"title"`
	// Selectors maps every selector of the login form to whether the page
	// contains it.
	Selectors map[string]bool `json:"selectors"`
	Ready     bool            `json:"ready"`
}

// Missing lists the selectors that were not found.
func (r Report) Missing() []string {
	var out []string
	for selector, found := range r.Selectors {
		if !found {
			out = append(out, selector)
		}
	}
	return out
}

type Prober struct {
	http *resty.Client
	tel  telemetry.API
}

func NewProber(tel telemetry.API) (Prober, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("preflight", tel)

	httpClient := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return Prober{}, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetTimeout(30 * time.Second)

	telemetry.InstrumentResty(httpClient, tel, telemetry.RestyOptions{})
	return Prober{http: httpClient, tel: tel}, nil
}

// Probe fetches url and looks for every selector of form.
func (p Prober) Probe(ctx context.Context, url string, form scripts.LoginForm) (Report, error) {
	res, err := p.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		p.tel.ReportBroken(report_prober_probe, fmt.Errorf("fetch: %w", err))
		return Report{}, fmt.Errorf("preflight: fetch %s: %w", url, err)
	}

	report := Report{
		URL:       url,
		Status:    res.StatusCode(),
		Selectors: map[string]bool{},
	}
	doc, err := htmlutil.ParseDocument(ctx, res.Body())
	if err != nil {
		p.tel.ReportBroken(report_prober_probe, fmt.Errorf("parse: %w", err))
		return report, fmt.Errorf("preflight: parse %s: %w", url, err)
	}
	report.Title = strings.TrimSpace(doc.Find("title").First().Text())

	report.Ready = res.IsSuccess()
	for _, selector := range []string{form.UserSelector, form.PasswordSelector, form.SubmitSelector} {
		if selector == "" {
			continue
		}
		found := doc.Find(selector).Length() > 0
		report.Selectors[selector] = found
		if !found {
			report.Ready = false
		}
	}
	if !report.Ready {
		p.tel.ReportWarning(report_prober_probe, "login form incomplete", url, report.Missing())
	}
	return report, nil
}
