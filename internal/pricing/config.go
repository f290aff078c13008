package pricing

import (
	"fmt"
	"time"

	"ratequote-backend/internal/scripts"
	"ratequote-backend/pkg/configutil"
)

type BrowserlessConfig struct {
	Endpoint          string  `json:"endpoint"`
	Token             string  `json:"token"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	// DumpDir receives every raw request/response pair when set, DumpKeep
	// caps how many of them stay on disk.
	DumpDir  string `json:"dump_dir"`
	DumpKeep int    `json:"dump_keep"`
}

// ChromeConfig selects the chromedp executor instead of browserless.
type ChromeConfig struct {
	Enabled   bool   `json:"enabled"`
	RemoteURL string `json:"remote_url"`
	ExecPath  string `json:"exec_path"`
}

type SessionsConfig struct {
	Limit       int `json:"limit"`
	WaitSeconds int `json:"wait_seconds"`
	// TTLSeconds bounds how long a shared session counter survives without
	// activity.
	TTLSeconds int    `json:"ttl_seconds"`
	RedisAddr  string `json:"redis_addr"`
	RedisKey   string `json:"redis_key"`
}

type LoannexConfig struct {
	Username   string                `json:"username"`
	Password   string                `json:"password"`
	LoginURL   string                `json:"login_url"`
	FrameHints []string              `json:"frame_hints"`
	Login      scripts.LoginForm     `json:"login"`
	AppLogin   scripts.AppLoginForm  `json:"app_login"`
	Form       scripts.PricingForm   `json:"form"`
	Table      scripts.ResultsTable  `json:"table"`
	// Labels overrides the label text searched for a field, an empty label
	// marks the field as not present on the form.
	Labels   map[string]string `json:"labels"`
	MaxPrice float64           `json:"max_price"`
}

type LenderPriceConfig struct {
	URL      string               `json:"url"`
	FieldIDs map[string]string    `json:"field_ids"`
	Form     scripts.PricingForm  `json:"form"`
	Table    scripts.ResultsTable `json:"table"`
	MaxPrice float64              `json:"max_price"`
}

type Config struct {
	Browserless     BrowserlessConfig `json:"browserless"`
	Chrome          ChromeConfig      `json:"chrome"`
	Sessions        SessionsConfig    `json:"sessions"`
	DeadlineSeconds int               `json:"deadline_seconds"`
	// Debug attaches diagnostics to successful responses.
	Debug       bool              `json:"debug"`
	Loannex     LoannexConfig     `json:"loannex"`
	LenderPrice LenderPriceConfig `json:"lenderprice"`
}

func (c Config) Deadline() time.Duration {
	return time.Duration(c.DeadlineSeconds) * time.Second
}

var noResultTexts = []string{"No results", "no eligible", "No eligible", "No prices"}

func DefaultConfig() Config {
	return Config{
		Sessions: SessionsConfig{
			Limit:      2,
			TTLSeconds: 120,
			RedisKey:   "ratequote:sessions",
		},
		DeadlineSeconds: 58,
		Browserless:     BrowserlessConfig{DumpKeep: 200},
		Loannex: LoannexConfig{
			LoginURL:   "https://web.loannex.com/",
			FrameHints: []string{"nex-app", "loannex"},
			Login: scripts.LoginForm{
				UserSelector:     "#UserName",
				PasswordSelector: "#Password",
				SubmitSelector:   "#btnSubmit",
			},
			AppLogin: scripts.AppLoginForm{
				UserSelector:     "#username",
				PasswordSelector: "#password",
				ButtonSelectors:  []string{"button.login-button", "button"},
			},
			Form: scripts.PricingForm{
				MinInputs:       10,
				ReadyText:       "Get Price",
				AppLinks:        []string{"nex-app", "quick-pricer"},
				AppRoute:        "/nex-app",
				SubmitSelectors: []string{"button.quick-price-button", "[class*=quick-price]"},
				SubmitText:      "Get Price",
			},
			Table: scripts.ResultsTable{
				MinRows:       2,
				NoResultTexts: noResultTexts,
				HeaderRow:     true,
				MinCells:      3,
				MaxRows:       scripts.DefaultMaxRows,
			},
		},
		LenderPrice: LenderPriceConfig{
			URL: "https://flex.digitallending.com/#/pricing?code=Oaktree&company=oaktree.digitallending.com",
			FieldIDs: map[string]string{
				"fico":           "63d2274bf262ed03e49abc6c",
				"citizenship":    "63fd2c4bd2d5c7d168d741b8",
				"docType":        "686fb4aab753b53d04cea8c9",
				"dscrRatio":      "63bda202870841ff37dcffc2",
				"occupancy":      "61a97be92f993cf968556c19",
				"propertyType":   "613fe3ebb0d5f45e0b719775",
				"units":          "61a97b912f993cf968556c14",
				"attachmentType": "61a97b4e2f993cf968556c10",
				"zip":            "613fe802b0d5f45e0b71985b",
				"state":          "613fe2d8b0d5f45e0b719766",
				"loanPurpose":    "625cf17a81b3b41288722d24",
				"purchasePrice":  "63fd2badd2d5c7d168d7404b",
				"loanAmount":     "625cf3e881b3b41288722d60",
				"waiveImpounds":  "63ac9dfb44b1dfb7238cbd36",
				"interestOnly":   "6471198a1808b2759c7290f3",
				"selfEmployed":   "6219b8a850cbb98496384300",
			},
			Form: scripts.PricingForm{
				MinInputs:       5,
				ReadySelector:   `[id="63d2274bf262ed03e49abc6c"]`,
				SettleAfter:     []string{"docType", "loanPurpose", "propertyType"},
				SubmitSelectors: []string{"button.btn-primary"},
			},
			Table: scripts.ResultsTable{
				MinRows:       2,
				NoResultTexts: noResultTexts,
				Columns:       map[int]string{0: "Rate", 2: "Price", 3: "Payment", 9: "Adjustments"},
				MinCells:      5,
				MaxRows:       scripts.DefaultMaxRows,
				DataAttr:      true,
				Counts: map[string]string{
					"eligibleQM":    `Eligible QM \((\d+)\)`,
					"eligibleNonQM": `Eligible Non-Traditional \((\d+)\)`,
				},
			},
		},
	}
}

// LoadConfig decodes name (and its .local override) on top of the
// defaults, then applies secrets from the environment. Fields a file sets
// to zero or false stay that way. A missing file is not an error.
func LoadConfig(name string) (Config, error) {
	cfg, err := configutil.ReadConfigOver(name, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("pricing: read config: %w", err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides secrets from the environment and returns the names of
// the variables that were applied.
func (c *Config) ApplyEnv() []string {
	return configutil.EnvOverrides{
		"BROWSERLESS_TOKEN":    &c.Browserless.Token,
		"BROWSERLESS_ENDPOINT": &c.Browserless.Endpoint,
		"LOANNEX_USER":         &c.Loannex.Username,
		"LOANNEX_PASSWORD":     &c.Loannex.Password,
		"REDIS_ADDR":           &c.Sessions.RedisAddr,
		"CHROME_REMOTE_URL":    &c.Chrome.RemoteURL,
	}.Apply()
}

// Problems lists what is missing for requests to succeed. The server still
// starts with problems, affected requests fail with a configuration error.
func (c Config) Problems() []string {
	var out []string
	if c.Browserless.Token == "" && !c.Chrome.Enabled {
		out = append(out, "browserless token is not configured")
	}
	if c.Loannex.Username == "" || c.Loannex.Password == "" {
		out = append(out, "loannex credentials are not configured")
	}
	return out
}
