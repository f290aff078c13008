// Package normalize turns scraped table rows into rate options.
package normalize

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ratequote-backend/internal/browser"
	"ratequote-backend/pkg/textutil"
)

// RateOption is one priced offer. Rate is always positive.
type RateOption struct {
	Rate           float64 `json:"rate"`
	Price          float64 `json:"price"`
	Cost           float64 `json:"cost"`
	LockPeriodDays int     `json:"lockPeriodDays"`
	Product        string  `json:"product"`
	Investor       string  `json:"investor"`
	PaymentAmount  float64 `json:"paymentAmount"`
	Adjustments    float64 `json:"adjustments,omitempty"`
}

type Policy int

const (
	// KeepAll keeps every parsed row.
	KeepAll Policy = iota
	// BestPricePerRate keeps the row with the highest price for each rate.
	BestPricePerRate
)

func (p Policy) String() string {
	if p == BestPricePerRate {
		return "best_price_per_rate"
	}
	return "keep_all"
}

type Options struct {
	Policy Policy
	// DefaultLockDays is used for rows without a lock period, 30 when 0.
	DefaultLockDays int
	// MaxPrice drops options priced above it, 0 disables the cutoff.
	MaxPrice float64
}

type column int

const (
	colRate column = iota
	colPrice
	colProduct
	colInvestor
	colPayment
	colCost
	colLock
	colAdjustments
	columnCount
)

type keywords struct {
	include []string
	exclude []string
}

var columnKeywords = [columnCount]keywords{
	colRate:        {include: []string{"rate"}},
	colPrice:       {include: []string{"price"}, exclude: []string{"adj"}},
	colProduct:     {include: []string{"product"}},
	colInvestor:    {include: []string{"investor", "lender", "program"}},
	colPayment:     {include: []string{"pmt", "payment"}},
	colCost:        {include: []string{"cost"}},
	colLock:        {include: []string{"lock"}},
	colAdjustments: {include: []string{"adj"}},
}

// matchesColumn ignores case and whitespace in header.
func matchesColumn(header string, col column) bool {
	name := textutil.NormalizeName(header)
	kw := columnKeywords[col]
	for _, ex := range kw.exclude {
		if strings.Contains(name, ex) {
			return false
		}
	}
	return textutil.MatchName(name, kw.include)
}

// IsRateHeader reports whether header resolves to the rate column.
func IsRateHeader(header string) bool {
	return matchesColumn(header, colRate)
}

func cell(row browser.RawRow, col column) (string, bool) {
	for _, c := range row {
		if matchesColumn(c.Header, col) {
			return c.Text, true
		}
	}
	return "", false
}

var (
	percentPattern  = regexp.MustCompile(`(-|\()?\s*([\d.]+)\s*%`)
	decimalPattern  = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	currencyPattern = regexp.MustCompile(`(-|\()?\s*\$\s*([\d,]+(?:\.\d+)?)`)
	lockPattern     = regexp.MustCompile(`(?i)(\d+)\s*days?`)
)

func parsePercent(text string) (float64, bool) {
	m := percentPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	if m[1] != "" {
		v = -v
	}
	return v, true
}

func parseCurrency(text string) (float64, bool) {
	m := currencyPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(textutil.StripThousands(m[2]), 64)
	if err != nil {
		return 0, false
	}
	if m[1] != "" {
		v = -v
	}
	return v, true
}

// parseDecimal reads the first plain number, ignoring currency amounts.
func parseDecimal(text string) (float64, bool) {
	text = currencyPattern.ReplaceAllString(text, " ")
	m := decimalPattern.FindString(textutil.StripThousands(text))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseAmount(text string) float64 {
	if v, ok := parseCurrency(text); ok {
		return v
	}
	v, _ := parseDecimal(text)
	return v
}

func parseLock(text string) (int, bool) {
	m := lockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// rowRate only looks outside the rate column when the row has none, and
// never reads adjustment cells.
func rowRate(row browser.RawRow) (float64, bool) {
	if text, ok := cell(row, colRate); ok {
		return parsePercent(text)
	}
	for _, c := range row {
		if matchesColumn(c.Header, colAdjustments) {
			continue
		}
		if v, ok := parsePercent(c.Text); ok {
			return v, true
		}
	}
	return 0, false
}

// Row parses a single row. It reports false for rows without a positive
// rate.
func Row(row browser.RawRow, defaultLock int) (RateOption, bool) {
	rate, ok := rowRate(row)
	if !ok || rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return RateOption{}, false
	}
	if defaultLock <= 0 {
		defaultLock = 30
	}

	option := RateOption{Rate: rate, LockPeriodDays: defaultLock}

	priceText, hasPrice := cell(row, colPrice)
	if hasPrice {
		option.Price, _ = parseDecimal(priceText)
	}
	if text, ok := cell(row, colCost); ok {
		option.Cost = parseAmount(text)
	} else if hasPrice {
		option.Cost, _ = parseCurrency(priceText)
	}
	if text, ok := cell(row, colPayment); ok {
		option.PaymentAmount = parseAmount(text)
	}
	if text, ok := cell(row, colAdjustments); ok {
		option.Adjustments = parseAmount(text)
	}

	lockText, _ := cell(row, colLock)
	rateText, _ := cell(row, colRate)
	for _, text := range []string{lockText, rateText} {
		if days, ok := parseLock(text); ok {
			option.LockPeriodDays = days
			break
		}
	}

	if text, ok := cell(row, colProduct); ok {
		option.Product = textutil.CollapseSpace(text)
	}
	if text, ok := cell(row, colInvestor); ok {
		option.Investor = textutil.CollapseSpace(text)
	}
	return option, true
}

// Normalize parses rows into rate options sorted by rate, then by price
// from best to worst. Unparseable rows are skipped, the input is not
// modified.
func Normalize(rows []browser.RawRow, opts Options) []RateOption {
	out := make([]RateOption, 0, len(rows))
	for _, row := range rows {
		option, ok := Row(row, opts.DefaultLockDays)
		if !ok {
			continue
		}
		if opts.MaxPrice > 0 && option.Price > opts.MaxPrice {
			continue
		}
		out = append(out, option)
	}

	if opts.Policy == BestPricePerRate {
		out = bestPricePerRate(out)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate < out[j].Rate
		}
		return out[i].Price > out[j].Price
	})
	return out
}

func bestPricePerRate(options []RateOption) []RateOption {
	best := map[float64]int{}
	out := make([]RateOption, 0, len(options))
	for _, option := range options {
		idx, seen := best[option.Rate]
		if !seen {
			best[option.Rate] = len(out)
			out = append(out, option)
			continue
		}
		if option.Price > out[idx].Price {
			out[idx] = option
		}
	}
	return out
}
