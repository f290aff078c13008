package scenario

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"ratequote-backend/pkg/textutil"

	"github.com/antzucaro/matchr"
)

// minFuzzyScore is the Jaro-Winkler similarity a value needs to be accepted
// as a misspelling of a known key.
const minFuzzyScore = 0.9

// enumTable maps normalized spellings (see textutil.NormalizeName) to a value.
type enumTable[T ~string] map[string]T

var purposes = enumTable[Purpose]{
	"purchase":           PurposePurchase,
	"refinance":          PurposeRefinance,
	"refi":               PurposeRefinance,
	"rateterm":           PurposeRefinance,
	"rate/termrefinance": PurposeRefinance,
	"cashout":            PurposeCashout,
	"cash-out":           PurposeCashout,
	"cash-outrefinance":  PurposeCashout,
}

var occupancies = enumTable[Occupancy]{
	"primary":          OccupancyPrimary,
	"primaryresidence": OccupancyPrimary,
	"owneroccupied":    OccupancyPrimary,
	"secondary":        OccupancySecondary,
	"secondhome":       OccupancySecondary,
	"investment":       OccupancyInvestment,
	"investor":         OccupancyInvestment,
}

var propertyTypes = enumTable[PropertyType]{
	"sfr":                   PropertySFR,
	"singlefamily":          PropertySFR,
	"singlefamilyresidence": PropertySFR,
	"condo":                 PropertyCondo,
	"townhouse":             PropertyTownhouse,
	"2unit":                 Property2Unit,
	"3unit":                 Property3Unit,
	"4unit":                 Property4Unit,
	"5-9unit":               Property5to9Unit,
	"5+unit":                Property5to9Unit,
}

var structures = enumTable[Structure]{
	"detached": StructureDetached,
	"attached": StructureAttached,
}

var documentations = enumTable[Documentation]{
	"fulldoc":          DocFullDoc,
	"dscr":             DocDSCR,
	"investor/dscr":    DocDSCR,
	"bankstatement":    DocBankStatement,
	"bankstatement12":  DocBankStatement12,
	"bankstatement24":  DocBankStatement24,
	"assetdepletion":   DocAssetDepletion,
	"assetutilization": DocAssetUtilization,
	"voe":              DocVOE,
	"wvoe":             DocVOE,
	"noratio":          DocNoRatio,
}

var citizenships = enumTable[Citizenship]{
	"uscitizen":            CitizenUS,
	"citizen":              CitizenUS,
	"permanentresident":    CitizenPermanentResident,
	"nonpermanentresident": CitizenNonPermanentResident,
	"foreignnational":      CitizenForeignNational,
	"itin":                 CitizenITIN,
}

var impounds = enumTable[Impounds]{
	"escrowed": ImpoundsEscrowed,
	"escrow":   ImpoundsEscrowed,
	"yes":      ImpoundsEscrowed,
	"waived":   ImpoundsWaived,
	"waive":    ImpoundsWaived,
	"noescrow": ImpoundsWaived,
	"no":       ImpoundsWaived,
	// the presentation layer sends impound option "3" for waived escrows
	"3": ImpoundsWaived,
}

var paymentTypes = enumTable[PaymentType]{
	"amortizing":   PaymentAmortizing,
	"fixed":        PaymentAmortizing,
	"io":           PaymentInterestOnly,
	"interestonly": PaymentInterestOnly,
}

var digitRuns = regexp.MustCompile(`\d+`)

// nearTypo reports whether key is a single edit away from candidate without
// changing its first letter or any digit, "purchse" is a typo of "purchase"
// while "condotel" and "bankstatement36" are not typos of anything.
func nearTypo(key, candidate string) bool {
	if len(key) < 4 || key[0] != candidate[0] {
		return false
	}
	diff := len(key) - len(candidate)
	if diff < -1 || diff > 1 {
		return false
	}
	if strings.Join(digitRuns.FindAllString(key, -1), ",") != strings.Join(digitRuns.FindAllString(candidate, -1), ",") {
		return false
	}
	return matchr.DamerauLevenshtein(key, candidate) <= 1
}

// resolve returns the table entry for raw. An exact match on the normalized
// spelling wins, otherwise the closest Jaro-Winkler candidate is accepted
// only when it is a near typo, in which case fuzzy is true.
func (t enumTable[T]) resolve(raw string) (value T, fuzzy bool, ok bool) {
	key := textutil.NormalizeName(raw)
	if value, ok := t[key]; ok {
		return value, false, true
	}

	var best T
	bestKey := ""
	bestScore := 0.0
	for candidate, value := range t {
		if !nearTypo(key, candidate) {
			continue
		}
		score := matchr.JaroWinkler(key, candidate, false)
		if score > bestScore || (score == bestScore && candidate < bestKey) {
			best = value
			bestKey = candidate
			bestScore = score
		}
	}
	if bestScore >= minFuzzyScore {
		return best, true, true
	}
	var zero T
	return zero, false, false
}

type parser struct {
	warnings []string
}

func (p *parser) warn(field string, raw Loose, fallback any) {
	p.warnings = append(p.warnings, fmt.Sprintf("%s: unrecognized %q, using %v", field, raw, fallback))
}

func parseEnum[T ~string](p *parser, field string, raw Loose, table enumTable[T], fallback T) T {
	if raw == "" {
		return fallback
	}
	value, fuzzy, ok := table.resolve(string(raw))
	if !ok {
		p.warn(field, raw, fallback)
		return fallback
	}
	if fuzzy {
		p.warnings = append(p.warnings, fmt.Sprintf("%s: read %q as %v", field, raw, value))
	}
	return value
}

var numberCleaner = strings.NewReplacer(",", "", "$", "", "%", "", " ", "")

func parseNumber(raw Loose) (float64, bool) {
	cleaned := numberCleaner.Replace(string(raw))
	if cleaned == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func (p *parser) positive(field string, raw Loose, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	n, ok := parseNumber(raw)
	if !ok || n <= 0 {
		p.warn(field, raw, fallback)
		return fallback
	}
	return n
}

var leadingInt = regexp.MustCompile(`\d+`)

func (p *parser) count(field string, raw Loose, fallback int) int {
	if raw == "" {
		return fallback
	}
	match := leadingInt.FindString(string(raw))
	n, err := strconv.Atoi(match)
	if err != nil {
		p.warn(field, raw, fallback)
		return fallback
	}
	return n
}

func parseBool(raw Loose) bool {
	switch strings.ToLower(string(raw)) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}

var zipRegex = regexp.MustCompile(`^\d{5}`)

// countyName trims whitespace and a trailing "County" so "Kings County" and
// "kings" both come out as a bare name.
func countyName(raw Loose) string {
	name := strings.TrimSpace(string(raw))
	if len(name) > len("county") && strings.EqualFold(name[len(name)-len("county"):], "county") {
		name = strings.TrimSpace(name[:len(name)-len("county")])
	}
	return name
}

// Parse builds a LoanScenario from a payload. It is total: anything missing
// or unrecognized falls back to its default and is listed in the returned
// warnings.
func Parse(payload Payload) (LoanScenario, []string) {
	p := &parser{}
	def := Default()
	s := def

	s.LoanAmount = p.positive("loanAmount", payload.LoanAmount, def.LoanAmount)
	s.PropertyValue = p.positive("propertyValue", payload.PropertyValue, def.PropertyValue)
	s.CreditScore = int(math.Round(p.positive("creditScore", payload.CreditScore, float64(def.CreditScore))))

	s.Purpose = parseEnum(p, "loanPurpose", payload.LoanPurpose, purposes, def.Purpose)
	s.Occupancy = parseEnum(p, "occupancyType", payload.OccupancyType, occupancies, def.Occupancy)
	s.PropertyType = parseEnum(p, "propertyType", payload.PropertyType, propertyTypes, def.PropertyType)
	s.Structure = parseEnum(p, "structureType", payload.StructureType, structures, def.Structure)
	s.Documentation = parseEnum(p, "documentationType", payload.DocumentationType, documentations, def.Documentation)
	s.Citizenship = parseEnum(p, "citizenship", payload.Citizenship, citizenships, def.Citizenship)
	s.Impounds = parseEnum(p, "impoundType", payload.ImpoundType, impounds, def.Impounds)
	s.PaymentType = parseEnum(p, "paymentType", payload.PaymentType, paymentTypes, def.PaymentType)

	if payload.PropertyState != "" {
		code := strings.ToUpper(string(payload.PropertyState))
		if _, ok := StateName(code); ok {
			s.State = code
		} else {
			p.warn("propertyState", payload.PropertyState, def.State)
		}
	}
	s.County = countyName(payload.PropertyCounty)
	if payload.PropertyZip != "" {
		zip := zipRegex.FindString(string(payload.PropertyZip))
		if zip != "" {
			s.Zip = zip
		} else {
			p.warn("propertyZip", payload.PropertyZip, def.Zip)
		}
	}

	if payload.DTI != "" {
		dti, ok := parseNumber(payload.DTI)
		if ok && dti > 0 {
			s.DTI = &dti
		} else {
			p.warn("dti", payload.DTI, "none")
		}
	}

	s.LockPeriodDays = p.count("lockPeriod", payload.LockPeriod, def.LockPeriodDays)
	if s.LockPeriodDays <= 0 {
		s.LockPeriodDays = def.LockPeriodDays
	}
	s.DSCR = p.positive("dscrValue", payload.DSCRValue, def.DSCR)
	s.SelfEmployed = parseBool(payload.IsSelfEmployed)
	if payload.OccupancyType != "" {
		s.Provided |= FieldOccupancy
	}
	if payload.DocumentationType != "" {
		s.Provided |= FieldDocumentation
	}

	return s, p.warnings
}
