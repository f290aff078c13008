package fieldmap

import (
	"strconv"

	"ratequote-backend/internal/scenario"
)

// Loannex field keys are the label texts shown next to each control on the
// quick pricer form.
const (
	LoannexPurpose         = "Purpose"
	LoannexOccupancy       = "Occupancy"
	LoannexPropertyType    = "Property Type"
	LoannexIncomeDoc       = "Income Doc"
	LoannexCitizenship     = "Citizenship"
	LoannexState           = "State"
	LoannexEscrows         = "Escrows"
	LoannexAppraisedValue  = "Appraised Value"
	LoannexPurchasePrice   = "Purchase Price"
	LoannexFirstLienAmount = "First Lien Amount"
	LoannexFICO            = "FICO"
	LoannexDTI             = "DTI"
)

var loannexPurposes = map[scenario.Purpose]string{
	scenario.PurposePurchase:  "Purchase",
	scenario.PurposeRefinance: "Rate/Term Refinance",
	scenario.PurposeCashout:   "Cash-Out Refinance",
}

var loannexOccupancies = map[scenario.Occupancy]string{
	scenario.OccupancyPrimary:    "Primary",
	scenario.OccupancySecondary:  "Second Home",
	scenario.OccupancyInvestment: "Investment",
}

var loannexPropertyTypes = map[scenario.PropertyType]string{
	scenario.PropertySFR:       "SFR",
	scenario.PropertyCondo:     "Condo",
	scenario.PropertyTownhouse: "Townhouse",
	scenario.Property2Unit:     "2 Unit",
	scenario.Property3Unit:     "3 Unit",
	scenario.Property4Unit:     "4 Unit",
	scenario.Property5to9Unit:  "5+ Unit",
}

var loannexDocs = map[scenario.Documentation]string{
	scenario.DocFullDoc:          "Full Doc",
	scenario.DocDSCR:             "DSCR",
	scenario.DocBankStatement:    "Bank Statement",
	scenario.DocBankStatement12:  "Bank Statement",
	scenario.DocBankStatement24:  "Bank Statement",
	scenario.DocAssetDepletion:   "Asset Depletion",
	scenario.DocAssetUtilization: "Asset Depletion",
	scenario.DocVOE:              "VOE",
	scenario.DocNoRatio:          "No Ratio",
}

var loannexCitizenships = map[scenario.Citizenship]string{
	scenario.CitizenUS:                   "US Citizen",
	scenario.CitizenPermanentResident:    "Permanent Resident",
	scenario.CitizenNonPermanentResident: "Non-Permanent Resident",
	scenario.CitizenForeignNational:      "Foreign National",
	scenario.CitizenITIN:                 "ITIN",
}

// The quick pricer is used for investor loans, so a scenario that leaves
// occupancy or documentation unset is priced as an investment DSCR loan.
const (
	loannexDefaultOccupancy = "Investment"
	loannexDefaultDoc       = "DSCR"
)

// Loannex maps scenarios onto the Loannex quick pricer.
type Loannex struct{}

func (Loannex) Map(s scenario.LoanScenario) FieldMap {
	escrows := "Yes"
	if s.Impounds == scenario.ImpoundsWaived {
		escrows = "No"
	}
	purchasePrice := ""
	if s.IsPurchase() {
		purchasePrice = formatNumber(s.PropertyValue)
	}
	dti := ""
	if s.DTI != nil {
		dti = formatNumber(*s.DTI)
	}
	state := s.State
	if state == "" {
		state = scenario.DefaultState
	}
	occupancy := loannexDefaultOccupancy
	if s.Provided.Has(scenario.FieldOccupancy) {
		occupancy = lookup(loannexOccupancies, s.Occupancy, "Primary")
	}
	doc := loannexDefaultDoc
	if s.Provided.Has(scenario.FieldDocumentation) {
		doc = lookup(loannexDocs, s.Documentation, "Full Doc")
	}

	return FieldMap{
		{Key: LoannexPurpose, Kind: Choice, Value: lookup(loannexPurposes, s.Purpose, "Purchase")},
		{Key: LoannexOccupancy, Kind: Choice, Value: occupancy},
		{Key: LoannexPropertyType, Kind: Choice, Value: lookup(loannexPropertyTypes, s.PropertyType, "SFR")},
		{Key: LoannexIncomeDoc, Kind: Choice, Value: doc},
		{Key: LoannexCitizenship, Kind: Choice, Value: lookup(loannexCitizenships, s.Citizenship, "US Citizen")},
		{Key: LoannexState, Kind: Choice, Value: state},
		{Key: LoannexEscrows, Kind: Choice, Value: escrows},
		{Key: LoannexAppraisedValue, Kind: Value, Value: formatNumber(s.PropertyValue)},
		{Key: LoannexPurchasePrice, Kind: Value, Value: purchasePrice},
		{Key: LoannexFirstLienAmount, Kind: Value, Value: formatNumber(s.LoanAmount)},
		{Key: LoannexFICO, Kind: Value, Value: strconv.Itoa(s.CreditScore)},
		{Key: LoannexDTI, Kind: Value, Value: dti},
	}
}
