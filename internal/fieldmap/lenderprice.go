package fieldmap

import (
	"strconv"

	"ratequote-backend/internal/scenario"
)

// LenderPrice field keys are logical names, the element ids they resolve to
// live in configuration.
const (
	LPFico           = "fico"
	LPCitizenship    = "citizenship"
	LPDocType        = "docType"
	LPDSCRRatio      = "dscrRatio"
	LPOccupancy      = "occupancy"
	LPPropertyType   = "propertyType"
	LPUnits          = "units"
	LPAttachmentType = "attachmentType"
	LPZip            = "zip"
	LPState          = "state"
	LPLoanPurpose    = "loanPurpose"
	LPPurchasePrice  = "purchasePrice"
	LPLoanAmount     = "loanAmount"
	LPWaiveImpounds  = "waiveImpounds"
	LPInterestOnly   = "interestOnly"
	LPSelfEmployed   = "selfEmployed"
)

var lpOccupancies = map[scenario.Occupancy]string{
	scenario.OccupancyPrimary:    "Primary Residence",
	scenario.OccupancySecondary:  "Second Home",
	scenario.OccupancyInvestment: "Investment",
}

var lpPropertyTypes = map[scenario.PropertyType]string{
	scenario.PropertySFR:       "Single Family Residence",
	scenario.PropertyCondo:     "Condo",
	scenario.PropertyTownhouse: "Townhouse",
	scenario.Property2Unit:     "2-4 Units",
	scenario.Property3Unit:     "2-4 Units",
	scenario.Property4Unit:     "2-4 Units",
	scenario.Property5to9Unit:  "MultiFamily 5-8 Units",
}

var lpPurposes = map[scenario.Purpose]string{
	scenario.PurposePurchase:  "Purchase",
	scenario.PurposeRefinance: "Refinance",
	scenario.PurposeCashout:   "Cashout Refinance",
}

var lpCitizenships = map[scenario.Citizenship]string{
	scenario.CitizenUS:                   "US Citizen",
	scenario.CitizenPermanentResident:    "Permanent Resident",
	scenario.CitizenNonPermanentResident: "Non-Permanent Resident",
	scenario.CitizenForeignNational:      "Foreign National",
	scenario.CitizenITIN:                 "ITIN",
}

var lpDocs = map[scenario.Documentation]string{
	scenario.DocFullDoc:          "Full Doc",
	scenario.DocDSCR:             "Investor/DSCR",
	scenario.DocBankStatement:    "24 Mo Personal Bank Statements",
	scenario.DocBankStatement12:  "12 Mo Personal Bank Statements",
	scenario.DocBankStatement24:  "24 Mo Personal Bank Statements",
	scenario.DocAssetDepletion:   "Asset Utilization",
	scenario.DocAssetUtilization: "Asset Utilization",
	scenario.DocVOE:              "WVOE",
	scenario.DocNoRatio:          "Full Doc",
}

func toggle(on bool) string {
	if on {
		return "true"
	}
	return ""
}

// LenderPrice maps scenarios onto the LenderPrice (Flex) pricing search.
type LenderPrice struct{}

func (LenderPrice) Map(s scenario.LoanScenario) FieldMap {
	attachment := "Detached"
	if s.Structure == scenario.StructureAttached {
		attachment = "Attached"
	}
	state, ok := scenario.StateName(s.State)
	if !ok {
		state = "California"
	}
	zip := s.Zip
	if zip == "" {
		zip = scenario.DefaultZip
	}
	// 5-9 unit properties are priced as multifamily and keep the single unit default
	units := s.PropertyType.Units()
	if units > 4 {
		units = 1
	}
	dscr := ""
	if s.IsDSCR() {
		dscr = formatNumber(s.DSCR)
	}

	return FieldMap{
		{Key: LPFico, Kind: Value, Value: strconv.Itoa(s.CreditScore)},
		{Key: LPCitizenship, Kind: Value, Value: lookup(lpCitizenships, s.Citizenship, "US Citizen")},
		{Key: LPDocType, Kind: Value, Value: lookup(lpDocs, s.Documentation, "Full Doc")},
		{Key: LPOccupancy, Kind: Value, Value: lookup(lpOccupancies, s.Occupancy, "Primary Residence")},
		{Key: LPPropertyType, Kind: Value, Value: lookup(lpPropertyTypes, s.PropertyType, "Single Family Residence")},
		{Key: LPUnits, Kind: Value, Value: strconv.Itoa(units)},
		{Key: LPAttachmentType, Kind: Value, Value: attachment},
		{Key: LPZip, Kind: Value, Value: zip},
		{Key: LPState, Kind: Value, Value: state},
		{Key: LPLoanPurpose, Kind: Value, Value: lookup(lpPurposes, s.Purpose, "Purchase")},
		{Key: LPPurchasePrice, Kind: Value, Value: formatNumber(s.PropertyValue)},
		{Key: LPLoanAmount, Kind: Value, Value: formatNumber(s.LoanAmount)},
		{Key: LPDSCRRatio, Kind: Value, Value: dscr},
		{Key: LPWaiveImpounds, Kind: Toggle, Value: toggle(s.Impounds == scenario.ImpoundsWaived)},
		{Key: LPInterestOnly, Kind: Toggle, Value: toggle(s.PaymentType == scenario.PaymentInterestOnly)},
		{Key: LPSelfEmployed, Kind: Toggle, Value: toggle(s.SelfEmployed)},
	}
}
