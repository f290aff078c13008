package fieldmap

import (
	"testing"

	"ratequote-backend/internal/scenario"

	"github.com/stretchr/testify/require"
)

func mapPayload(t *testing.T, mapper Mapper, payload scenario.Payload) FieldMap {
	t.Helper()
	s, _ := scenario.Parse(payload)
	return mapper.Map(s)
}

func requireValue(t *testing.T, m FieldMap, key, expected string) {
	t.Helper()
	field, ok := m.Get(key)
	require.True(t, ok, "missing field %s", key)
	require.Equal(t, expected, field.Value, key)
}

func TestLoannexPurchase(t *testing.T) {
	m := mapPayload(t, Loannex{}, scenario.Payload{
		LoanPurpose:   "purchase",
		PropertyValue: "600,000",
		LoanAmount:    "450000",
		CreditScore:   "740",
	})

	requireValue(t, m, LoannexPurchasePrice, "600000")
	requireValue(t, m, LoannexAppraisedValue, "600000")
	requireValue(t, m, LoannexFirstLienAmount, "450000")
	requireValue(t, m, LoannexFICO, "740")
	requireValue(t, m, LoannexPurpose, "Purchase")
	requireValue(t, m, LoannexEscrows, "Yes")
	requireValue(t, m, LoannexDTI, "")
}

func TestLoannexRefinanceSkipsPurchasePrice(t *testing.T) {
	m := mapPayload(t, Loannex{}, scenario.Payload{
		LoanPurpose:       "refinance",
		DocumentationType: "dscr",
		ImpoundType:       "3",
		DTI:               "42.5",
	})

	requireValue(t, m, LoannexPurchasePrice, "")
	requireValue(t, m, LoannexPurpose, "Rate/Term Refinance")
	requireValue(t, m, LoannexIncomeDoc, "DSCR")
	requireValue(t, m, LoannexEscrows, "No")
	requireValue(t, m, LoannexDTI, "42.5")

	_, ok := m.Filled().Get(LoannexPurchasePrice)
	require.False(t, ok)
}

func TestLoannexUnknownEnumsFallBack(t *testing.T) {
	s := scenario.Default()
	s.PropertyType = "houseboat"
	s.Citizenship = "martian"
	s.Purpose = "barter"
	m := Loannex{}.Map(s)

	requireValue(t, m, LoannexPropertyType, "SFR")
	requireValue(t, m, LoannexCitizenship, "US Citizen")
	requireValue(t, m, LoannexPurpose, "Purchase")
}

func TestLoannexDefaultsToInvestorDSCR(t *testing.T) {
	m := mapPayload(t, Loannex{}, scenario.Payload{LoanPurpose: "purchase"})
	requireValue(t, m, LoannexOccupancy, "Investment")
	requireValue(t, m, LoannexIncomeDoc, "DSCR")

	m = mapPayload(t, Loannex{}, scenario.Payload{
		OccupancyType:     "primary",
		DocumentationType: "fullDoc",
	})
	requireValue(t, m, LoannexOccupancy, "Primary")
	requireValue(t, m, LoannexIncomeDoc, "Full Doc")

	// an unrecognized value was still provided, so the scenario default wins
	m = mapPayload(t, Loannex{}, scenario.Payload{OccupancyType: "timeshare"})
	requireValue(t, m, LoannexOccupancy, "Primary")
	requireValue(t, m, LoannexIncomeDoc, "DSCR")

	// other portals keep the scenario defaults
	lp := mapPayload(t, LenderPrice{}, scenario.Payload{})
	requireValue(t, lp, LPOccupancy, "Primary Residence")
	requireValue(t, lp, LPDocType, "Full Doc")
}

func TestLenderPrice(t *testing.T) {
	m := mapPayload(t, LenderPrice{}, scenario.Payload{
		DocumentationType: "dscr",
		DSCRValue:         "1.1",
		PropertyType:      "3unit",
		StructureType:     "attached",
		PropertyState:     "NY",
		ImpoundType:       "noescrow",
		IsSelfEmployed:    "true",
	})

	requireValue(t, m, LPDocType, "Investor/DSCR")
	requireValue(t, m, LPDSCRRatio, "1.1")
	requireValue(t, m, LPPropertyType, "2-4 Units")
	requireValue(t, m, LPUnits, "3")
	requireValue(t, m, LPAttachmentType, "Attached")
	requireValue(t, m, LPState, "New York")
	requireValue(t, m, LPWaiveImpounds, "true")
	requireValue(t, m, LPInterestOnly, "")
	requireValue(t, m, LPSelfEmployed, "true")
}

func TestLenderPriceDSCROnlyWhenDSCR(t *testing.T) {
	m := LenderPrice{}.Map(scenario.Default())
	requireValue(t, m, LPDSCRRatio, "")
	requireValue(t, m, LPState, "California")
	requireValue(t, m, LPPropertyType, "Single Family Residence")
	requireValue(t, m, LPUnits, "1")
}

func TestMappersAreTotal(t *testing.T) {
	scenarios := []scenario.LoanScenario{scenario.Default(), {}}
	for _, s := range scenarios {
		for _, mapper := range []Mapper{Loannex{}, LenderPrice{}} {
			m := mapper.Map(s)
			require.NotEmpty(t, m)
			for _, f := range m {
				require.NotEmpty(t, f.Key)
				if f.Kind == Choice {
					require.NotEmpty(t, f.Value, f.Key)
				}
			}
		}
	}
}
