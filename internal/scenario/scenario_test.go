package scenario

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	s, warnings := Parse(Payload{})
	require.Empty(t, warnings)
	if diff := cmp.Diff(Default(), s); diff != "" {
		t.Fatalf("unexpected scenario (-want +got):\n%s", diff)
	}
}

func TestParseRecordsProvidedFields(t *testing.T) {
	s, _ := Parse(Payload{})
	require.False(t, s.Provided.Has(FieldOccupancy))
	require.False(t, s.Provided.Has(FieldDocumentation))

	s, _ = Parse(Payload{OccupancyType: "investment"})
	require.True(t, s.Provided.Has(FieldOccupancy))
	require.False(t, s.Provided.Has(FieldDocumentation))

	s, warnings := Parse(Payload{DocumentationType: "napkin"})
	require.True(t, s.Provided.Has(FieldDocumentation))
	require.Equal(t, DocFullDoc, s.Documentation)
	require.Len(t, warnings, 1)
}

func TestParseCounty(t *testing.T) {
	tests := []struct {
		raw      Loose
		expected string
	}{
		{"", ""},
		{"  Kings County ", "Kings"},
		{"los angeles county", "los angeles"},
		{"Orange", "Orange"},
		{"County", "County"},
	}
	for _, test := range tests {
		s, _ := Parse(Payload{PropertyCounty: test.raw})
		require.Equal(t, test.expected, s.County, "%q", test.raw)
	}
}

func TestDecodeLoosePayload(t *testing.T) {
	payload, err := DecodePayload([]byte(`{
		"loanPurpose": "purchase",
		"propertyValue": "600,000",
		"loanAmount": 450000,
		"creditScore": "740",
		"isSelfEmployed": true,
		"dti": null,
		"lockPeriod": "45 Days"
	}`))
	require.NoError(t, err)

	s, warnings := Parse(payload)
	require.Empty(t, warnings)
	require.Equal(t, PurposePurchase, s.Purpose)
	require.Equal(t, 600000.0, s.PropertyValue)
	require.Equal(t, 450000.0, s.LoanAmount)
	require.Equal(t, 740, s.CreditScore)
	require.True(t, s.SelfEmployed)
	require.Nil(t, s.DTI)
	require.Equal(t, 45, s.LockPeriodDays)
}

func TestDecodePayloadRejectsObjects(t *testing.T) {
	_, err := DecodePayload([]byte(`{"loanAmount": {"value": 1}}`))
	require.Error(t, err)

	payload, err := DecodePayload(nil)
	require.NoError(t, err)
	require.Equal(t, Payload{}, payload)
}

func TestParseEnums(t *testing.T) {
	testCases := []struct {
		name     string
		payload  Payload
		check    func(t *testing.T, s LoanScenario)
		warnings int
	}{
		{
			name:    "case and spacing",
			payload: Payload{OccupancyType: "Second Home", DocumentationType: "Bank Statement"},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, OccupancySecondary, s.Occupancy)
				require.Equal(t, DocBankStatement, s.Documentation)
			},
		},
		{
			name:    "misspelling",
			payload: Payload{LoanPurpose: "purchse"},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, PurposePurchase, s.Purpose)
			},
			warnings: 1,
		},
		{
			name: "unlisted variants fall back instead of matching a neighbour",
			payload: Payload{
				PropertyType:      "condotel",
				DocumentationType: "bankStatement36",
				Citizenship:       "nonUSCitizen",
			},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, PropertySFR, s.PropertyType)
				require.Equal(t, DocFullDoc, s.Documentation)
				require.Equal(t, CitizenUS, s.Citizenship)
			},
			warnings: 3,
		},
		{
			name:    "unknown property type falls back to single family",
			payload: Payload{PropertyType: "mobile home", Citizenship: "martian"},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, PropertySFR, s.PropertyType)
				require.Equal(t, CitizenUS, s.Citizenship)
			},
			warnings: 2,
		},
		{
			name:    "impound and payment codes",
			payload: Payload{ImpoundType: "3", PaymentType: "io"},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, ImpoundsWaived, s.Impounds)
				require.Equal(t, PaymentInterestOnly, s.PaymentType)
			},
		},
		{
			name:    "state and zip",
			payload: Payload{PropertyState: "tx", PropertyZip: "75001-1234"},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, "TX", s.State)
				require.Equal(t, "75001", s.Zip)
			},
		},
		{
			name:    "invalid numbers fall back",
			payload: Payload{LoanAmount: "lots", CreditScore: "-5", PropertyState: "ZZ"},
			check: func(t *testing.T, s LoanScenario) {
				require.Equal(t, float64(DefaultLoanAmount), s.LoanAmount)
				require.Equal(t, DefaultCreditScore, s.CreditScore)
				require.Equal(t, DefaultState, s.State)
			},
			warnings: 3,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			s, warnings := Parse(test.payload)
			require.Len(t, warnings, test.warnings, warnings)
			test.check(t, s)
		})
	}
}

func TestUnits(t *testing.T) {
	require.Equal(t, 1, PropertyCondo.Units())
	require.Equal(t, 3, Property3Unit.Units())
	require.Equal(t, 5, Property5to9Unit.Units())
}

func TestStateName(t *testing.T) {
	name, ok := StateName("DC")
	require.True(t, ok)
	require.Equal(t, "District of Columbia", name)

	_, ok = StateName("ZZ")
	require.False(t, ok)
}

func TestNearTypo(t *testing.T) {
	testCases := []struct {
		key, candidate string
		want           bool
	}{
		{"purchse", "purchase", true},
		{"investmnet", "investment", true},
		{"condotel", "condo", false},
		{"bankstatement36", "bankstatement", false},
		{"bankstatement21", "bankstatement12", false},
		{"nonuscitizen", "uscitizen", false},
		{"refi", "refi", true},
		{"io", "no", false},
		{"xondo", "condo", false},
	}
	for _, test := range testCases {
		require.Equal(t, test.want, nearTypo(test.key, test.candidate), "%s ~ %s", test.key, test.candidate)
	}
}
