// Package scenario holds the loan scenario a quote is requested for and the
// rules that turn a loosely typed request payload into one.
package scenario

type Purpose string

const (
	PurposePurchase  Purpose = "purchase"
	PurposeRefinance Purpose = "refinance"
	PurposeCashout   Purpose = "cashout"
)

type Occupancy string

const (
	OccupancyPrimary    Occupancy = "primary"
	OccupancySecondary  Occupancy = "secondary"
	OccupancyInvestment Occupancy = "investment"
)

type PropertyType string

const (
	PropertySFR       PropertyType = "sfr"
	PropertyCondo     PropertyType = "condo"
	PropertyTownhouse PropertyType = "townhouse"
	Property2Unit     PropertyType = "2unit"
	Property3Unit     PropertyType = "3unit"
	Property4Unit     PropertyType = "4unit"
	Property5to9Unit  PropertyType = "5-9unit"
)

// Units is the number of dwelling units, 5-9 unit properties report 5.
func (p PropertyType) Units() int {
	switch p {
	case Property2Unit:
		return 2
	case Property3Unit:
		return 3
	case Property4Unit:
		return 4
	case Property5to9Unit:
		return 5
	}
	return 1
}

type Structure string

const (
	StructureDetached Structure = "detached"
	StructureAttached Structure = "attached"
)

type Documentation string

const (
	DocFullDoc          Documentation = "fullDoc"
	DocDSCR             Documentation = "dscr"
	DocBankStatement    Documentation = "bankStatement"
	DocBankStatement12  Documentation = "bankStatement12"
	DocBankStatement24  Documentation = "bankStatement24"
	DocAssetDepletion   Documentation = "assetDepletion"
	DocAssetUtilization Documentation = "assetUtilization"
	DocVOE              Documentation = "voe"
	DocNoRatio          Documentation = "noRatio"
)

type Citizenship string

const (
	CitizenUS                   Citizenship = "usCitizen"
	CitizenPermanentResident    Citizenship = "permanentResident"
	CitizenNonPermanentResident Citizenship = "nonPermanentResident"
	CitizenForeignNational      Citizenship = "foreignNational"
	CitizenITIN                 Citizenship = "itin"
)

type Impounds string

const (
	ImpoundsEscrowed Impounds = "escrowed"
	ImpoundsWaived   Impounds = "waived"
)

type PaymentType string

const (
	PaymentAmortizing   PaymentType = "amortizing"
	PaymentInterestOnly PaymentType = "interestOnly"
)

// LoanScenario is a fully defaulted loan scenario. It is produced once by
// Parse and only read afterwards.
type LoanScenario struct {
	LoanAmount    float64
	PropertyValue float64
	CreditScore   int

	Purpose       Purpose
	Occupancy     Occupancy
	PropertyType  PropertyType
	Structure     Structure
	Documentation Documentation
	Citizenship   Citizenship

	// State is a two letter postal code.
	State  string
	County string
	Zip    string

	// DTI is nil when the caller did not provide one.
	DTI            *float64
	LockPeriodDays int
	Impounds       Impounds
	// DSCR is only meaningful when Documentation is DocDSCR.
	DSCR         float64
	PaymentType  PaymentType
	SelfEmployed bool

	// Provided marks the enumerations the payload actually set. A field
	// that is not provided holds the scenario default and portals may
	// substitute their own.
	Provided Fields
}

// Fields is a set of scenario fields.
type Fields uint8

const (
	FieldOccupancy Fields = 1 << iota
	FieldDocumentation
)

func (f Fields) Has(field Fields) bool {
	return f&field != 0
}

func (s LoanScenario) IsDSCR() bool {
	return s.Documentation == DocDSCR
}

func (s LoanScenario) IsPurchase() bool {
	return s.Purpose == PurposePurchase
}

const (
	DefaultLoanAmount    = 450000
	DefaultPropertyValue = 600000
	DefaultCreditScore   = 740
	DefaultState         = "CA"
	DefaultZip           = "90210"
	DefaultLockPeriod    = 30
	DefaultDSCR          = 1.25
)

// Default is the scenario an empty payload parses to.
func Default() LoanScenario {
	return LoanScenario{
		LoanAmount:     DefaultLoanAmount,
		PropertyValue:  DefaultPropertyValue,
		CreditScore:    DefaultCreditScore,
		Purpose:        PurposePurchase,
		Occupancy:      OccupancyPrimary,
		PropertyType:   PropertySFR,
		Structure:      StructureDetached,
		Documentation:  DocFullDoc,
		Citizenship:    CitizenUS,
		State:          DefaultState,
		Zip:            DefaultZip,
		LockPeriodDays: DefaultLockPeriod,
		Impounds:       ImpoundsEscrowed,
		DSCR:           DefaultDSCR,
		PaymentType:    PaymentAmortizing,
	}
}
