package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Loose is a payload value that may arrive as a json string, number or
// boolean. It keeps the text form and leaves interpretation to Parse.
type Loose string

func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*l = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		err := json.Unmarshal(b, &s)
		if err != nil {
			return err
		}
		*l = Loose(strings.TrimSpace(s))
		return nil
	case '{', '[':
		return fmt.Errorf("scenario: expected a scalar, got %s", string(b))
	}
	*l = Loose(b)
	return nil
}

func (l Loose) String() string {
	return string(l)
}

// Payload is the inbound request body as the presentation layer sends it.
type Payload struct {
	LoanAmount        Loose `json:"loanAmount"`
	PropertyValue     Loose `json:"propertyValue"`
	CreditScore       Loose `json:"creditScore"`
	LoanPurpose       Loose `json:"loanPurpose"`
	OccupancyType     Loose `json:"occupancyType"`
	PropertyType      Loose `json:"propertyType"`
	StructureType     Loose `json:"structureType"`
	DocumentationType Loose `json:"documentationType"`
	Citizenship       Loose `json:"citizenship"`
	PropertyState     Loose `json:"propertyState"`
	PropertyCounty    Loose `json:"propertyCounty"`
	PropertyZip       Loose `json:"propertyZip"`
	DTI               Loose `json:"dti"`
	LockPeriod        Loose `json:"lockPeriod"`
	ImpoundType       Loose `json:"impoundType"`
	DSCRValue         Loose `json:"dscrValue"`
	PaymentType       Loose `json:"paymentType"`
	IsSelfEmployed    Loose `json:"isSelfEmployed"`
}

// DecodePayload decodes a request body. An empty body is an empty payload.
func DecodePayload(body []byte) (Payload, error) {
	var payload Payload
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return Payload{}, fmt.Errorf("scenario: decode payload: %w", err)
	}
	return payload, nil
}
