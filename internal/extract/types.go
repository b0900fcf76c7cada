package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DocumentType is the closed category assigned to a recognized document.
// Stable values (store these exact strings in DB).
type DocumentType string

const (
	TypeLeaseAgreement      DocumentType = "LEASE_AGREEMENT"
	TypeRatesNotice         DocumentType = "RATES_NOTICE"
	TypeOutgoingsStatement  DocumentType = "OUTGOINGS_STATEMENT"
	TypeContractOfSale      DocumentType = "CONTRACT_OF_SALE"
	TypeStatutoryAssessment DocumentType = "STATUTORY_ASSESSMENT"
	TypeTenancySchedule     DocumentType = "TENANCY_SCHEDULE"
	TypeUnknown             DocumentType = "UNKNOWN"
)

// Outcome is the per-document processing state.
type Outcome string

const (
	OutcomePending    Outcome = "PENDING"
	OutcomeProcessing Outcome = "PROCESSING"
	OutcomeCompleted  Outcome = "COMPLETED"
	OutcomeFailed     Outcome = "FAILED"
)

// Field names. Common fields apply to every document; the rest are scoped to
// a single document type by the extractor registry.
const (
	FieldPropertyAddress = "propertyAddress"
	FieldDate            = "date"
	FieldAmount          = "amount"

	FieldTenantName   = "tenantName"
	FieldLandlordName = "landlordName"
	FieldWeeklyRent   = "weeklyRent"
	FieldMonthlyRent  = "monthlyRent"
	FieldBondAmount   = "bondAmount"
	FieldLeaseStart   = "leaseStart"
	FieldLeaseEnd     = "leaseEnd"

	FieldCouncilName    = "councilName"
	FieldRateableValue  = "rateableValue"
	FieldLandValue      = "landValue"
	FieldAnnualRates    = "annualRates"
	FieldQuarterlyRates = "quarterlyRates"

	FieldVendor         = "vendor"
	FieldPurchaser      = "purchaser"
	FieldSalePrice      = "salePrice"
	FieldSettlementDate = "settlementDate"
	FieldDeposit        = "deposit"

	FieldAssessmentType   = "assessmentType"
	FieldAssessedValue    = "assessedValue"
	FieldEffectiveDate    = "effectiveDate"
	FieldAssessmentNumber = "assessmentNumber"
)

// RawRecognitionResult is what the upstream OCR collaborator hands us:
// recognized text plus a quality score in [0,100]. We never revise the score.
type RawRecognitionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// FieldValue is one captured field.
type FieldValue struct {
	Name  string
	Value string
}

// FieldSet holds captured fields in extraction order. Order is deterministic
// (common rules first, then the type-specific rules in table order), which
// keeps JSON output and snapshot comparisons stable.
type FieldSet []FieldValue

// Get returns the value for name and whether it was captured.
func (fs FieldSet) Get(name string) (string, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Map returns the fields as a plain map. Order is lost; use only where the
// caller does not care about it.
func (fs FieldSet) Map() map[string]string {
	m := make(map[string]string, len(fs))
	for _, f := range fs {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON emits a JSON object with keys in extraction order.
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a field set from a JSON object, preserving key order.
func (fs *FieldSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected JSON object, got %v", tok)
	}
	out := FieldSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fields: non-string key %v", keyTok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("fields: value for %q: %w", key, err)
		}
		out = append(out, FieldValue{Name: key, Value: val})
	}
	*fs = out
	return nil
}

// ExtractionResult is the immutable record produced once per submitted
// document. Reprocessing the same text yields a fresh result; nothing mutates
// a result after it reaches COMPLETED or FAILED.
type ExtractionResult struct {
	DocumentType DocumentType `json:"document_type"`
	Fields       FieldSet     `json:"fields"`
	RawText      string       `json:"raw_text"`
	Confidence   float64      `json:"confidence"`
	Outcome      Outcome      `json:"outcome"`
}
