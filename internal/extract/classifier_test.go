package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DocumentType
	}{
		{"lease agreement phrase", "residential lease agreement for 12 example street", TypeLeaseAgreement},
		{"tenancy agreement phrase", "tenancy agreement between the parties", TypeLeaseAgreement},
		{"tenant and landlord co-occurrence", "the tenant agrees to pay the landlord monthly", TypeLeaseAgreement},
		{"rates notice phrase", "rates notice for the 2025 financial year", TypeRatesNotice},
		{"rateable value phrase", "the rateable value of the land is shown below", TypeRatesNotice},
		{"council and rates co-occurrence", "example city council annual rates summary", TypeRatesNotice},
		{"outgoings", "outgoings statement for the quarter", TypeOutgoingsStatement},
		{"contract of sale phrase", "contract of sale of real estate", TypeContractOfSale},
		{"vendor and purchaser co-occurrence", "the vendor sells and the purchaser buys", TypeContractOfSale},
		{"statutory assessment phrase", "statutory assessment issued under the act", TypeStatutoryAssessment},
		{"valuation notice phrase", "notice of valuation for the property", TypeStatutoryAssessment},
		{"tenancy schedule phrase", "tenancy schedule as at 30/06/2025", TypeTenancySchedule},
		{"rent roll phrase", "rent roll summary", TypeTenancySchedule},
		{"no rule matches", "random unrelated memo with no recognizable structure", TypeUnknown},
		{"empty text", "", TypeUnknown},
		{"whitespace only", "   \n\t  ", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(Normalize(tt.text)))
		})
	}
}

// A document whose text satisfies two rules is always classified by the rule
// that appears earlier in the fixed priority order.
func TestClassifyPriorityOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DocumentType
	}{
		{"lease beats rates", "lease agreement attaching last year's rates notice", TypeLeaseAgreement},
		{"lease beats tenancy schedule", "tenancy agreement with annexed tenancy schedule", TypeLeaseAgreement},
		{"rates beats assessment", "rates notice referencing assessment number 42-A", TypeRatesNotice},
		{"contract beats assessment", "contract of sale noting the assessment number", TypeContractOfSale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(Normalize(tt.text)))
		})
	}
}

// Incidental keywords for lower-priority rules elsewhere in the text never
// displace a lease-agreement match.
func TestClassifyLeaseAgreementAlwaysWins(t *testing.T) {
	texts := []string{
		"lease agreement",
		"LEASE AGREEMENT\ncouncil rates outgoings vendor purchaser",
		"prefix text lease agreement suffix with rateable value and rent roll",
	}
	for _, text := range texts {
		assert.Equal(t, TypeLeaseAgreement, Classify(Normalize(text)), "text=%q", text)
	}
}
