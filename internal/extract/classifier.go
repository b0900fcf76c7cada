package extract

import "strings"

// typeRule matches when the text contains any phrase from anyOf, or every
// keyword from allOf (when anyOf misses and allOf is non-empty).
type typeRule struct {
	docType DocumentType
	anyOf   []string
	allOf   []string
}

// typeRules is evaluated top to bottom; the first matching rule wins. The
// order is a deliberate tie-break policy: rules keyed on specific phrases sit
// above rules that lean on weaker co-occurrence heuristics, so a document
// matching two rules is always classified by the earlier one. Do not reorder.
var typeRules = []typeRule{
	{
		docType: TypeLeaseAgreement,
		anyOf:   []string{"lease agreement", "tenancy agreement", "rental agreement"},
		allOf:   []string{"tenant", "landlord"},
	},
	{
		docType: TypeRatesNotice,
		anyOf:   []string{"rates notice", "rate notice", "rateable value"},
		allOf:   []string{"council", "rates"},
	},
	{
		docType: TypeOutgoingsStatement,
		anyOf:   []string{"outgoings statement", "outgoings", "operating expenses"},
	},
	{
		docType: TypeContractOfSale,
		anyOf:   []string{"contract of sale", "contract for sale", "sale contract"},
		allOf:   []string{"vendor", "purchaser"},
	},
	{
		docType: TypeStatutoryAssessment,
		anyOf:   []string{"statutory assessment", "land tax assessment", "valuation notice", "notice of valuation", "assessment number"},
	},
	{
		docType: TypeTenancySchedule,
		anyOf:   []string{"tenancy schedule", "rent roll"},
	},
}

func (r typeRule) matches(text string) bool {
	for _, kw := range r.anyOf {
		if strings.Contains(text, kw) {
			return true
		}
	}
	if len(r.allOf) == 0 {
		return false
	}
	for _, kw := range r.allOf {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// Classify returns the document type for normalized (lower-cased) text.
// Empty or whitespace-only text is always UNKNOWN.
func Classify(normalized string) DocumentType {
	if isBlank(normalized) {
		return TypeUnknown
	}
	for _, r := range typeRules {
		if r.matches(normalized) {
			return r.docType
		}
	}
	return TypeUnknown
}
