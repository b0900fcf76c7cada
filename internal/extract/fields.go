package extract

import "regexp"

// FieldRule captures one named field: the pattern runs against the
// original-case text and Group selects the submatch to keep. First match in
// the text wins; a rule that does not match simply leaves its field absent.
type FieldRule struct {
	Field   string
	Pattern *regexp.Regexp
	Group   int
}

const (
	datePat     = `(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`
	currencyPat = `\$?\s*(\d[\d,]*(?:\.\d{1,2})?)`
)

// labelled-line value, e.g. "Tenant: Jane Smith"
func lineRule(field, label string) FieldRule {
	return FieldRule{
		Field:   field,
		Pattern: regexp.MustCompile(`(?im)^\s*(?:` + label + `)\s*[:\-]\s*([^\n]+)`),
		Group:   1,
	}
}

// labelled currency amount, e.g. "Weekly Rent: $450.00"
func currencyRule(field, label string) FieldRule {
	return FieldRule{
		Field:   field,
		Pattern: regexp.MustCompile(`(?i)\b(?:` + label + `)\s*[:\-]?\s*` + currencyPat),
		Group:   1,
	}
}

// labelled date, e.g. "Settlement Date: 01/07/2025"
func dateRule(field, label string) FieldRule {
	return FieldRule{
		Field:   field,
		Pattern: regexp.MustCompile(`(?i)\b(?:` + label + `)\s*[:\-]?\s*` + datePat),
		Group:   1,
	}
}

// commonRules run against every document regardless of type, before the
// type-specific table.
var commonRules = []FieldRule{
	{
		// a labelled line with 10-100 characters of address text; the lower
		// bound drops truncated OCR fragments. The capture must open with a
		// value character so backtracking cannot pull separator characters in
		// to reach the minimum length.
		Field:   FieldPropertyAddress,
		Pattern: regexp.MustCompile(`(?im)^\s*(?:property(?:\s+address)?|address|location)[\s:\-]*([^\s:\-][^\n]{9,99})`),
		Group:   1,
	},
	{
		Field:   FieldDate,
		Pattern: regexp.MustCompile(datePat),
		Group:   1,
	},
	{
		Field:   FieldAmount,
		Pattern: regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d{1,2})?)`),
		Group:   1,
	},
}

var leaseRules = []FieldRule{
	lineRule(FieldTenantName, `tenant(?:\s+name)?|lessee(?:\s+name)?`),
	lineRule(FieldLandlordName, `landlord(?:\s+name)?|lessor(?:\s+name)?`),
	currencyRule(FieldWeeklyRent, `weekly\s+rent`),
	currencyRule(FieldMonthlyRent, `monthly\s+rent`),
	currencyRule(FieldBondAmount, `bond(?:\s+amount)?`),
	dateRule(FieldLeaseStart, `(?:lease\s+)?(?:start|commencement)(?:\s+date)?`),
	dateRule(FieldLeaseEnd, `(?:lease\s+)?(?:end|expiry|termination)(?:\s+date)?`),
}

var ratesRules = []FieldRule{
	lineRule(FieldCouncilName, `council(?:\s+name)?|issuing\s+council`),
	currencyRule(FieldRateableValue, `rateable\s+value`),
	currencyRule(FieldLandValue, `land\s+value`),
	currencyRule(FieldAnnualRates, `annual\s+rates?`),
	currencyRule(FieldQuarterlyRates, `quarterly\s+rates?|rates?\s+instalment`),
}

var contractRules = []FieldRule{
	lineRule(FieldVendor, `vendor(?:\s+name)?`),
	lineRule(FieldPurchaser, `purchaser(?:\s+name)?`),
	currencyRule(FieldSalePrice, `(?:sale|purchase)\s+price`),
	dateRule(FieldSettlementDate, `settlement(?:\s+date)?`),
	currencyRule(FieldDeposit, `deposit`),
}

var assessmentRules = []FieldRule{
	lineRule(FieldAssessmentType, `assessment\s+type`),
	currencyRule(FieldAssessedValue, `assessed\s+value`),
	dateRule(FieldEffectiveDate, `effective(?:\s+date)?`),
	{
		Field:   FieldAssessmentNumber,
		Pattern: regexp.MustCompile(`(?i)\bassessment\s+(?:no\.?|number|#)\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9-]*)`),
		Group:   1,
	},
}

// typeRulesets maps each document type to its extraction table. A tenancy
// schedule is a structural variant of a lease, so it reuses the lease table
// rather than carrying a duplicate. Outgoings statements and unknown
// documents get common fields only.
var typeRulesets = map[DocumentType][]FieldRule{
	TypeLeaseAgreement:      leaseRules,
	TypeRatesNotice:         ratesRules,
	TypeContractOfSale:      contractRules,
	TypeStatutoryAssessment: assessmentRules,
	TypeTenancySchedule:     leaseRules,
}

// CommonExtractors returns the rules applied to every document.
func CommonExtractors() []FieldRule { return commonRules }

// ExtractorsFor returns the type-specific rule table, or nil when the type
// has none.
func ExtractorsFor(t DocumentType) []FieldRule { return typeRulesets[t] }

// applyRules runs each rule once against text, in table order, keeping the
// first match per rule. Values are trimmed; blank captures are dropped.
func applyRules(rules []FieldRule, text string, out FieldSet) FieldSet {
	for _, r := range rules {
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil || r.Group >= len(m) {
			continue
		}
		v := trimValue(m[r.Group])
		if v == "" {
			continue
		}
		out = append(out, FieldValue{Name: r.Field, Value: v})
	}
	return out
}
