package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFieldsJSON(t *testing.T) {
	fields := FieldSet{
		{Name: FieldTenantName, Value: "Jane Smith"},
		{Name: FieldWeeklyRent, Value: "450.00"},
		{Name: FieldAmount, Value: "450.00"},
	}
	data, err := json.Marshal(fields)
	require.NoError(t, err)

	// lease fields validate under the lease schema
	assert.NoError(t, ValidateFieldsJSON(TypeLeaseAgreement, data))
	// the tenancy-schedule alias shares the lease vocabulary
	assert.NoError(t, ValidateFieldsJSON(TypeTenancySchedule, data))
	// a rates notice never carries tenantName
	assert.Error(t, ValidateFieldsJSON(TypeRatesNotice, data))
}

func TestValidateFieldsJSONEmptyObject(t *testing.T) {
	// best-effort extraction: zero captured fields is valid for any type
	for _, dt := range []DocumentType{TypeLeaseAgreement, TypeOutgoingsStatement, TypeUnknown} {
		assert.NoError(t, ValidateFieldsJSON(dt, []byte(`{}`)), string(dt))
	}
}

func TestBuildFieldsJSONSchemaScopesProperties(t *testing.T) {
	schema := BuildFieldsJSONSchema(TypeRatesNotice)
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, FieldCouncilName)
	assert.Contains(t, props, FieldPropertyAddress)
	assert.NotContains(t, props, FieldTenantName)
	assert.Equal(t, false, schema["additionalProperties"])
}
