package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsStringsAndNumbers(t *testing.T) {
	var students []Student
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1},{"id":"stu-2"},{"id":null}]`), &students))
	require.Len(t, students, 3)
	assert.Equal(t, NumberID("1"), students[0].ID)
	assert.Equal(t, StringID("stu-2"), students[1].ID)
	assert.True(t, students[2].ID.IsZero())

	var bad Student
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &bad))
}

func TestStudentRoundTripKeepsIDKindAndUnknownFields(t *testing.T) {
	input := `[{"id":1,"avatar":"a.png","course":{"title":"Go"}},{"id":2},{"id":"stu-3","firstName":"Ana"}]`
	var students []Student
	require.NoError(t, json.Unmarshal([]byte(input), &students))
	require.Len(t, students, 3)
	assert.JSONEq(t, `"a.png"`, string(students[0].Extra["avatar"]))
	assert.Nil(t, students[1].Extra)

	out, err := json.Marshal(students)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestStudentDeclaredFieldsWinOverExtra(t *testing.T) {
	s := Student{ID: StringID("s1"), FirstName: "Ana", Extra: map[string]json.RawMessage{"firstName": json.RawMessage(`"Bo"`), "tag": json.RawMessage(`"x"`)}}
	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s1","firstName":"Ana","tag":"x"}`, string(out))
}

func TestAmountAcceptsNumericStrings(t *testing.T) {
	var p PaymentRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":17,"amount":"19.99","user":{"id":5}}`), &p))
	assert.Equal(t, 19.99, p.Amount.Float64())
	assert.Equal(t, "17", p.ID.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 17.0, decoded["id"])
	assert.Equal(t, 19.99, decoded["amount"])

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"lots"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"amount":true}`), &p))
}

func TestIsAdminPanelRole(t *testing.T) {
	roles := ParseRoles(nil)
	assert.True(t, IsAdminPanelRole(RoleAdmin, roles))
	assert.True(t, IsAdminPanelRole(RoleInstructor, roles))
	assert.False(t, IsAdminPanelRole(RoleStudent, roles))
	assert.False(t, IsAdminPanelRole("", roles))

	custom := ParseRoles([]string{" admin "})
	assert.Equal(t, []UserRole{RoleAdmin}, custom)
	assert.False(t, IsAdminPanelRole(RoleInstructor, custom))
}
