package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMealDraftIgnoresExtraFields(t *testing.T) {
	draft, err := ParseMealDraft(`{"name":" Soup ","calories":120.5,"protein":4,"carbs":15,"fat":3,"confidence":0.8}`)
	require.NoError(t, err)
	assert.Equal(t, "Soup", draft.Name)
	assert.Equal(t, 120.5, draft.Calories)
}

func TestParseMealDraftCodeFence(t *testing.T) {
	draft, err := ParseMealDraft("```json\n" + validMeal + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Avocado toast", draft.Name)
}

func TestParseMealDraftRejects(t *testing.T) {
	for name, body := range map[string]string{
		"empty":         "",
		"not json":      "a bowl of soup",
		"null field":    `{"name":"Soup","calories":null,"protein":4,"carbs":15,"fat":3}`,
		"string number": `{"name":"Soup","calories":"120","protein":4,"carbs":15,"fat":3}`,
		"blank name":    `{"name":"  ","calories":1,"protein":4,"carbs":15,"fat":3}`,
		"numeric name":  `{"name":5,"calories":1,"protein":4,"carbs":15,"fat":3}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMealDraft(body)
			assert.Error(t, err)
		})
	}
}

func TestStripDataURL(t *testing.T) {
	assert.Equal(t, "QUJD", StripDataURL("data:image/jpeg;base64,QUJD"))
	assert.Equal(t, "QUJD", StripDataURL("  QUJD "))
	assert.Equal(t, "", StripDataURL(""))
}
