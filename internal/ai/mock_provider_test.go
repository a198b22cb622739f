package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockMealIsDeterministic(t *testing.T) {
	p := NewMockProvider()
	req := Request{Purpose: PurposeMeal, Parts: []Part{TextPart("Description: grilled Chicken with rice")}}

	first, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var meal map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &meal))
	assert.Equal(t, "Grilled chicken breast", meal["name"])
	assert.EqualValues(t, 280, meal["calories"])
}

func TestMockMealFallsBackForUnknownText(t *testing.T) {
	out, err := NewMockProvider().Generate(context.Background(), Request{
		Purpose: PurposeMeal,
		Parts:   []Part{BlobPart("image/jpeg", []byte{1})},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Mixed meal")
}

func TestMockRecipesHonoursCount(t *testing.T) {
	out, err := NewMockProvider().Generate(context.Background(), Request{
		Purpose: PurposeRecipes,
		Parts:   []Part{TextPart("Generate 7 short recipes for: Diet None, Goal LOSE, Health: None of the above. JSON ARRAY.")},
	})
	require.NoError(t, err)

	var recipes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recipes))
	require.Len(t, recipes, 7)
	assert.Equal(t, "mock-7", recipes[6]["id"])
}

func TestMockRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockProvider().Generate(ctx, Request{Purpose: PurposeMeal})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSchemaJSONSchema(t *testing.T) {
	s := &Schema{
		Type: TypeArray,
		Items: &Schema{
			Type:       TypeObject,
			Properties: map[string]*Schema{"title": {Type: TypeString, Description: "short"}},
			Required:   []string{"title"},
		},
	}

	out := s.JSONSchema()
	assert.Equal(t, "array", out["type"])
	items := out["items"].(map[string]any)
	assert.Equal(t, false, items["additionalProperties"])
	assert.Equal(t, []string{"title"}, items["required"])
	title := items["properties"].(map[string]any)["title"].(map[string]any)
	assert.Equal(t, "short", title["description"])
}

func TestGenaiSchemaConversion(t *testing.T) {
	s := toGenaiSchema(&Schema{
		Type:       TypeObject,
		Properties: map[string]*Schema{"kcal": {Type: TypeNumber}},
		Required:   []string{"kcal"},
	})
	require.NotNil(t, s)
	assert.Len(t, s.Properties, 1)
	assert.Equal(t, genaiType(TypeNumber), s.Properties["kcal"].Type)
	assert.Nil(t, toGenaiSchema(nil))
}
