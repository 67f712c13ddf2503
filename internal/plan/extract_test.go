package plan

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValue_FencedJSON(t *testing.T) {
	v, err := ExtractValue("```json\n{\"adımlar\": [\"x\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"adımlar": []any{"x"}}, v)
}

func TestExtract_FencedEqualsUnwrapped(t *testing.T) {
	inputs := []string{
		`{"adımlar": ["a", "b"], "deneyim": []}`,
		`[1, 2, 3]`,
		`"plain"`,
		`{"nested": {"k": [true, null]}}`,
	}
	for _, in := range inputs {
		plain, err := ExtractValue(in)
		require.NoError(t, err, in)

		for _, wrapped := range []string{
			"```json\n" + in + "\n```",
			"```\n" + in + "\n```",
			"  \n```json" + in + "```  \n",
		} {
			got, err := ExtractValue(wrapped)
			require.NoError(t, err, wrapped)
			assert.Equal(t, plain, got, wrapped)
		}
	}
}

func TestExtract_IntoCareerPlan(t *testing.T) {
	raw := "```json\n{\n \"adımlar\": [\"Python öğren\", \"Proje yap\"],\n \"gerekli_beceriler\": [\"SQL\"],\n" +
		" \"önerilen_egitim\": [\"Coursera\"],\n \"deneyim\": [\"Staj\"]\n}\n```"
	var p CareerPlan
	require.NoError(t, Extract(raw, &p))
	assert.Equal(t, []string{"Python öğren", "Proje yap"}, p.Steps)
	assert.Equal(t, []string{"SQL"}, p.Skills)
	assert.Equal(t, []string{"Coursera"}, p.Training)
	assert.Equal(t, []string{"Staj"}, p.Experience)
}

func TestExtract_MalformedCarriesSnippet(t *testing.T) {
	raw := "```json\n" + strings.Repeat("ğ", 300) + "\n```"
	_, err := ExtractValue(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))

	var mre *MalformedResponseError
	require.True(t, errors.As(err, &mre))
	assert.NotNil(t, mre.Err)
	assert.Equal(t, 200, utf8.RuneCountInString(mre.Snippet))
	assert.True(t, strings.HasPrefix(mre.Snippet, "ğğğ"))
}

func TestExtract_ShortMalformedKeepsWholeText(t *testing.T) {
	_, err := ExtractValue("Here is your plan: {oops}")
	var mre *MalformedResponseError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, "Here is your plan: {oops}", mre.Snippet)
	assert.Contains(t, err.Error(), "Here is your plan")
}

func TestExtract_NoRepairOfTrailingText(t *testing.T) {
	_, err := ExtractValue("```json\n{\"a\": 1}\n```\nThanks!")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences("\t{\"a\":1}\n"))
	assert.Equal(t, "", StripFences("```"))
}

func TestCareerPlan_FirstSteps(t *testing.T) {
	p := &CareerPlan{Steps: []string{"a", "b", "c"}}
	assert.Equal(t, []string{"a", "b"}, p.FirstSteps(2))
	assert.Equal(t, []string{"a", "b", "c"}, p.FirstSteps(10))
	assert.Equal(t, []string{"a", "b", "c"}, p.FirstSteps(0))

	var nilPlan *CareerPlan
	assert.Nil(t, nilPlan.FirstSteps(3))
}
