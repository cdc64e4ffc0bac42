package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDelimitedTextWithExplicitHeaders(t *testing.T) {
	headers := []Header{
		{Label: "Lastname", Property: "lastName"},
		{Label: "Firstname", Property: "firstName"},
		{Label: "Age", Property: "age"},
	}
	rows := []Row{
		{"lastName": "Doe", "firstName": "John", "age": 42},
		{"lastName": "Doe", "firstName": "Jane", "age": 42},
	}

	assert.Equal(t, "Lastname;Firstname;Age\nDoe;John;42\nDoe;Jane;42", ToDelimitedText(rows, headers, ""))
}

func TestToDelimitedTextExportHeaders(t *testing.T) {
	headers := []Header{
		{Label: "Hubvisor", Property: "name"},
		{Label: "NPS moyen", Property: "average"},
	}
	rows := []Row{{"name": "A", "average": "6,2"}}

	assert.Equal(t, "Hubvisor;NPS moyen\nA;6,2", ToDelimitedText(rows, headers, ";"))
}

func TestToDelimitedTextRowCount(t *testing.T) {
	rows := []Row{
		{"lastName": "Doe", "firstName": "John", "age": 42},
		{"lastName": "Doe", "firstName": "Jane", "age": 42},
	}

	out := ToDelimitedText(rows, nil, "")
	assert.Len(t, strings.Split(out, "\n"), len(rows)+1)
}

func TestToDelimitedTextObjectCellsAreJSONEncoded(t *testing.T) {
	rows := []Row{
		{"firstName": "John", "address": map[string]interface{}{"city": "New York"}},
	}

	out := ToDelimitedText(rows, nil, "")
	assert.Contains(t, out, `{"city":"New York"}`)
}

func TestToDelimitedTextDottedPaths(t *testing.T) {
	headers := []Header{
		{Label: "Firstname", Property: "firstName"},
		{Label: "City", Property: "address.city"},
	}
	rows := []Row{
		{"firstName": "John", "address": map[string]interface{}{"city": "New York"}},
		{"firstName": "Jane", "address": map[string]interface{}{"city": "New York"}},
	}

	assert.Equal(t, "Firstname;City\nJohn;New York\nJane;New York", ToDelimitedText(rows, headers, ""))
}

func TestToDelimitedTextMissingIntermediateResolvesEmpty(t *testing.T) {
	headers := []Header{
		{Label: "Firstname", Property: "firstName"},
		{Label: "City", Property: "address.city"},
	}
	rows := []Row{{"firstName": "John"}}

	assert.Equal(t, "Firstname;City\nJohn;", ToDelimitedText(rows, headers, ""))
}

func TestGenerateHeadersPicksLargestRow(t *testing.T) {
	rows := []Row{
		{"lastName": "Doe", "firstName": "John"},
		{"lastName": "Doe", "firstName": "Jane", "age": 42},
	}

	assert.Equal(t, []Header{
		{Label: "age", Property: "age"},
		{Label: "firstName", Property: "firstName"},
		{Label: "lastName", Property: "lastName"},
	}, GenerateHeaders(rows))
}
