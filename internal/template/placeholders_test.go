package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	out := Substitute("Olá {{nome}}", map[string]string{"{{nome}}": "Ana"})
	assert.Equal(t, "Olá Ana", out)
}

func TestSubstituteMissingKeyUntouched(t *testing.T) {
	out := Substitute("Olá {{nome}}, unidade {{unidade}}", map[string]string{"{{nome}}": "Ana"})
	assert.Equal(t, "Olá Ana, unidade {{unidade}}", out)
}

func TestSubstituteEmptyValue(t *testing.T) {
	out := Substitute("valor: {{valor}}.", map[string]string{"{{valor}}": ""})
	assert.Equal(t, "valor: .", out)
}

// A replaced value that itself looks like a token must not be re-matched:
// the whole content is rewritten in one pass.
func TestSubstituteSinglePass(t *testing.T) {
	data := map[string]string{
		"{{a}}": "{{b}}",
		"{{b}}": "x",
	}
	out := Substitute("{{a}} {{b}}", data)
	assert.Equal(t, "{{b}} x", out)
}

func TestSubstituteLongestTokenWins(t *testing.T) {
	data := map[string]string{
		"{{nome}}":         "Ana",
		"{{nome_morador}}": "Ana Maria",
	}
	out := Substitute("{{nome_morador}} / {{nome}}", data)
	assert.Equal(t, "Ana Maria / Ana", out)
}

func TestSubstituteRepeatedOccurrences(t *testing.T) {
	out := Substitute("{{nome}} e {{nome}}", map[string]string{"{{nome}}": "Ana"})
	assert.Equal(t, "Ana e Ana", out)
}

func TestSubstituteEmptyData(t *testing.T) {
	assert.Equal(t, "Olá {{nome}}", Substitute("Olá {{nome}}", nil))
}
