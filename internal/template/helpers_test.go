package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelperCurrency(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"integer value", 500, "R$ 500,00"},
		{"float value", float64(500), "R$ 500,00"},
		{"cents", 1234.56, "R$ 1.234,56"},
		{"thousands grouping", 1000000.0, "R$ 1.000.000,00"},
		{"negative", -42.5, "R$ -42,50"},
		{"non numeric passes through", "abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, helperCurrency(tt.value))
		})
	}
}

func TestHelperPhone(t *testing.T) {
	assert.Equal(t, "(11) 98765-4321", helperPhone("11987654321"))
	assert.Equal(t, "(11) 8765-4321", helperPhone("1187654321"))
	assert.Equal(t, "(11) 98765-4321", helperPhone("(11) 98765-4321"))
	assert.Equal(t, "123", helperPhone("123"))
}

func TestHelperDocumentFormats(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-95", helperCNPJ("12345678000195"))
	assert.Equal(t, "123.456.789-09", helperCPF("12345678909"))
	assert.Equal(t, "01310-100", helperCEP("01310100"))

	// wrong length passes through untouched
	assert.Equal(t, "123", helperCNPJ("123"))
	assert.Equal(t, "123", helperCPF("123"))
	assert.Equal(t, "123", helperCEP("123"))
}

func TestHelperTextFormats(t *testing.T) {
	assert.Equal(t, "Ana maria", helperCapitalize("ana maria"))
	assert.Equal(t, "Ana Maria Souza", helperTitleCase("ana MARIA souza"))
	assert.Equal(t, "1.234", helperNumber(1234))
	assert.Equal(t, "2,5%", helperPercentage(2.5))
}

func TestHelperUnit(t *testing.T) {
	assert.Equal(t, "Bloco A - Apto 101", helperUnit("A", "101"))
	assert.Equal(t, "Bloco A", helperUnit("A", ""))
	assert.Equal(t, "Apto 101", helperUnit("", "101"))
	assert.Equal(t, "", helperUnit("", ""))
}

func TestHelperDates(t *testing.T) {
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "5/3/2026", helperDate(due))
	assert.Equal(t, "05/03/2026", helperDateFull(due))
	assert.Equal(t, "03/2026", helperMonthYear(due))

	// date strings parse back
	assert.Equal(t, "05/03/2026", helperDateFull("05/03/2026"))
	assert.Equal(t, "05/03/2026", helperDateFull("2026-03-05"))
}

func TestDaysLate(t *testing.T) {
	e := NewEngine()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	assert.Equal(t, 5, e.daysLate(now.AddDate(0, 0, -5)))
	assert.Equal(t, 0, e.daysLate(now))
	// not yet due is never negative
	assert.Equal(t, 0, e.daysLate(now.AddDate(0, 0, 3)))
	// unparseable input is treated as not late
	assert.Equal(t, 0, e.daysLate("not a date"))
}

func TestValueWithPenalty(t *testing.T) {
	assert.Equal(t, "550.00", helperValueWithPenalty(500, 5))
	assert.Equal(t, "500.00", helperValueWithPenalty(500, 0))
	assert.Equal(t, "102.00", helperValueWithPenalty(100.0, 1.0))
}

func TestJoinAddressParts(t *testing.T) {
	got := joinAddressParts([]interface{}{"Rua das Flores", "100", "", "Centro", "  "})
	assert.Equal(t, "Rua das Flores, 100, Centro", got)
}
