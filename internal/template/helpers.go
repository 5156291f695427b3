package template

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mailgun/raymond/v2"
)

// helpers returns the formatting helper catalog. All helpers are pure
// value-to-string functions except daysLate, which reads the engine clock.
func (e *Engine) helpers() map[string]interface{} {
	return map[string]interface{}{
		"currency":   helperCurrency,
		"date":       helperDate,
		"dateFull":   helperDateFull,
		"phone":      helperPhone,
		"cnpj":       helperCNPJ,
		"cep":        helperCEP,
		"cpf":        helperCPF,
		"capitalize": helperCapitalize,
		"titleCase":  helperTitleCase,
		"number":     helperNumber,
		"percentage": helperPercentage,
		"fullAddress": func(options *raymond.Options) string {
			return joinAddressParts(options.Params())
		},
		"unit":      helperUnit,
		"monthYear": helperMonthYear,
		"daysLate": func(value interface{}) string {
			return strconv.Itoa(e.daysLate(value))
		},
		"valueWithPenalty": helperValueWithPenalty,
	}
}

// daysLate is whole days elapsed since the due date, never negative.
func (e *Engine) daysLate(value interface{}) int {
	due, ok := toTime(value)
	if !ok {
		return 0
	}
	days := int(math.Floor(e.now().Sub(due).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func helperCurrency(value interface{}) string {
	f, ok := toFloat(value)
	if !ok {
		return str(value)
	}
	return "R$ " + formatBRL(f)
}

func helperDate(value interface{}) string {
	t, ok := toTime(value)
	if !ok {
		return str(value)
	}
	return t.Format("2/1/2006")
}

func helperDateFull(value interface{}) string {
	t, ok := toTime(value)
	if !ok {
		return str(value)
	}
	return t.Format("02/01/2006")
}

// helperPhone formats Brazilian numbers: 11 digits as (##) #####-####,
// 10 digits as (##) ####-####. Anything else passes through.
func helperPhone(value interface{}) string {
	d := digits(str(value))
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:7], d[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:6], d[6:])
	default:
		return str(value)
	}
}

func helperCNPJ(value interface{}) string {
	d := digits(str(value))
	if len(d) != 14 {
		return str(value)
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:])
}

func helperCEP(value interface{}) string {
	d := digits(str(value))
	if len(d) != 8 {
		return str(value)
	}
	return d[0:5] + "-" + d[5:]
}

func helperCPF(value interface{}) string {
	d := digits(str(value))
	if len(d) != 11 {
		return str(value)
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:])
}

func helperCapitalize(value interface{}) string {
	s := str(value)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func helperTitleCase(value interface{}) string {
	words := strings.Fields(strings.ToLower(str(value)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func helperNumber(value interface{}) string {
	f, ok := toFloat(value)
	if !ok {
		return str(value)
	}
	return groupThousands(strconv.FormatInt(int64(f), 10))
}

func helperPercentage(value interface{}) string {
	f, ok := toFloat(value)
	if !ok {
		return str(value)
	}
	return strings.Replace(fmt.Sprintf("%.1f%%", f), ".", ",", 1)
}

func helperUnit(block, apt interface{}) string {
	b, a := str(block), str(apt)
	switch {
	case b != "" && a != "":
		return fmt.Sprintf("Bloco %s - Apto %s", b, a)
	case b != "":
		return "Bloco " + b
	case a != "":
		return "Apto " + a
	default:
		return ""
	}
}

func helperMonthYear(value interface{}) string {
	t, ok := toTime(value)
	if !ok {
		return str(value)
	}
	return t.Format("01/2006")
}

// helperValueWithPenalty applies a 2% per-day late fee.
func helperValueWithPenalty(value, late interface{}) string {
	v, ok := toFloat(value)
	if !ok {
		return str(value)
	}
	d, _ := toFloat(late)
	if d > 0 {
		v = v * (1 + 0.02*d)
	}
	return fmt.Sprintf("%.2f", v)
}

func joinAddressParts(params []interface{}) string {
	var parts []string
	for _, p := range params {
		if s := strings.TrimSpace(str(p)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// formatBRL renders 1234.5 as "1.234,50".
func formatBRL(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "," + fracPart
	if neg {
		return "-" + out
	}
	return out
}

func groupThousands(s string) string {
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func str(value interface{}) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case *float64:
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case string:
		f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
