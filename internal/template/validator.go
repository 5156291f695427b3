package template

import (
	"regexp"
	"strings"

	"notifica/internal/errs"
)

// The fixed placeholder vocabulary accepted in letter templates. This list is
// the single source of truth: TokenMap produces exactly these tokens.
var allowedTokens = map[string]struct{}{
	// resident
	"{{nome_morador}}": {},
	"{{nome}}":         {},
	"{{email}}":        {},
	"{{telefone}}":     {},
	"{{bloco}}":        {},
	"{{apartamento}}":  {},
	"{{unidade}}":      {},
	// condominium
	"{{nome_condominio}}":     {},
	"{{condominio}}":          {},
	"{{cnpj}}":                {},
	"{{cidade}}":              {},
	"{{estado}}":              {},
	"{{endereco}}":            {},
	"{{endereco_condominio}}": {},
	// billing
	"{{valor}}":           {},
	"{{valor_formatado}}": {},
	"{{mes_referencia}}":  {},
	"{{data_vencimento}}": {},
	"{{vencimento}}":      {},
	// dates
	"{{data_atual}}": {},
	"{{hoje}}":       {},
}

var tokenPattern = regexp.MustCompile(`\{\{\s*[^{}]*?\s*\}\}`)

// engineConstruct reports whether the inner text of a {{...}} occurrence is
// handlebars syntax rather than a vocabulary placeholder: block open/close,
// inverted sections, partials, comments, else, and helper calls with
// arguments. Those are the engine's business; only bare tokens are checked
// against the whitelist.
func engineConstruct(inner string) bool {
	if inner == "" {
		return false
	}
	switch inner[0] {
	case '#', '/', '^', '>', '!':
		return true
	}
	if inner == "else" {
		return true
	}
	return strings.ContainsAny(inner, " \t\n")
}

// ValidateTokens scans content for {{...}} occurrences and rejects the save
// when any placeholder is outside the whitelist. The returned
// ValidationError lists every offending token, not just the first.
func ValidateTokens(content string) error {
	var unknown []string
	seen := make(map[string]struct{})

	for _, match := range tokenPattern.FindAllString(content, -1) {
		inner := strings.TrimSpace(match[2 : len(match)-2])
		if engineConstruct(inner) {
			continue
		}
		token := "{{" + inner + "}}"
		if _, ok := allowedTokens[token]; ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		unknown = append(unknown, token)
	}

	if len(unknown) > 0 {
		return &errs.ValidationError{
			Message: "template contém placeholders desconhecidos",
			Tokens:  unknown,
		}
	}
	return nil
}
