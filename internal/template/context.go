package template

import (
	"time"

	"notifica/internal/models"
)

// NoticeContext is the typed render context for one billing notice. Keeping
// it structured (instead of an ad-hoc map) means the placeholder whitelist
// and the values actually offered to templates come from the same place.
type NoticeContext struct {
	Resident    models.Resident
	Condominium models.Condominium
	Record      models.BillingRecord
	Now         time.Time
}

func NewNoticeContext(res models.Resident, condo models.Condominium, rec models.BillingRecord) NoticeContext {
	return NoticeContext{Resident: res, Condominium: condo, Record: rec, Now: time.Now()}
}

// MonthRef is the "MM/YYYY" billing reference derived from the due date.
func (c NoticeContext) MonthRef() string {
	return c.Record.DueDate.Format("01/2006")
}

// Address joins the non-empty condominium address components.
func (c NoticeContext) Address() string {
	return joinAddressParts([]interface{}{
		c.Condominium.Street,
		c.Condominium.Number,
		c.Condominium.District,
		c.Condominium.City,
		c.Condominium.State,
	})
}

func (c NoticeContext) formattedAmount() string {
	if c.Record.Amount == nil {
		return "Não informado"
	}
	return "R$ " + formatBRL(*c.Record.Amount)
}

func (c NoticeContext) rawAmount() string {
	if c.Record.Amount == nil {
		return ""
	}
	return formatBRL(*c.Record.Amount)
}

// TokenMap flattens the context into the literal {{token}} vocabulary used
// by Substitute. Synonym tokens are intentionally duplicated so legacy
// templates keep working.
func (c NoticeContext) TokenMap() map[string]string {
	unitLabel := helperUnit(c.Resident.Block, c.Resident.Unit)
	due := c.Record.DueDate.Format("02/01/2006")
	today := c.Now.Format("02/01/2006")

	return map[string]string{
		// resident
		"{{nome_morador}}": c.Resident.Name,
		"{{nome}}":         c.Resident.Name,
		"{{email}}":        c.Resident.Email,
		"{{telefone}}":     helperPhone(c.Resident.Phone),
		"{{bloco}}":        c.Resident.Block,
		"{{apartamento}}":  c.Resident.Unit,
		"{{unidade}}":      unitLabel,
		// condominium
		"{{nome_condominio}}":     c.Condominium.Name,
		"{{condominio}}":          c.Condominium.Name,
		"{{cnpj}}":                helperCNPJ(c.Condominium.CNPJ),
		"{{cidade}}":              c.Condominium.City,
		"{{estado}}":              c.Condominium.State,
		"{{endereco}}":            c.Address(),
		"{{endereco_condominio}}": c.Address(),
		// billing
		"{{valor}}":           c.rawAmount(),
		"{{valor_formatado}}": c.formattedAmount(),
		"{{mes_referencia}}":  c.MonthRef(),
		"{{data_vencimento}}": due,
		"{{vencimento}}":      due,
		// dates
		"{{data_atual}}": today,
		"{{hoje}}":       today,
	}
}

// EngineMap exposes the same vocabulary (bare keys) plus raw typed values
// and section flags for the handlebars path, where helpers do the
// formatting: {{currency valor}}, {{daysLate data_vencimento}}.
func (c NoticeContext) EngineMap() map[string]interface{} {
	ctx := make(map[string]interface{}, 32)
	for token, value := range c.TokenMap() {
		ctx[token[2:len(token)-2]] = value
	}

	// raw amount so helpers like {{currency valor}} get a number; date
	// tokens stay dd/mm/yyyy strings, which the date helpers parse back
	if c.Record.Amount != nil {
		ctx["valor"] = *c.Record.Amount
	}

	// partial visibility flags; header/footer are switched on by the
	// mailer once it knows whether the images resolved
	ctx["mostrarMorador"] = true
	ctx["mostrarCondominio"] = true
	ctx["mostrarCobranca"] = true
	ctx["mostrarCabecalho"] = false
	ctx["mostrarRodape"] = false

	return ctx
}
