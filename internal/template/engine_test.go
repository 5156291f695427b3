package template

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifica/internal/errs"
	"notifica/internal/models"
)

func noticeFixture() NoticeContext {
	amount := 500.0
	return NoticeContext{
		Resident: models.Resident{
			Name:  "ana souza",
			Email: "ana@example.com",
			Phone: "11987654321",
			Block: "A",
			Unit:  "101",
		},
		Condominium: models.Condominium{
			Name:     "Residencial Jardim",
			CNPJ:     "12345678000195",
			Street:   "Rua das Flores",
			Number:   "100",
			District: "Centro",
			City:     "São Paulo",
			State:    "SP",
		},
		Record: models.BillingRecord{
			Amount:  &amount,
			DueDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		Now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderVariablesAndHelpers(t *testing.T) {
	e := NewEngine()
	ctx := noticeFixture().EngineMap()

	out, err := e.Render("Olá {{nome_morador}}, valor {{currency valor}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "Olá ana souza, valor R$ 500,00", out)
}

func TestRenderConditional(t *testing.T) {
	e := NewEngine()

	out, err := e.Render(
		"{{#if mostrarCobranca}}vencimento {{data_vencimento}}{{else}}sem cobrança{{/if}}",
		noticeFixture().EngineMap(),
	)
	require.NoError(t, err)
	assert.Equal(t, "vencimento 05/03/2026", out)

	ctx := noticeFixture().EngineMap()
	ctx["mostrarCobranca"] = false
	out, err = e.Render(
		"{{#if mostrarCobranca}}vencimento {{data_vencimento}}{{else}}sem cobrança{{/if}}",
		ctx,
	)
	require.NoError(t, err)
	assert.Equal(t, "sem cobrança", out)
}

func TestRenderPartialGatedByFlag(t *testing.T) {
	e := NewEngine()

	ctx := noticeFixture().EngineMap()
	out, err := e.Render("{{> billingInfo}}", ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "R$ 500,00")
	assert.Contains(t, out, "05/03/2026")

	ctx["mostrarCobranca"] = false
	out, err = e.Render("{{> billingInfo}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRenderEscapesByDefault(t *testing.T) {
	e := NewEngine()
	ctx := map[string]interface{}{"nome": "<script>alert(1)</script>"}

	out, err := e.Render("{{nome}}", ctx)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestRenderDeterministic(t *testing.T) {
	e := NewEngine()
	ctx := noticeFixture()

	first, err := e.Render("{{nome_morador}} deve {{valor_formatado}} até {{vencimento}}", ctx.EngineMap())
	require.NoError(t, err)
	second, err := e.Render("{{nome_morador}} deve {{valor_formatado}} até {{vencimento}}", ctx.EngineMap())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Template saves clear the cache while sends keep rendering on the shared
// engine; both must be safe to run at the same time.
func TestRenderConcurrentWithClearCache(t *testing.T) {
	e := NewEngine()
	ctx := noticeFixture().EngineMap()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			e.ClearCache()
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				out, err := e.Render("Olá {{nome_morador}}", ctx)
				assert.NoError(t, err)
				assert.Equal(t, "Olá ana souza", out)
			}
		}()
	}
	wg.Wait()
	<-done
}

func TestCompileError(t *testing.T) {
	e := NewEngine()

	_, err := e.Render("{{#if aberto}}sem fechamento", nil)
	require.Error(t, err)

	var compileErr *errs.TemplateCompileError
	assert.ErrorAs(t, err, &compileErr)
}

func TestValidate(t *testing.T) {
	e := NewEngine()
	assert.True(t, e.Validate("Olá {{nome}}"))
	assert.False(t, e.Validate("{{#if x}}aberto"))
}

func TestNullAmountRendersAsNotInformed(t *testing.T) {
	ctx := noticeFixture()
	ctx.Record.Amount = nil

	tokens := ctx.TokenMap()
	assert.Equal(t, "Não informado", tokens["{{valor_formatado}}"])
	assert.Equal(t, "", tokens["{{valor}}"])
}

func TestTokenMapSynonyms(t *testing.T) {
	tokens := noticeFixture().TokenMap()

	assert.Equal(t, tokens["{{nome}}"], tokens["{{nome_morador}}"])
	assert.Equal(t, tokens["{{condominio}}"], tokens["{{nome_condominio}}"])
	assert.Equal(t, tokens["{{vencimento}}"], tokens["{{data_vencimento}}"])
	assert.Equal(t, tokens["{{hoje}}"], tokens["{{data_atual}}"])
	assert.Equal(t, "Rua das Flores, 100, Centro, São Paulo, SP", tokens["{{endereco}}"])
	assert.Equal(t, "(11) 98765-4321", tokens["{{telefone}}"])
	assert.Equal(t, "03/2026", tokens["{{mes_referencia}}"])
}
