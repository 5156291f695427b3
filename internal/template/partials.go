package template

// Letter fragments shared by every template. Each one is gated by a boolean
// context flag so a template (or the email shell) can opt sections in and out.
func partials() map[string]string {
	return map[string]string{
		"header": `{{#if mostrarCabecalho}}<div style="text-align:center;margin-bottom:16px;">` +
			`<img src="{{imagemCabecalho}}" alt="Cabeçalho" style="max-width:100%;"/></div>{{/if}}`,

		"footer": `{{#if mostrarRodape}}<div style="text-align:center;margin-top:16px;">` +
			`<img src="{{imagemRodape}}" alt="Rodapé" style="max-width:100%;"/></div>{{/if}}`,

		"residentInfo": `{{#if mostrarMorador}}<p><strong>{{nome_morador}}</strong><br/>` +
			`{{unit bloco apartamento}}<br/>{{email}}</p>{{/if}}`,

		"condominiumInfo": `{{#if mostrarCondominio}}<p><strong>{{nome_condominio}}</strong><br/>` +
			`{{endereco_condominio}}<br/>{{cidade}} - {{estado}}</p>{{/if}}`,

		"billingInfo": `{{#if mostrarCobranca}}<p>Referência: {{mes_referencia}}<br/>` +
			`Valor: {{valor_formatado}}<br/>Vencimento: {{data_vencimento}}</p>{{/if}}`,
	}
}
