package mailer

import (
	"go.uber.org/zap"

	"notifica/internal/models"
	"notifica/internal/template"
)

// emailShell wraps the rendered letter body with the shared header and
// footer partials. The body is injected raw: it is already-rendered HTML.
const emailShell = `{{> header}}
<div style="font-family:Arial,sans-serif;max-width:640px;margin:0 auto;">{{{conteudo}}}</div>
{{> footer}}`

// Composed is a ready-to-send email: final HTML plus any CID attachments.
type Composed struct {
	HTML        string
	Attachments []models.EmailAttachment
}

// Assembler renders a letter template into a deliverable email. The embed
// strategy (CID attachment vs inline base64) is chosen by the caller, as is
// the render path: with a nil Engine the assembler runs on plain token
// substitution only, which is what the high-volume bulk import uses.
type Assembler struct {
	Engine   *template.Engine
	Embedder ImageEmbedder
	Log      *zap.Logger
}

// BuildNotice renders subject and body for one billing notice. Body render
// failures fall back to plain token substitution; a broken template must
// never block delivery.
func (a *Assembler) BuildNotice(tpl models.LetterTemplate, ctx template.NoticeContext) (string, *Composed, error) {
	tokens := ctx.TokenMap()
	subject := template.Substitute(tpl.Subject, tokens)

	if a.Engine == nil {
		return subject, a.buildFast(tpl, tokens), nil
	}

	engineCtx := ctx.EngineMap()

	body, err := a.Engine.Render(tpl.Content, engineCtx)
	if err != nil {
		a.Log.Warn("template render failed, using substitution fallback",
			zap.Int64("template_id", tpl.ID), zap.Error(err))
		body = template.Substitute(tpl.Content, tokens)
	}

	composed := &Composed{}

	if img := a.embed(tpl.HeaderImageRef, "header"); img != nil {
		engineCtx["mostrarCabecalho"] = true
		engineCtx["imagemCabecalho"] = img.Ref
		if img.Attachment != nil {
			composed.Attachments = append(composed.Attachments, *img.Attachment)
		}
	}
	if img := a.embed(tpl.FooterImageRef, "footer"); img != nil {
		engineCtx["mostrarRodape"] = true
		engineCtx["imagemRodape"] = img.Ref
		if img.Attachment != nil {
			composed.Attachments = append(composed.Attachments, *img.Attachment)
		}
	}

	engineCtx["conteudo"] = body

	html, err := a.Engine.Render(emailShell, engineCtx)
	if err != nil {
		a.Log.Warn("email shell render failed, sending bare body", zap.Error(err))
		html = body
	}

	composed.HTML = html
	return subject, composed, nil
}

// buildFast is the substitution-only path: no handlebars, header and footer
// images wrapped around the body directly.
func (a *Assembler) buildFast(tpl models.LetterTemplate, tokens map[string]string) *Composed {
	body := template.Substitute(tpl.Content, tokens)
	composed := &Composed{}

	var prefix, suffix string
	if img := a.embed(tpl.HeaderImageRef, "header"); img != nil {
		prefix = `<div style="text-align:center;margin-bottom:16px;"><img src="` +
			img.Ref + `" alt="Cabeçalho" style="max-width:100%;"/></div>`
		if img.Attachment != nil {
			composed.Attachments = append(composed.Attachments, *img.Attachment)
		}
	}
	if img := a.embed(tpl.FooterImageRef, "footer"); img != nil {
		suffix = `<div style="text-align:center;margin-top:16px;"><img src="` +
			img.Ref + `" alt="Rodapé" style="max-width:100%;"/></div>`
		if img.Attachment != nil {
			composed.Attachments = append(composed.Attachments, *img.Attachment)
		}
	}

	composed.HTML = prefix +
		`<div style="font-family:Arial,sans-serif;max-width:640px;margin:0 auto;">` +
		body + `</div>` + suffix
	return composed
}

func (a *Assembler) embed(ref, role string) *EmbeddedImage {
	if ref == "" || a.Embedder == nil {
		return nil
	}
	img, err := a.Embedder.Embed(ref, role)
	if err != nil {
		a.Log.Warn("image embed failed, omitting",
			zap.String("role", role), zap.Error(err))
		return nil
	}
	return img
}
