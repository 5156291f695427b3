// Package template renders billing-notice letters. The primary path is a
// handlebars engine with domain helpers and partials; Substitute is the
// plain token-replacement fallback used when the engine cannot render and
// as the fast path for bulk imports.
package template

import (
	"sync"
	"time"

	"github.com/mailgun/raymond/v2"

	"notifica/internal/errs"
)

// Engine compiles and renders letter templates, caching compiled templates
// by source so repeated sends of the same letter skip the parse step.
type Engine struct {
	cache sync.Map // map[string]*raymond.Template
	now   func() time.Time
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Compile parses source and registers the helper and partial catalogs.
func (e *Engine) Compile(source string) (*raymond.Template, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, &errs.TemplateCompileError{Err: err}
	}
	tpl.RegisterHelpers(e.helpers())
	tpl.RegisterPartials(partials())
	return tpl, nil
}

// Render executes source against ctx. Callers are expected to fall back to
// Substitute when an error is returned; a broken template must never block
// notice delivery.
func (e *Engine) Render(source string, ctx map[string]interface{}) (string, error) {
	var tpl *raymond.Template

	if cached, ok := e.cache.Load(source); ok {
		tpl = cached.(*raymond.Template)
	} else {
		compiled, err := e.Compile(source)
		if err != nil {
			return "", err
		}
		e.cache.Store(source, compiled)
		tpl = compiled
	}

	out, err := tpl.Exec(ctx)
	if err != nil {
		return "", &errs.TemplateCompileError{Err: err}
	}
	return out, nil
}

// Validate reports whether source compiles.
func (e *Engine) Validate(source string) bool {
	_, err := raymond.Parse(source)
	return err == nil
}

// ClearCache drops all compiled templates, e.g. after a template update.
// Entries are deleted in place; reassigning the map would race with
// concurrent Render calls.
func (e *Engine) ClearCache() {
	e.cache.Range(func(key, _ interface{}) bool {
		e.cache.Delete(key)
		return true
	})
}
