// Package template implements the placeholder grammar used to personalize
// outgoing messages.
//
// Two placeholder forms exist. The name placeholder ({имя} in the default
// grammar) inserts the contact's first name verbatim. The gender placeholder
// {м:текст|ж:текст} picks the male or female branch by the contact's gender;
// the male branch is also the fallback for unknown gender. Any other brace
// span is inert text.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vkblast/vkblast/core/model"
)

// Grammar fixes the locale tokens of the two placeholder forms. Matching is
// always case-insensitive.
type Grammar struct {
	NameToken string `json:"name_token"`
	MaleTag   string `json:"male_tag"`
	FemaleTag string `json:"female_tag"`
}

// DefaultGrammar returns the VK deployment grammar: {имя} and {м:...|ж:...}.
func DefaultGrammar() Grammar {
	return Grammar{NameToken: "имя", MaleTag: "м", FemaleTag: "ж"}
}

// SetDefaults fills empty tokens from DefaultGrammar.
func (g *Grammar) SetDefaults() {
	def := DefaultGrammar()
	if g.NameToken == "" {
		g.NameToken = def.NameToken
	}
	if g.MaleTag == "" {
		g.MaleTag = def.MaleTag
	}
	if g.FemaleTag == "" {
		g.FemaleTag = def.FemaleTag
	}
}

// Engine validates templates and renders them against contacts. It is
// stateless apart from the compiled grammar and safe for concurrent use.
type Engine struct {
	g        Grammar
	nameRe   *regexp.Regexp
	genderRe *regexp.Regexp
	spanRe   *regexp.Regexp
}

// New compiles an engine for the grammar.
func New(g Grammar) *Engine {
	g.SetDefaults()
	male := regexp.QuoteMeta(g.MaleTag)
	female := regexp.QuoteMeta(g.FemaleTag)
	return &Engine{
		g:      g,
		nameRe: regexp.MustCompile(`(?i)\{` + regexp.QuoteMeta(g.NameToken) + `\}`),
		// Male branch may not contain '|', female branch may not contain '}'.
		genderRe: regexp.MustCompile(`(?i)\{` + male + `:[^|{}]*\|` + female + `:[^{}]*\}`),
		spanRe:   regexp.MustCompile(`\{[^{}]*\}`),
	}
}

// Grammar returns the engine's grammar.
func (e *Engine) Grammar() Grammar { return e.g }

// Validate checks the template for malformed placeholders. It is a pure
// function of the template string and must pass before any send that uses
// the template. A nil result means every brace span is either a valid
// placeholder or inert text.
func (e *Engine) Validate(tpl string) error { return e.checkSpans(tpl) }

// Render substitutes the name placeholder, resolves gender placeholders and
// verifies that no placeholder-like span survived substitution. On any
// failure the returned text is empty, never a partially substituted string.
//
// Render re-runs the span check itself so it stays safe to call without a
// prior Validate, e.g. for live preview.
func (e *Engine) Render(tpl string, c *model.Contact) (string, error) {
	if err := e.checkSpans(tpl); err != nil {
		return "", err
	}
	out := e.nameRe.ReplaceAllLiteralString(tpl, c.FirstName)
	out = e.genderRe.ReplaceAllStringFunc(out, func(span string) string {
		male, female := e.splitGenderSpan(span)
		if c.Gender == model.GenderFemale {
			return female
		}
		return male
	})
	// Substituted values insert raw text, so a first name or branch text can
	// reintroduce something that looks like a placeholder. The leftover scan
	// applies the same suspicion test checkSpans uses, so a span that was
	// inert at validation time stays inert here.
	name := strings.ToLower("{" + e.g.NameToken + "}")
	for _, span := range e.spanRe.FindAllString(out, -1) {
		lower := strings.ToLower(span)
		if lower == name || e.suspiciousSpan(lower) {
			return "", fmt.Errorf("rendered text still contains placeholder-like span %q", span)
		}
	}
	return out, nil
}

// checkSpans scans every brace span of the raw template. The exact name
// placeholder is ignored. A span that looks like an attempted gender
// placeholder (a tag followed by ':' or a '|' inside) must match the full
// two-branch grammar. Everything else is inert.
//
// Both Validate and Render call this one routine, so the two paths cannot
// drift apart.
func (e *Engine) checkSpans(tpl string) error {
	name := strings.ToLower("{" + e.g.NameToken + "}")
	for _, span := range e.spanRe.FindAllString(tpl, -1) {
		lower := strings.ToLower(span)
		if lower == name || !e.suspiciousSpan(lower) {
			continue
		}
		if e.genderRe.FindString(span) != span {
			return fmt.Errorf("invalid gender placeholder %q: expected {%s:male text|%s:female text}",
				span, e.g.MaleTag, e.g.FemaleTag)
		}
	}
	return nil
}

// suspiciousSpan reports whether a lowercased brace span looks like an
// attempted gender placeholder: a tag followed by ':' or a '|' inside.
// Anything else is inert text.
func (e *Engine) suspiciousSpan(lower string) bool {
	return strings.Contains(lower, strings.ToLower(e.g.MaleTag)+":") ||
		strings.Contains(lower, strings.ToLower(e.g.FemaleTag)+":") ||
		strings.Contains(lower, "|")
}

// splitGenderSpan returns the two branch texts of a span already known to
// match genderRe.
func (e *Engine) splitGenderSpan(span string) (male, female string) {
	interior := span[1 : len(span)-1]
	bar := strings.Index(interior, "|")
	male = interior[:bar]
	female = interior[bar+1:]
	male = male[strings.Index(male, ":")+1:]
	female = female[strings.Index(female, ":")+1:]
	return male, female
}
