// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhtml "html"
	"html/template"
	"strings"

	"github.com/Masterminds/sprig"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ActiveAttr is set on a fragment root once it has been activated.
const ActiveAttr = "data-reactbar-active"

// ErrUnknownTemplate is returned for a template name that is not defined.
var ErrUnknownTemplate = errors.New("unknown template")

// Fragment is a detached DOM subtree plus the routine to run after attach.
type Fragment struct {
	Root     *html.Node
	Activate func() error
}

// Renderer builds fragments from named templates.
type Renderer interface {
	Render(ctx context.Context, name string, data Context) (*Fragment, error)
}

// TemplateRenderer renders the built-in bar and skeleton templates.
// Safe for concurrent use.
type TemplateRenderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewTemplateRenderer parses the built-in templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl := template.New("reactbar").Funcs(sprig.FuncMap())
	for name, src := range builtinTemplates {
		if _, err := tmpl.New(name).Parse(src); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}
	return &TemplateRenderer{tmpl: tmpl, policy: bluemonday.StrictPolicy()}, nil
}

// Render implements Renderer.
func (r *TemplateRenderer) Render(ctx context.Context, name string, data Context) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := r.tmpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	data.Categories = r.sanitize(data.Categories)

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}

	root, err := parseSingle(&buf)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}

	return &Fragment{
		Root: root,
		Activate: func() error {
			if root.Parent == nil {
				return errors.New("activate: fragment is not attached")
			}
			setAttr(root, ActiveAttr, "true")
			return nil
		},
	}, nil
}

// sanitize strips markup from glyphs. The slice is copied so the caller's
// context is untouched.
func (r *TemplateRenderer) sanitize(in []Category) []Category {
	out := make([]Category, len(in))
	for i, c := range in {
		c.Glyph = stdhtml.UnescapeString(r.policy.Sanitize(c.Glyph))
		out[i] = c
	}
	return out
}

// parseSingle parses rendered markup and returns its one element root.
func parseSingle(buf *bytes.Buffer) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(buf, body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	var root *html.Node
	for _, n := range nodes {
		switch {
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
			continue
		case n.Type == html.ElementNode && root == nil:
			root = n
		default:
			return nil, errors.New("fragment must have exactly one root element")
		}
	}
	if root == nil {
		return nil, errors.New("fragment is empty")
	}
	return root, nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
