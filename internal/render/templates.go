// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package render

var builtinTemplates = map[string]string{
	TemplateBar: `<div class="reactbar reactbar-{{ ternary "compact" "expanded" .Compact }}"` +
		` data-reactbar-bar="{{ .EntityID }}" data-provenance="{{ .Provenance }}" data-total="{{ .Total }}">` +
		`{{- range .Categories -}}` +
		`<button type="button" class="reactbar-emoji{{ if .Selected }} selected{{ end }}" data-category="{{ .Key }}"` +
		` aria-pressed="{{ .Selected }}"{{ if .Highlight }} data-highlight="{{ .Highlight }}"{{ end }}{{ if not .Interactive }} disabled{{ end }}>` +
		`<span class="glyph">{{ .Glyph }}</span>` +
		`{{ if gt .Count 0 }}<span class="count">{{ .Count }}</span>{{ end }}` +
		`</button>` +
		`{{- end -}}` +
		`{{ if not .HasPositive }}<span class="reactbar-empty"></span>{{ end }}` +
		`</div>`,

	TemplateSkeleton: `<div class="reactbar reactbar-skeleton reactbar-{{ ternary "compact" "expanded" .Compact }}"` +
		` data-reactbar-skeleton="{{ .EntityID }}" aria-busy="true"></div>`,
}
