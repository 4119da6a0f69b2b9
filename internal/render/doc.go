// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

// Package render turns a bar Context into a detached HTML fragment.
//
// Rendering never touches the host page. The caller attaches Fragment.Root
// wherever it wants and then calls Fragment.Activate once.
//
// TemplateRenderer executes html/template templates extended with the sprig
// function set. Glyphs from configuration are stripped of markup with
// bluemonday before they reach a template.
package render
