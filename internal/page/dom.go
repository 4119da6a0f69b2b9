// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package page

import (
	"strings"

	"golang.org/x/net/html"
)

// walk visits n and its descendants depth first. Returning false from fn
// skips the children of that node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if match(n) {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func controls(bar *html.Node) []*html.Node {
	return findAll(bar, func(n *html.Node) bool {
		return n.Data == "button" && hasAttr(n, AttrCategory)
	})
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
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

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func hasClass(n *html.Node, class string) bool {
	current, _ := getAttr(n, "class")
	for _, f := range strings.Fields(current) {
		if f == class {
			return true
		}
	}
	return false
}

// setClass adds or removes one class name.
func setClass(n *html.Node, class string, on bool) {
	current, _ := getAttr(n, "class")
	fields := strings.Fields(current)
	out := fields[:0]
	for _, f := range fields {
		if f != class {
			out = append(out, f)
		}
	}
	if on {
		out = append(out, class)
	}
	setAttr(n, "class", strings.Join(out, " "))
}
