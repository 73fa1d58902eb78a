package browser

import (
	"fmt"
	"strings"
)

type By int

const (
	ByCSS By = iota
	ByXPath
)

func (b By) String() string {
	switch b {
	case ByCSS:
		return "css"
	case ByXPath:
		return "xpath"
	default:
		return fmt.Sprintf("By(%d)", int(b))
	}
}

// Locator describes how to find elements and, optionally, which part of
// them to read.
//
// An empty Selector addresses the container itself, which is how an
// attribute on a card root (data-sipp, data-id) is read. Contains keeps only
// elements whose text includes the string, compared case-insensitively.
type Locator struct {
	By       By
	Selector string
	Attr     string
	Contains string
}

func CSS(selector string) Locator {
	return Locator{By: ByCSS, Selector: selector}
}

func XPath(selector string) Locator {
	return Locator{By: ByXPath, Selector: selector}
}

// Self addresses the container an extraction runs against.
func Self() Locator {
	return Locator{By: ByCSS}
}

// WithAttr reads the named attribute instead of the element text.
func (l Locator) WithAttr(name string) Locator {
	l.Attr = name
	return l
}

// Containing filters matches by a case-insensitive text fragment.
func (l Locator) Containing(text string) Locator {
	l.Contains = text
	return l
}

func (l Locator) IsSelf() bool {
	return strings.TrimSpace(l.Selector) == ""
}

// MatchesText reports whether text passes the Contains filter.
func (l Locator) MatchesText(text string) bool {
	if l.Contains == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(l.Contains))
}

func (l Locator) String() string {
	var b strings.Builder
	b.WriteString(l.By.String())
	b.WriteString(":")
	if l.IsSelf() {
		b.WriteString("<self>")
	} else {
		b.WriteString(l.Selector)
	}
	if l.Attr != "" {
		b.WriteString("@")
		b.WriteString(l.Attr)
	}
	if l.Contains != "" {
		fmt.Fprintf(&b, "~%q", l.Contains)
	}
	return b.String()
}
