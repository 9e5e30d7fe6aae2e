// CLAUDE:SUMMARY Full tier for component source (JSX/TSX/Vue/Svelte): multi-line tag assembly and text extraction, no HTML parse.
package selext

import (
	"fmt"
	"regexp"
	"strings"
)

// Component source is not HTML — expressions, spreads and fragments choke
// a strict parser, so the full component tier assembles the element's
// opening tag across lines and pattern-matches it instead of parsing the
// whole file.

var reJSXText = regexp.MustCompile(`>\s*([^<>{}]+?)\s*<`)

// fullComponentTier extracts selectors for the element opening at (or
// nearest above) the target line of a component source file.
func fullComponentTier(src *sourceFile, line int) *Extraction {
	openLine := line
	for openLine > 1 && tagAt(src.lines[openLine-1]) == "" && line-openLine < fastScanRadius {
		openLine--
	}
	tag := tagAt(src.lines[openLine-1])
	if tag == "" {
		return nil
	}

	// The opening tag may span lines; accumulate until its closing ">"
	// or a bounded number of lines.
	start := strings.Index(strings.ToLower(src.lines[openLine-1]), "<"+tag)
	var b strings.Builder
	b.WriteString(src.lines[openLine-1][start:])
	closeLine := openLine
	for !strings.Contains(b.String(), ">") && closeLine < len(src.lines) && closeLine-openLine < attrScanRadius {
		closeLine++
		b.WriteString(" ")
		b.WriteString(src.lines[closeLine-1])
	}
	openTag := b.String()
	if i := strings.Index(openTag, ">"); i >= 0 {
		openTag = openTag[:i+1]
	}

	var out Extraction
	add := func(sel, reason string) {
		out.Selectors = append(out.Selectors, sel)
		out.Reasons = append(out.Reasons, reason)
	}

	if m := reTestID.FindStringSubmatch(openTag); m != nil {
		add(testidSelector(m[1]), fmt.Sprintf("testid %q on <%s>", m[1], tag))
	}
	if m := reRole.FindStringSubmatch(openTag); m != nil {
		add(roleSelector(m[1]), fmt.Sprintf("role %q on <%s>", m[1], tag))
	}
	if m := reAria.FindStringSubmatch(openTag); m != nil {
		add(ariaSelector(m[1]), fmt.Sprintf("aria-label %q on <%s>", m[1], tag))
	}
	if text := componentText(src, closeLine); text != "" {
		add(fmt.Sprintf("text=%q", text), fmt.Sprintf("text content of <%s>", tag))
	}
	if m := reDomID.FindStringSubmatch(openTag); m != nil {
		add("#"+m[1], fmt.Sprintf("id %q on <%s>", m[1], tag))
	}
	if m := reClass.FindStringSubmatch(openTag); m != nil {
		if sel := classSelector(tag, m[1]); sel != "" {
			add(sel, fmt.Sprintf("class %q on <%s>", m[1], tag))
		}
	}

	if len(out.Selectors) == 0 {
		return nil
	}
	return &out
}

// componentText pulls literal child text starting at the line where the
// opening tag closed. JSX expressions ({…}) are not literal text and are
// excluded by the pattern.
func componentText(src *sourceFile, fromLine int) string {
	for l := fromLine; l <= len(src.lines) && l < fromLine+3; l++ {
		if m := reJSXText.FindStringSubmatch(src.lines[l-1]); m != nil {
			text := strings.Join(strings.Fields(m[1]), " ")
			if text != "" && len(text) <= 40 {
				return text
			}
		}
	}
	return ""
}
