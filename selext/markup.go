// CLAUDE:SUMMARY Full-parse markup tier: x/net/html walk, attribute harvest, text selector, structural CSS path.
package selext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fullMarkupTier parses the whole document and derives everything it can
// about the element at the target line: its own attributes, a text
// selector, and a structural nth-of-type path as the least stable (and
// last) resort.
//
// The HTML parser does not preserve source positions, so the target node
// is identified by counting start tags: the element is the k-th <tag> in
// the raw source, and the walk finds the k-th parsed element of that tag.
func fullMarkupTier(src *sourceFile, line int) *Extraction {
	tag, occurrence := tagOccurrenceAt(src, line)
	if tag == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(src.raw))
	if err != nil {
		return nil
	}
	node := nthElement(doc, tag, occurrence)
	if node == nil {
		return nil
	}

	var out Extraction
	add := func(sel, reason string) {
		out.Selectors = append(out.Selectors, sel)
		out.Reasons = append(out.Reasons, reason)
	}

	var id, class string
	for _, a := range node.Attr {
		switch a.Key {
		case "data-testid", "data-test-id", "data-cy":
			add(testidSelector(a.Val), fmt.Sprintf("parsed testid %q on <%s>", a.Val, tag))
		case "role":
			add(roleSelector(a.Val), fmt.Sprintf("parsed role %q on <%s>", a.Val, tag))
		case "aria-label":
			add(ariaSelector(a.Val), fmt.Sprintf("parsed aria-label %q on <%s>", a.Val, tag))
		case "id":
			id = a.Val
		case "class":
			class = a.Val
		}
	}

	if text := elementText(node); text != "" && len(text) <= 40 {
		add(fmt.Sprintf("text=%q", text), fmt.Sprintf("text content of <%s>", tag))
	}
	if id != "" {
		add("#"+id, fmt.Sprintf("parsed id %q", id))
	}
	if class != "" {
		if sel := classSelector(tag, class); sel != "" {
			add(sel, fmt.Sprintf("parsed class %q", class))
		}
	}
	if path := structuralPath(node); path != "" {
		add(path, "structural nth-of-type path")
	}

	if len(out.Selectors) == 0 {
		return nil
	}
	return &out
}

// tagOccurrenceAt returns the tag name opening at (or nearest above) line
// and its 1-based occurrence index among equal tags in the source so far.
func tagOccurrenceAt(src *sourceFile, line int) (string, int) {
	tagLine := line
	tag := tagAt(src.lines[tagLine-1])
	for tag == "" && tagLine > 1 && line-tagLine < fastScanRadius {
		tagLine--
		tag = tagAt(src.lines[tagLine-1])
	}
	if tag == "" {
		return "", 0
	}

	occurrence := 0
	needle := "<" + tag
	for l := 1; l <= tagLine; l++ {
		text := strings.ToLower(src.lines[l-1])
		limit := len(text)
		for i := 0; i < limit; {
			j := strings.Index(text[i:], needle)
			if j < 0 {
				break
			}
			at := i + j
			end := at + len(needle)
			// Reject prefix matches like <lion for <li.
			if end >= len(text) || !isTagNameChar(text[end]) {
				occurrence++
			}
			i = end
		}
	}
	return tag, occurrence
}

func isTagNameChar(c byte) bool {
	return c == '-' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// nthElement walks the parsed tree in document order and returns the n-th
// element with the given tag name.
func nthElement(doc *html.Node, tag string, n int) *html.Node {
	var found *html.Node
	count := 0
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if found != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == tag {
			count++
			if count == n {
				found = node
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// elementText collapses the element's text content to single-spaced form.
func elementText(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(b.String()), " ")
}

// structuralPath builds a child-combinator path from body down to node,
// disambiguating siblings with :nth-of-type. Stops at body: html/body
// prefixes add nothing.
func structuralPath(node *html.Node) string {
	var segments []string
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if n.DataAtom == atom.Body || n.DataAtom == atom.Html {
			break
		}
		segments = append([]string{segment(n)}, segments...)
	}
	return strings.Join(segments, " > ")
}

func segment(node *html.Node) string {
	index := 1
	for sib := node.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == node.Data {
			index++
		}
	}
	total := index
	for sib := node.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode && sib.Data == node.Data {
			total++
		}
	}
	if total == 1 {
		return node.Data
	}
	return fmt.Sprintf("%s:nth-of-type(%d)", node.Data, index)
}
