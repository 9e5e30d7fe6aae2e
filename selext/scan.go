// CLAUDE:SUMMARY Line-window attribute scanning shared by the fast and attribute tiers.
package selext

import (
	"fmt"
	"regexp"
	"strings"
)

// Attribute patterns cover both markup (class=) and component (className=)
// spellings, and tolerate JSX brace wrapping around string literals.
var (
	reTestID = regexp.MustCompile(`(?:data-testid|data-test-id|data-cy)\s*=\s*\{?["']([^"']+)["']`)
	reRole   = regexp.MustCompile(`\brole\s*=\s*\{?["']([^"']+)["']`)
	reAria   = regexp.MustCompile(`\baria-label\s*=\s*\{?["']([^"']+)["']`)
	reDomID  = regexp.MustCompile(`\bid\s*=\s*\{?["']([^"']+)["']`)
	reClass  = regexp.MustCompile(`\b(?:className|class)\s*=\s*\{?["']([^"']+)["']`)
	reTag    = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9-]*)`)
)

const (
	fastScanRadius = 5
	attrScanRadius = 10
)

// fastTier finds only the highest-confidence attribute: a test id on or
// near the target line. Nearest line wins; on the target line itself the
// occurrence closest to column wins.
func fastTier(src *sourceFile, line, column int) *Extraction {
	for _, l := range scanOrder(line, fastScanRadius, len(src.lines)) {
		text := src.lines[l-1]
		locs := reTestID.FindAllStringSubmatchIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		best := locs[0]
		if l == line && len(locs) > 1 {
			for _, loc := range locs[1:] {
				if abs(loc[0]-column) < abs(best[0]-column) {
					best = loc
				}
			}
		}
		value := text[best[2]:best[3]]
		return &Extraction{
			Selectors: []string{testidSelector(value)},
			Reasons:   []string{fmt.Sprintf("testid %q on line %d", value, l)},
		}
	}
	return nil
}

// attrTier broadens the scan to role, aria-label, id and class attributes
// over a wider window. Candidates are ordered testid, role, aria-label,
// id, classes.
func attrTier(src *sourceFile, line int) *Extraction {
	var out Extraction
	add := func(sel, reason string) {
		for _, s := range out.Selectors {
			if s == sel {
				return
			}
		}
		out.Selectors = append(out.Selectors, sel)
		out.Reasons = append(out.Reasons, reason)
	}

	for _, l := range scanOrder(line, attrScanRadius, len(src.lines)) {
		text := src.lines[l-1]
		if m := reTestID.FindStringSubmatch(text); m != nil {
			add(testidSelector(m[1]), fmt.Sprintf("testid %q on line %d", m[1], l))
		}
	}
	for _, l := range scanOrder(line, attrScanRadius, len(src.lines)) {
		text := src.lines[l-1]
		if m := reRole.FindStringSubmatch(text); m != nil {
			add(roleSelector(m[1]), fmt.Sprintf("role %q on line %d", m[1], l))
		}
		if m := reAria.FindStringSubmatch(text); m != nil {
			add(ariaSelector(m[1]), fmt.Sprintf("aria-label %q on line %d", m[1], l))
		}
	}
	for _, l := range scanOrder(line, attrScanRadius, len(src.lines)) {
		text := src.lines[l-1]
		if m := reDomID.FindStringSubmatch(text); m != nil {
			add("#"+m[1], fmt.Sprintf("id %q on line %d", m[1], l))
		}
		if m := reClass.FindStringSubmatch(text); m != nil {
			if sel := classSelector(tagAt(text), m[1]); sel != "" {
				add(sel, fmt.Sprintf("class %q on line %d", m[1], l))
			}
		}
	}

	if len(out.Selectors) == 0 {
		return nil
	}
	return &out
}

// scanOrder yields 1-based lines by distance from center: center, ±1, ±2…
// clamped to [1, max].
func scanOrder(center, radius, max int) []int {
	order := make([]int, 0, 2*radius+1)
	appendIf := func(l int) {
		if l >= 1 && l <= max {
			order = append(order, l)
		}
	}
	appendIf(center)
	for d := 1; d <= radius; d++ {
		appendIf(center - d)
		appendIf(center + d)
	}
	return order
}

func tagAt(text string) string {
	if m := reTag.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

func testidSelector(v string) string { return fmt.Sprintf("[data-testid=%q]", v) }
func roleSelector(v string) string   { return fmt.Sprintf("[role=%q]", v) }
func ariaSelector(v string) string   { return fmt.Sprintf("[aria-label=%q]", v) }

// classSelector builds tag.a.b from a whitespace-separated class list.
// Component-framework hashed classes (css-x1y2) are skipped; they churn on
// every build.
func classSelector(tag, classes string) string {
	var parts []string
	for _, c := range strings.Fields(classes) {
		if strings.HasPrefix(c, "css-") || strings.ContainsAny(c, "{}$") {
			continue
		}
		parts = append(parts, "."+c)
	}
	if len(parts) == 0 {
		return ""
	}
	return tag + strings.Join(parts, "")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
