// CLAUDE:SUMMARY Regex-only fallback tier: best-effort selector from a two-line window, no timer needed.
package selext

import "fmt"

// heuristicTier is the floor under every other tier: a fixed two-line
// window, four regexes, no parsing. It runs untimed because its work is
// bounded by construction.
func heuristicTier(src *sourceFile, line int) *Extraction {
	for _, l := range scanOrder(line, 2, len(src.lines)) {
		text := src.lines[l-1]
		if m := reTestID.FindStringSubmatch(text); m != nil {
			return &Extraction{
				Selectors: []string{testidSelector(m[1])},
				Reasons:   []string{fmt.Sprintf("regex testid %q on line %d", m[1], l)},
			}
		}
		if m := reDomID.FindStringSubmatch(text); m != nil {
			return &Extraction{
				Selectors: []string{"#" + m[1]},
				Reasons:   []string{fmt.Sprintf("regex id %q on line %d", m[1], l)},
			}
		}
		if m := reClass.FindStringSubmatch(text); m != nil {
			if sel := classSelector(tagAt(text), m[1]); sel != "" {
				return &Extraction{
					Selectors: []string{sel},
					Reasons:   []string{fmt.Sprintf("regex class %q on line %d", m[1], l)},
				}
			}
		}
		if tag := tagAt(text); tag != "" {
			return &Extraction{
				Selectors: []string{tag},
				Reasons:   []string{fmt.Sprintf("bare tag <%s> on line %d", tag, l)},
			}
		}
	}
	return nil
}
