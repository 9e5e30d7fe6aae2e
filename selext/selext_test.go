package selext_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mooragehq/moorage/selext"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFastTierTestID(t *testing.T) {
	path := writeSource(t, "Login.tsx", `export function LoginForm() {
  return (
    <form>
      <button data-testid="login-submit" role="button">Sign in</button>
    </form>
  );
}
`)
	res, err := selext.Extract(context.Background(), path, 4, 6, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || len(res.Selectors) == 0 {
		t.Fatal("no extraction")
	}
	if res.Selectors[0] != `[data-testid="login-submit"]` {
		t.Fatalf("selector = %q, want testid selector", res.Selectors[0])
	}
	if len(res.Reasons) == 0 {
		t.Fatal("reasons must not be empty")
	}
}

func TestFastTierNearestLine(t *testing.T) {
	path := writeSource(t, "Form.tsx", `<form>
  <input data-testid="email" />
  <label>password</label>
  <input data-testid="password" type="password" />
</form>
`)
	res, err := selext.Extract(context.Background(), path, 4, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Selectors[0] != `[data-testid="password"]` {
		t.Fatalf("selector = %q, want the testid on the target line", res.Selectors[0])
	}
}

func TestAttrTierWhenNoTestID(t *testing.T) {
	path := writeSource(t, "Nav.html", `<nav role="navigation" aria-label="Main menu" id="main-nav" class="nav dark">
  <a href="/">home</a>
</nav>
`)
	res, err := selext.Extract(context.Background(), path, 1, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`[role="navigation"]`, `[aria-label="Main menu"]`, "#main-nav", "nav.nav.dark"}
	if len(res.Selectors) != len(want) {
		t.Fatalf("selectors = %v, want %v", res.Selectors, want)
	}
	for i := range want {
		if res.Selectors[i] != want[i] {
			t.Fatalf("selectors[%d] = %q, want %q", i, res.Selectors[i], want[i])
		}
	}
}

func TestFullMarkupTierTextAndPath(t *testing.T) {
	path := writeSource(t, "page.html", `<html>
<body>
<main>
<section>
<p>hello there</p>
<button>Save changes</button>
</section>
</main>
</body>
</html>
`)
	res, err := selext.Extract(context.Background(), path, 6, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res == nil {
		t.Fatal("no extraction")
	}
	if res.Selectors[0] != `text="Save changes"` {
		t.Fatalf("selectors[0] = %q, want text selector", res.Selectors[0])
	}
	last := res.Selectors[len(res.Selectors)-1]
	if last != "main > section > button" {
		t.Fatalf("structural path = %q, want main > section > button", last)
	}
}

func TestFullMarkupTierNthOfType(t *testing.T) {
	path := writeSource(t, "list.html", `<html>
<body>
<ul>
<li>one one one one one one one one one one one</li>
<li>two two two two two two two two two two two</li>
<li>three three three three three three three three</li>
</ul>
</body>
</html>
`)
	res, err := selext.Extract(context.Background(), path, 5, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range res.Selectors {
		if s == "ul > li:nth-of-type(2)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("selectors = %v, want nth-of-type path for the second li", res.Selectors)
	}
}

func TestFullComponentTierLiteralText(t *testing.T) {
	path := writeSource(t, "Save.tsx", `export function Save({ onClick }) {
  return <button>Save draft</button>;
}
`)
	res, err := selext.Extract(context.Background(), path, 2, 10, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Selectors[0] != `text="Save draft"` {
		t.Fatalf("extraction = %+v, want text selector first", res)
	}
}

func TestHeuristicFallbackBareTag(t *testing.T) {
	path := writeSource(t, "Chart.tsx", `<canvas
  width={size}
/>
`)
	res, err := selext.Extract(context.Background(), path, 1, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.Selectors[0] != "canvas" {
		t.Fatalf("extraction = %+v, want bare tag fallback", res)
	}
}

func TestExtractNothingDerivable(t *testing.T) {
	path := writeSource(t, "notes.html", `just prose
more prose
`)
	res, err := selext.Extract(context.Background(), path, 1, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Fatalf("extraction = %+v, want nil", res)
	}
}

func TestExtractMissingFileErrors(t *testing.T) {
	_, err := selext.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.html"), 1, 0, selext.Config{})
	if err == nil {
		t.Fatal("want error for unreadable source file")
	}
}

func TestCancelledContextSkipsTimedTiers(t *testing.T) {
	path := writeSource(t, "Login.tsx", `<button data-testid="login-submit">Sign in</button>
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := selext.Extract(ctx, path, 1, 0, selext.Config{})
	if err != nil {
		t.Fatal(err)
	}
	// Timed tiers are skipped under a dead context; the untimed heuristic
	// still delivers a safe candidate.
	if res == nil || res.Selectors[0] != `[data-testid="login-submit"]` {
		t.Fatalf("extraction = %+v, want heuristic testid", res)
	}
	if !strings.Contains(res.Reasons[0], "heuristic") {
		t.Fatalf("reasons = %v, want heuristic provenance", res.Reasons)
	}
}
