package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Sommerfest 2026", "sommerfest-2026"},
		{"Fröhliche Weihnacht", "froehliche-weihnacht"},
		{"  spaced   out  ", "spaced-out"},
		{"Greißle & Söhne GmbH", "greissle-soehne-gmbh"},
		{"already-slugged", "already-slugged"},
	}
	for _, c := range cases {
		if got := Make(c.in); got != c.want {
			t.Errorf("Make(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
