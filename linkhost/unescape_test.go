package linkhost

import "testing"

func TestUnescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"newline", `a\nb`, "a\nb"},
		{"carriage return", `a\rb`, "a\rb"},
		{"tab", `a\tb`, "a\tb"},
		{"octal", `\0101`, "A"},
		{"octal terminated by letter", `\0101z`, "Az"},
		{"octal terminated by escape", `\012\011`, "\n\t"},
		{"octal backslash", `\0134n`, `\n`},
		{"bare octal digits pass through", `\101`, `\101`},
		{"unknown escape passes through", `x\qy`, `x\qy`},
		{"trailing backslash", `abc\`, `abc\`},
		{"trailing octal", `\012`, "\n"},
		{"empty", "", ""},
		{"consecutive escapes", `\n\n`, "\n\n"},
		{"octal zero", `\00`, "\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unescape(tt.in); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"newline", "a\nb", `a\nb`},
		{"tab and return", "a\tb\rc", `a\tb\rc`},
		{"backslash", `a\b`, `a\0134b`},
		{"backslash then digit", `\5`, `\0134\065`},
		{"backslash then digits", `\57x`, `\0134\065\067x`},
		{"nul byte passes through", "\x00", "\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"a\nb\tc\rd",
		`back\slash`,
		`\5`,
		`\0134`,
		"\x00\x01\x02",
		"mixed \\ and \n and \x07",
		"ends with backslash\\",
		"digits after slash \\12345",
	}
	for _, in := range inputs {
		if got := Unescape(Escape(in)); got != in {
			t.Errorf("Unescape(Escape(%q)) = %q", in, got)
		}
	}
}

func FuzzEscapeRoundTrip(f *testing.F) {
	f.Add("hello")
	f.Add("a\nb")
	f.Add(`tricky\0134`)
	f.Add("\x00\x01")
	f.Add(`\5`)
	f.Fuzz(func(t *testing.T, s string) {
		if got := Unescape(Escape(s)); got != s {
			t.Errorf("Unescape(Escape(%q)) = %q", s, got)
		}
	})
}
