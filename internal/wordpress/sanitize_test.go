package wordpress

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strips tags", `<strong>Backend</strong> Engineer`, "Backend Engineer"},
		{"decodes known entities", "Sales &amp; Marketing &ndash; S&#039;o Paulo", "Sales & Marketing – S'o Paulo"},
		{"unknown entities pass through", "caf&eacute; &amp; bar", "caf&eacute; & bar"},
		{"trims whitespace", "  Engenheiro de Dados \n", "Engenheiro de Dados"},
		{"copyright and trademark", "Acme&reg; &copy; 2024 &trade;", "Acme® © 2024 ™"},
		{"nbsp becomes space", "Dev&nbsp;Ops", "Dev Ops"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractPostID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://x/?p=42", "42"},
		{"https://x/blog/?foo=1&p=42", "42"},
		{"https://x/2024/12345/", "12345"},
		{"https://x/2024/12345", "12345"},
		{"https://x/about/", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractPostID(tc.url); got != tc.want {
			t.Errorf("ExtractPostID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
