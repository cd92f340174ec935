package savvy

import "testing"

func TestWordIDFromURI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		uri string
		id  string
		ok  bool
	}{
		{uri: "sign/HELLO/42", id: "42", ok: true},
		{uri: "sign/hello-7", id: "7", ok: true},
		{uri: "42", id: "42", ok: true},
		{uri: "sign/HELLO", id: "", ok: false},
		{uri: "sign/HE42LLO", id: "", ok: false},
		{uri: "", id: "", ok: false},
	}

	for _, tc := range cases {
		id, ok := WordIDFromURI(tc.uri)
		if id != tc.id || ok != tc.ok {
			t.Fatalf("WordIDFromURI(%q) = (%q, %v), want (%q, %v)", tc.uri, id, ok, tc.id, tc.ok)
		}
	}
}

func TestSentenceURI(t *testing.T) {
	t.Parallel()

	cases := []struct {
		uri  string
		want string
	}{
		{uri: "sentences/greetings/5", want: "greetings/5"},
		{uri: "greetings/5", want: "greetings/5"},
		{uri: "sentences/a/sentences/b", want: "a/b"},
	}

	for _, tc := range cases {
		if got := SentenceURI(tc.uri); got != tc.want {
			t.Fatalf("SentenceURI(%q) = %q, want %q", tc.uri, got, tc.want)
		}
	}
}
