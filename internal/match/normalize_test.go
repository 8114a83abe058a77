package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeQuestion(t *testing.T) {
	got := NormalizeQuestion("  Devemos ESCALAR a aquisição? Preço/LTV agora!  ")
	want := []string{"devemos", "escalar", "a", "aquisicao", "preco", "ltv", "agora"}
	if diff := cmp.Diff(want, got.Tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if got.Folded != "devemos escalar a aquisicao? preco/ltv agora!" {
		t.Fatalf("unexpected folded text %q", got.Folded)
	}
}

func TestKeywordSetFirst(t *testing.T) {
	set := NewKeywordSet("Aquisição", "tráfego", "escalar", "aquisicao", "")
	if diff := cmp.Diff(KeywordSet{"aquisicao", "trafego", "escalar"}, set); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name     string
		question string
		want     string
		ok       bool
	}{
		{name: "accented", question: "Vale investir em tráfego pago?", want: "trafego", ok: true},
		{name: "set order wins", question: "escalar o tráfego", want: "trafego", ok: true},
		{name: "word prefix", question: "escalaremos em breve", want: "escalar", ok: true},
		{name: "mid-word ignored", question: "reescalar depois", ok: false},
		{name: "no match", question: "qual a cor do logo?", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := set.First(NormalizeQuestion(tc.question))
			if ok != tc.ok || got != tc.want {
				t.Fatalf("First(%q) = %q, %v; want %q, %v", tc.question, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestKeywordMatchesWordStartsOnly(t *testing.T) {
	set := NewKeywordSet("produto", "escalar")
	tests := []struct {
		question string
		want     bool
	}{
		{"lançar um subproduto novo", false},
		{"devemos reescalar o time?", false},
		{"cortar produtos antigos", true},
		{"melhorias pós-produto", true},
		{"Escalaremos no próximo trimestre", true},
		{"aumentar a produção", false},
	}
	for _, tc := range tests {
		t.Run(tc.question, func(t *testing.T) {
			if got := set.Matches(NormalizeQuestion(tc.question)); got != tc.want {
				t.Fatalf("Matches(%q) = %v, want %v", tc.question, got, tc.want)
			}
		})
	}
}
