package signals

import (
	"reflect"
	"strings"
	"testing"
)

func newTestDetector(t *testing.T) *LexiconDetector {
	t.Helper()
	d, err := NewLexiconDetector(nil)
	if err != nil {
		t.Fatalf("NewLexiconDetector: %v", err)
	}
	return d
}

func TestDetect_SingleSignals(t *testing.T) {
	d := newTestDetector(t)

	tests := []struct {
		text string
		want string
	}{
		{"O que eu faço com essa situação?", SignalGuidanceRequest},
		{"Você já disse isso antes", SignalRepetitionComplaint},
		{"Não sei se devo continuar ou desistir", SignalAmbivalence},
		{"Você não entende nada do que eu vivo", SignalDefensive},
		{"A culpa é minha, eu falhei com todos", SignalGuilt},
		{"Não aguento mais essa dor", SignalDeepSuffering},
		{"Não vejo saída para nada disso", SignalExplicitDespair},
		{"Tenho lido a Bíblia todos os dias", SignalSpiritualContext},
		{"Sinto que Deus me abandonou", SignalHighSpiritualNeed},
		{"Queria falar com o pastor pessoalmente", SignalInstitutional},
		{"Ore por mim, por favor", SignalPrayerRequest},
		{"Obrigado por hoje, boa noite", SignalClosing},
		{"Pode ser, vou tentar", SignalAgreement},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := d.Detect(tt.text)
			found := false
			for _, name := range got.Active() {
				if name == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("Detect(%q) active=%v, want to include %q", tt.text, got.Active(), tt.want)
			}
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d := newTestDetector(t)
	text := "Não sei se devo falar com o pastor, me ajuda"

	first := d.Detect(text)
	for i := 0; i < 5; i++ {
		if got := d.Detect(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestDetect_Empty(t *testing.T) {
	d := newTestDetector(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		got := d.Detect(text)
		if got.Any() {
			t.Errorf("Detect(%q) = %v, want no signals", text, got.Active())
		}
	}
}

func TestDetect_MultipleSignals(t *testing.T) {
	d := newTestDetector(t)

	got := d.Detect("A culpa é minha, não sei mais o que fazer com meu filho")
	if !got.Guilt {
		t.Error("expected guilt")
	}
	if !got.FamilyImpotence {
		t.Error("expected family_conflict_impotence")
	}
	if len(got.Active()) < 2 {
		t.Errorf("expected multiple signals, got %v", got.Active())
	}
}

func TestDetect_AccentInsensitive(t *testing.T) {
	d := newTestDetector(t)

	accented := d.Detect("Não agüento mais, sem forças")
	plain := d.Detect("Nao aguento mais, sem forcas")

	if !accented.DeepSuffering || !plain.DeepSuffering {
		t.Errorf("deep_suffering should fire with and without accents: %v / %v",
			accented.Active(), plain.Active())
	}
}

func TestDetect_WordBoundaries(t *testing.T) {
	d := newTestDetector(t)

	// "fe" must not fire inside "feliz".
	if got := d.Detect("Estou muito feliz hoje"); got.SpiritualContext {
		t.Errorf("spiritual_context fired on 'feliz': %v", got.Active())
	}
	if got := d.Detect("Minha fé está abalada"); !got.SpiritualContext {
		t.Errorf("spiritual_context should fire on 'fé': %v", got.Active())
	}
	// "sim" must not fire inside "simples".
	if got := d.Detect("É uma pessoa simples"); got.Agreement {
		t.Errorf("agreement fired on 'simples': %v", got.Active())
	}
	if got := d.Detect("Sim, entendi"); !got.Agreement {
		t.Errorf("agreement should fire on bare 'sim': %v", got.Active())
	}
}

func TestDetect_RepetitiveGuiltRequiresRepetition(t *testing.T) {
	d := newTestDetector(t)

	alone := d.Detect("Me sinto culpado por tudo")
	if !alone.Guilt {
		t.Error("expected guilt")
	}
	if alone.RepetitiveGuilt {
		t.Error("repetitive_guilt must not fire without a repetition marker")
	}

	repeated := d.Detect("De novo me sinto culpado pela mesma coisa")
	if !repeated.RepetitiveGuilt {
		t.Errorf("repetitive_guilt should fire with marker: %v", repeated.Active())
	}
}

func TestDetect_FamilyImpotenceRequiresFamilyContext(t *testing.T) {
	d := newTestDetector(t)

	// Impotence language with no family mention.
	got := d.Detect("Já tentei de tudo no trabalho e nada funciona")
	if got.FamilyImpotence {
		t.Errorf("family_conflict_impotence must not fire without family context: %v", got.Active())
	}
}

func TestVulnerability(t *testing.T) {
	tests := []struct {
		name string
		set  Set
		want bool
	}{
		{"none", Set{Guilt: true}, false},
		{"deep suffering", Set{DeepSuffering: true}, true},
		{"repetitive guilt", Set{RepetitiveGuilt: true}, true},
		{"family impotence", Set{FamilyImpotence: true}, true},
		{"despair", Set{ExplicitDespair: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.Vulnerability(); got != tt.want {
				t.Errorf("Vulnerability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLexiconDetector_ExtraTerms(t *testing.T) {
	d, err := NewLexiconDetector(map[string][]string{
		SignalGuidanceRequest: {"preciso de luz"},
	})
	if err != nil {
		t.Fatalf("NewLexiconDetector: %v", err)
	}

	got := d.Detect("Preciso de luz nessa decisão")
	if !got.GuidanceRequest {
		t.Errorf("extra term should raise guidance_request: %v", got.Active())
	}
}

func TestNewLexiconDetector_UnknownSignal(t *testing.T) {
	_, err := NewLexiconDetector(map[string][]string{
		"no_such_signal": {"foo"},
	})
	if err == nil {
		t.Fatal("expected error for unknown signal in extra_terms")
	}
	if !strings.Contains(err.Error(), "no_such_signal") {
		t.Errorf("error should name the bad signal, got: %v", err)
	}
}

func TestActive_OrderStable(t *testing.T) {
	s := Set{Guilt: true, GuidanceRequest: true, Closing: true}
	want := []string{SignalGuidanceRequest, SignalGuilt, SignalClosing}
	if got := s.Active(); !reflect.DeepEqual(got, want) {
		t.Errorf("Active() = %v, want %v", got, want)
	}
}

func TestMatchTerm(t *testing.T) {
	tests := []struct {
		text, term string
		want       bool
	}{
		{"sim claro", "sim", true},
		{"simples assim", "sim", false},
		{"no fim sim", "sim", true},
		{"assim", "sim", false},
		{"a culpa e minha mesmo", "a culpa e minha", true},
		{"culpado", "culpa", false},
	}

	for _, tt := range tests {
		if got := matchTerm(tt.text, tt.term); got != tt.want {
			t.Errorf("matchTerm(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
		}
	}
}
