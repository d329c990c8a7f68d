package tenant

import (
	"errors"
	"testing"
)

func TestSettings_Validate(t *testing.T) {
	valid := Settings{Model: "gpt-4", Tone: ToneFormal, MaxInputLength: 300, RetryAttempts: 3}

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr bool
	}{
		{"valid", func(s *Settings) {}, false},
		{"unknown tone is fine", func(s *Settings) { s.Tone = "pirate" }, false},
		{"empty tone is fine", func(s *Settings) { s.Tone = "" }, false},
		{"missing model", func(s *Settings) { s.Model = " " }, true},
		{"zero max length", func(s *Settings) { s.MaxInputLength = 0 }, true},
		{"zero attempts", func(s *Settings) { s.RetryAttempts = 0 }, true},
		{"negative attempts", func(s *Settings) { s.RetryAttempts = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)

			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSettings) {
					t.Errorf("Validate() = %v, want ErrInvalidSettings", err)
				}
			} else if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()

	want := map[string]Settings{
		"tenant1": {Model: "gpt-4", Tone: ToneFormal, MaxInputLength: 300, RetryAttempts: 3},
		"tenant2": {Model: "gpt-3.5", Tone: ToneFriendly, MaxInputLength: 200, RetryAttempts: 2},
		"tenant3": {Model: "gpt-3.5", Tone: ToneTechnical, MaxInputLength: 250, RetryAttempts: 3},
	}

	if len(defaults) != len(want) {
		t.Fatalf("len(Defaults()) = %d, want %d", len(defaults), len(want))
	}
	for id, w := range want {
		got, ok := defaults[id]
		if !ok {
			t.Errorf("Defaults() missing %s", id)
			continue
		}
		if got != w {
			t.Errorf("Defaults()[%s] = %+v, want %+v", id, got, w)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("Defaults()[%s] invalid: %v", id, err)
		}
	}
}
