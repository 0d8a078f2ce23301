package validation

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"ada", "member-2f3a", "Grace_Hopper", "a.b-c", "member-0b56b1fc-8d5f-4b6e-9a6f-2f4f0a6f1d2e"}
	for _, name := range valid {
		if err := ValidateUsername(name); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "ab", "has space", "tab\there", "admin", "SYSTEM", string(make([]byte, 65))}
	for _, name := range invalid {
		if err := ValidateUsername(name); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", name)
		}
	}
}
