package otp

import "testing"

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != codeDigits {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), codeDigits)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit %q", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("50 generated codes were all identical")
	}
}

func TestCodeMatches(t *testing.T) {
	hash := HashCode("482913")

	tests := []struct {
		name      string
		submitted string
		want      bool
	}{
		{name: "exact match", submitted: "482913", want: true},
		{name: "wrong code", submitted: "482914", want: false},
		{name: "empty", submitted: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeMatches(tt.submitted, hash); got != tt.want {
				t.Errorf("CodeMatches(%q) = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}
}

func TestHashCodeNeverStoresClear(t *testing.T) {
	if HashCode("123456") == "123456" {
		t.Error("HashCode returned the code in the clear")
	}
	if HashCode("123456") != HashCode("123456") {
		t.Error("HashCode is not deterministic")
	}
}
