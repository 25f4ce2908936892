package rules

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    Rule
		wantErr bool
	}{
		{
			name: "code",
			code: "CAD010",
			want: CAD010AlwaysTrue,
		},
		{
			name: "lower case",
			code: "cad901",
			want: CAD901UnreachedStatements,
		},
		{
			name: "full name",
			code: "CAD040: UnreachableStatement",
			want: CAD040UnreachableStatement,
		},
		{
			name:    "unknown",
			code:    "CAD999",
			wantErr: true,
		},
		{
			name:    "empty",
			code:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("%s expected, got %s", tt.want, got)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, r := range All() {
		text, err := r.MarshalText()
		if err != nil {
			t.Fatal(err)
		}

		var got Rule
		if err := got.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if got != r {
			t.Errorf("%s expected, got %s", r, got)
		}
		if r.Description() == "" {
			t.Errorf("%s has no description", r)
		}
	}
}

func TestInvalid(t *testing.T) {
	if got := Rule(100).String(); got != "invalid(100)" {
		t.Errorf("invalid(100) expected, got %s", got)
	}
	if _, err := ruleInvalid.MarshalText(); err == nil {
		t.Error("error expected for the invalid rule")
	}
	if !Paths().IsMetric() || AlwaysTrue().IsMetric() {
		t.Error("unexpected metric classification")
	}
}
