package tenants

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		kind  Kind
		mount string
	}{
		{"acme_pharma", KindStandard, "/id"},
		{"profile_acme", KindProfile, "/api"},
		{"profile_", KindProfile, "/api"},
		{"profile", KindStandard, "/id"},
		{"PROFILE_acme", KindStandard, "/id"},
		{"xprofile_acme", KindStandard, "/id"},
		{"", KindStandard, "/id"},
	}
	for _, c := range cases {
		if got := Classify(c.name); got != c.kind {
			t.Errorf("Classify(%q) = %v, want %v", c.name, got, c.kind)
		}
		if got := Classify(c.name).Mount(); got != c.mount {
			t.Errorf("Classify(%q).Mount() = %q, want %q", c.name, got, c.mount)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindStandard.String() != "standard" || KindProfile.String() != "profile" {
		t.Fatalf("unexpected kind names: %q, %q", KindStandard, KindProfile)
	}
}
