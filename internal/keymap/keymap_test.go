package keymap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	cases := []struct {
		tok   Token
		glyph string
		kind  ClassKind
	}{
		{"k", "ক", ClassConsonants},
		{"K", "খ", ClassConsonants},
		{"t", "ত", ClassConsonants},
		{"TT", "ট", ClassConsonants},
		{"X", "ক্ষ", ClassConsonants},
		{"R", "ড়", ClassConsonants},
		{"7", "৭", ClassDigits},
		{TokenSpace, " ", ClassDigits},
		{".", "।", ClassSymbols},
		{"A", "অ", ClassVowels},
		{"AA", "আ", ClassVowels},
		{"rh", "ৃ", ClassVowels},
	}
	for _, tc := range cases {
		glyph, ok := table.Lookup(tc.tok)
		if !ok || glyph != tc.glyph {
			t.Fatalf("lookup %q: got %q (ok=%v) want %q", tc.tok, glyph, ok, tc.glyph)
		}
		kind, ok := table.ClassOf(tc.tok)
		if !ok || kind != tc.kind {
			t.Fatalf("class of %q: got %v want %v", tc.tok, kind, tc.kind)
		}
		if _, ok := table.LookupClass(tc.kind, tc.tok); !ok {
			t.Fatalf("expected %q in class %v", tc.tok, tc.kind)
		}
	}

	if _, ok := table.Lookup("q"); ok {
		t.Fatalf("expected no mapping for q")
	}
	if _, ok := table.LookupClass(ClassVowels, "k"); ok {
		t.Fatalf("k must not resolve inside the vowel class")
	}
}

func TestLookupIsCaseSensitive(t *testing.T) {
	table := Default()
	lower, _ := table.Lookup("k")
	upper, _ := table.Lookup("K")
	if lower == upper {
		t.Fatalf("k and K must be distinct entries, both gave %q", lower)
	}
	if _, ok := table.Lookup("Aa"); ok {
		t.Fatalf("mixed-case vowel digraph must not resolve")
	}
}

func TestDefaultClassOrder(t *testing.T) {
	table := Default()
	consonants := table.Class(ClassConsonants)
	if len(consonants.Entries) != 41 {
		t.Fatalf("expected 41 consonants, got %d", len(consonants.Entries))
	}
	if consonants.Entries[0].Token != "k" || consonants.Entries[len(consonants.Entries)-1].Token != "~" {
		t.Fatalf("unexpected consonant order: first=%q last=%q", consonants.Entries[0].Token, consonants.Entries[len(consonants.Entries)-1].Token)
	}
	digits := table.Class(ClassDigits)
	if digits.Entries[len(digits.Entries)-1].Token != TokenSpace {
		t.Fatalf("space should close the digits row")
	}

	total := 0
	for _, class := range table.Classes() {
		total += len(class.Entries)
	}
	if total != table.Len() {
		t.Fatalf("class entries (%d) and unified lookup (%d) disagree", total, table.Len())
	}
}

func TestClassCopiesAreIndependent(t *testing.T) {
	table := Default()
	class := table.Class(ClassDigits)
	class.Entries[0].Glyph = "x"
	if glyph, _ := table.Lookup("0"); glyph != "০" {
		t.Fatalf("table mutated through class copy: %q", glyph)
	}
}

func TestNewRejectsCrossClassDuplicate(t *testing.T) {
	_, err := New(
		Class{Kind: ClassConsonants, Entries: []Entry{{"k", "ক"}}},
		Class{Kind: ClassVowels, Entries: []Entry{{"k", "া"}}},
	)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Token != "k" {
		t.Fatalf("expected collision on k, got %q", cfgErr.Token)
	}
}

func TestNewRejectsSameClassDuplicate(t *testing.T) {
	// The source data defined t, d and n twice inside the consonants.
	_, err := New(Class{Kind: ClassConsonants, Entries: []Entry{
		{"t", "ট"},
		{"t", "ত"},
	}})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestNewRejectsMalformedEntries(t *testing.T) {
	cases := map[string]Class{
		"empty token":  {Kind: ClassSymbols, Entries: []Entry{{"", "x"}}},
		"empty glyph":  {Kind: ClassSymbols, Entries: []Entry{{"x", ""}}},
		"invalid utf8": {Kind: ClassSymbols, Entries: []Entry{{"x", "\xff"}}},
	}
	for name, class := range cases {
		if _, err := New(class); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := New(Class{Kind: ClassDigits}, Class{Kind: ClassDigits}); err == nil {
		t.Fatalf("expected error for repeated class")
	}
}

func TestParseClassKind(t *testing.T) {
	kind, err := ParseClassKind(" Consonants ")
	if err != nil || kind != ClassConsonants {
		t.Fatalf("unexpected parse result %v, %v", kind, err)
	}
	if _, err := ParseClassKind("glyphs"); err == nil {
		t.Fatalf("expected error for unknown class")
	}
}

func TestApplyOverrides(t *testing.T) {
	table, err := Build([]Override{
		{Token: "k", Glyph: "খ"},
		{Class: "consonants", Token: "q", Glyph: "ক"},
		{Token: "Tto", Remove: true},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if glyph, _ := table.Lookup("k"); glyph != "খ" {
		t.Fatalf("expected replaced glyph for k, got %q", glyph)
	}
	if glyph, _ := table.Lookup("q"); glyph != "ক" {
		t.Fatalf("expected new token q, got %q", glyph)
	}
	if _, ok := table.Lookup("Tto"); ok {
		t.Fatalf("expected Tto to be removed")
	}
	consonants := table.Class(ClassConsonants)
	if consonants.Entries[0].Token != "k" {
		t.Fatalf("replacement must keep position, first entry is %q", consonants.Entries[0].Token)
	}
	if consonants.Entries[len(consonants.Entries)-1].Token != "q" {
		t.Fatalf("new token must be appended")
	}
}

func TestApplyOverridesCollision(t *testing.T) {
	_, err := Build([]Override{{Class: "symbols", Token: "k", Glyph: "*"}})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected collision error, got %v", err)
	}
	if _, err := Build([]Override{{Token: "q", Glyph: "x"}}); err == nil {
		t.Fatalf("expected error for new token without class")
	}
	if _, err := Build([]Override{{Token: "q", Remove: true}}); err == nil {
		t.Fatalf("expected error removing unknown token")
	}
}

func TestLoadOverrideFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "keys.toml")
	tomlData := "[[keys]]\nclass = \"consonants\"\ntoken = \"q\"\nglyph = \"ক\"\n"
	if err := os.WriteFile(tomlPath, []byte(tomlData), 0o600); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	table, err := LoadFile(tomlPath)
	if err != nil {
		t.Fatalf("load toml: %v", err)
	}
	if glyph, _ := table.Lookup("q"); glyph != "ক" {
		t.Fatalf("toml override not applied: %q", glyph)
	}

	jsonPath := filepath.Join(dir, "keys.json")
	jsonData := `{"keys":[{"token":"k","glyph":"x"}]}`
	if err := os.WriteFile(jsonPath, []byte(jsonData), 0o600); err != nil {
		t.Fatalf("write json: %v", err)
	}
	overrides, err := LoadOverrides(jsonPath)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if len(overrides) != 1 || overrides[0].Token != "k" {
		t.Fatalf("unexpected overrides %#v", overrides)
	}

	if _, err := LoadOverrides(filepath.Join(dir, "keys.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	yamlPath := filepath.Join(dir, "keys.yaml")
	yamlData := "keys:\n  - class: symbols\n    token: \"*\"\n    glyph: \"*\"\n  - token: \"~\"\n    remove: true\n"
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	table, err = LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if kind, ok := table.ClassOf("*"); !ok || kind != ClassSymbols {
		t.Fatalf("yaml override not applied")
	}
	if _, ok := table.Lookup("~"); ok {
		t.Fatalf("yaml removal not applied")
	}

	iniPath := filepath.Join(dir, "keys.ini")
	if err := os.WriteFile(iniPath, []byte("[keys]"), 0o600); err != nil {
		t.Fatalf("write ini: %v", err)
	}
	if _, err := LoadOverrides(iniPath); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}

	if table, err := LoadFile(""); err != nil || table.Len() != Default().Len() {
		t.Fatalf("empty path should give default table")
	}
}

func TestOverrideSchemaRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"typo.json":   `{"keys":[{"token":"k","glyf":"x"}]}`,
		"remove.json": `{"keys":[{"token":"k","remove":"yes"}]}`,
		"empty.yaml":  "keys:\n  - token: \"\"\n    glyph: x\n",
		"typo.toml":   "[[keys]]\ntoken = \"k\"\nglyf = \"x\"\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		_, err := LoadOverrides(path)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected *ConfigError, got %v", name, err)
		}
	}
}
