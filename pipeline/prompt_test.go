package pipeline

import (
	"strings"
	"testing"
)

func TestBuildPromptSubstitutesFields(t *testing.T) {
	p := BuildPrompt("Brand New Drill - Sealed", "Tools", "$20")

	for _, want := range []string{
		"Listing Title: Brand New Drill - Sealed",
		"Category: Tools",
		"Price: $20",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "{title}") || strings.Contains(p, "{category}") || strings.Contains(p, "{price}") {
		t.Error("prompt still contains unsubstituted placeholders")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	a := BuildPrompt("Couch", "Furniture", "Free")
	b := BuildPrompt("Couch", "Furniture", "Free")
	if a != b {
		t.Error("same inputs must yield the same prompt")
	}
}

func TestBuildPromptEmptyFieldsPassThrough(t *testing.T) {
	p := BuildPrompt("", "", "")

	if !strings.Contains(p, "Listing Title: \n") {
		t.Error("empty title should pass through as empty string")
	}
}
