//go:build unit

package slug

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses repeated separators", "a--b---c", "a-b-c"},
		{"trims leading and trailing separators", "-abc-", "abc"},
		{"already normalized", "career-coaching-tips", "career-coaching-tips"},
		{"doubled hyphens from URL", "career--coaching--tips", "career-coaching-tips"},
		{"empty input", "", ""},
		{"only separators", "---", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"a--b---c", "-abc-", "growth-strategy-ab12c", "", "--", "한글--슬러그"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestBase(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"strips base36 token suffix", "my-post-title-lj3fh2", "my-post-title"},
		{"strips digit-led id suffix", "my-post-123abc", "my-post"},
		{"no id-like suffix", "my-post-title", "my-post-title"},
		{"single word", "coaching", "coaching"},
		{"normalizes before stripping", "my--post--lj3fh2", "my-post"},
		{"suffix only would leave nothing", "lj3fh2", "lj3fh2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Base(tc.input); got != tc.want {
				t.Errorf("Base(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestRelated(t *testing.T) {
	testCases := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "growth-strategy", "growth-strategy", true},
		{"same after normalization", "growth--strategy", "growth-strategy", true},
		{"same base different suffixes", "growth-strategy-ab12cd", "growth-strategy-xy99zz", true},
		// Five-character tails match neither suffix heuristic, so the slugs
		// keep their full form and compare unrelated.
		{"tail too short for suffix heuristic", "growth-strategy-ab12c", "growth-strategy-xy99z", false},
		{"base substring relation", "growth-strategy", "growth-strategy-extended", true},
		{"unrelated", "growth-strategy", "career-coaching", false},
		{"empty operand", "", "growth-strategy", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Related(tc.a, tc.b); got != tc.want {
				t.Errorf("Related(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"abc-def-123", true},
		{"한글-슬러그", true},
		{"abc--def", false},
		{"-abc", false},
		{"abc-", false},
		{"ABC-def", false},
		{"abc_def", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := IsValid(tc.input); got != tc.want {
				t.Errorf("IsValid(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestCleanup(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"decodes and strips query and fragment", "/blog/my-post%20title?ref=x#top", "my-post title"},
		{"last path segment only", "/blog/category/coaching-tips", "coaching-tips"},
		{"invalid escape falls back to raw", "my-post%zz", "my-post%zz"},
		{"doubled separators normalized", "career--coaching--tips", "career-coaching-tips"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cleanup(tc.input); got != tc.want {
				t.Errorf("Cleanup(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("without unique id", func(t *testing.T) {
		got := Generate("Growth Strategy: A Primer!", Options{SkipUniqueID: true})
		if got != "growth-strategy-a-primer" {
			t.Errorf("Generate = %q, want %q", got, "growth-strategy-a-primer")
		}
	})

	t.Run("ascii only drops hangul", func(t *testing.T) {
		got := Generate("커리어 코칭 tips", Options{SkipUniqueID: true, ASCIIOnly: true})
		if got != "tips" {
			t.Errorf("Generate = %q, want %q", got, "tips")
		}
	})

	t.Run("preserves hangul by default", func(t *testing.T) {
		got := Generate("커리어 코칭", Options{SkipUniqueID: true})
		if got != "커리어-코칭" {
			t.Errorf("Generate = %q, want %q", got, "커리어-코칭")
		}
	})

	t.Run("appends unique suffix", func(t *testing.T) {
		got := Generate("My Post", Options{})
		if !strings.HasPrefix(got, "my-post-") {
			t.Fatalf("Generate = %q, want prefix %q", got, "my-post-")
		}
		tail := strings.TrimPrefix(got, "my-post-")
		if len(tail) < 4 {
			t.Errorf("suffix %q too short", tail)
		}
		for _, r := range tail {
			if !strings.ContainsRune(base36Chars, r) {
				t.Errorf("suffix %q contains non-base36 character %q", tail, r)
			}
		}
		if other := Generate("My Post", Options{}); other == got {
			t.Errorf("two generated slugs collided: %q", got)
		}
	})

	t.Run("truncates to max length", func(t *testing.T) {
		long := strings.Repeat("word-", 40) // 200 chars
		got := Generate(long, Options{SkipUniqueID: true, MaxLength: 20})
		if len(got) > 20 {
			t.Errorf("Generate length = %d, want <= 20", len(got))
		}
		if strings.HasSuffix(got, "-") {
			t.Errorf("Generate = %q, trailing separator not trimmed", got)
		}
	})

	t.Run("output is well formed", func(t *testing.T) {
		inputs := []string{"Hello,  World!!", "--weird -- input--", "Multiple   spaces"}
		for _, in := range inputs {
			got := Generate(in, Options{SkipUniqueID: true})
			if strings.Contains(got, "--") || strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
				t.Errorf("Generate(%q) = %q, malformed separators", in, got)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Generate("", Options{}); got != "" {
			t.Errorf("Generate(\"\") = %q, want \"\"", got)
		}
	})
}
