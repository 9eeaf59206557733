package policy_test

import (
	"reflect"
	"testing"

	"github.com/temirov/dirclip/internal/policy"
	"github.com/temirov/dirclip/internal/types"
)

func TestResolveExtensions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name             string
		defaultExtension string
		presets          map[string]bool
		expectAll        bool
		expectedSuffixes []string
	}{
		{
			name:             "no presets falls back to default extension",
			defaultExtension: ".go",
			expectedSuffixes: []string{".go"},
		},
		{
			name:             "no presets and all sentinel selects everything",
			defaultExtension: types.AllExtensionsSentinel,
			expectAll:        true,
		},
		{
			name:             "single enabled preset",
			defaultExtension: types.AllExtensionsSentinel,
			presets:          map[string]bool{"python": true},
			expectedSuffixes: []string{".py"},
		},
		{
			name:             "multiple presets union in sorted preset order",
			defaultExtension: types.AllExtensionsSentinel,
			presets:          map[string]bool{"sql": true, "python": true},
			expectedSuffixes: []string{".py", ".sql", ".psql", ".pgsql", ".ddl", ".dml"},
		},
		{
			name:             "disabled presets contribute nothing",
			defaultExtension: ".rb",
			presets:          map[string]bool{"python": false, "java": false},
			expectedSuffixes: []string{".rb"},
		},
		{
			name:             "unknown preset names are silently ignored",
			defaultExtension: ".go",
			presets:          map[string]bool{"cobol": true},
			expectedSuffixes: []string{".go"},
		},
		{
			name:             "unknown preset alongside known one",
			defaultExtension: types.AllExtensionsSentinel,
			presets:          map[string]bool{"cobol": true, "python": true},
			expectedSuffixes: []string{".py"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resolvedFilter := policy.ResolveExtensions(testCase.defaultExtension, testCase.presets)
			if resolvedFilter.All != testCase.expectAll {
				t.Fatalf("expected All=%v, got %v", testCase.expectAll, resolvedFilter.All)
			}
			if !testCase.expectAll && !reflect.DeepEqual(resolvedFilter.Suffixes, testCase.expectedSuffixes) {
				t.Fatalf("expected suffixes %v, got %v", testCase.expectedSuffixes, resolvedFilter.Suffixes)
			}
		})
	}
}

func TestResolveExcludesBaseline(t *testing.T) {
	t.Parallel()

	excludeSet := policy.ResolveExcludes(nil)
	for _, baselineName := range []string{".git", "node_modules", "__pycache__", "vendor", ".idea"} {
		if !excludeSet.Contains(baselineName) {
			t.Fatalf("expected baseline exclude %q", baselineName)
		}
	}
	if excludeSet.Contains("migrations") {
		t.Fatalf("sql-specific exclude present without sql preset")
	}
}

func TestResolveExcludesPresetAdditions(t *testing.T) {
	t.Parallel()

	excludeSet := policy.ResolveExcludes(map[string]bool{"sql": true, "go": true})
	for _, expectedName := range []string{"migrations", "seeds", "db", "vendor", ".git"} {
		if !excludeSet.Contains(expectedName) {
			t.Fatalf("expected exclude %q", expectedName)
		}
	}
}

func TestResolutionIsIdempotent(t *testing.T) {
	t.Parallel()

	presets := map[string]bool{"react": true, "structured-data": true}
	firstFilter := policy.ResolveExtensions(".*", presets)
	secondFilter := policy.ResolveExtensions(".*", presets)
	if !reflect.DeepEqual(firstFilter, secondFilter) {
		t.Fatalf("extension resolution is not idempotent: %v vs %v", firstFilter, secondFilter)
	}

	firstExcludes := policy.ResolveExcludes(presets)
	secondExcludes := policy.ResolveExcludes(presets)
	if !reflect.DeepEqual(firstExcludes, secondExcludes) {
		t.Fatalf("exclude resolution is not idempotent")
	}
}

func TestPresetNamesSortedAndKnown(t *testing.T) {
	t.Parallel()

	names := policy.PresetNames()
	if len(names) == 0 {
		t.Fatalf("expected preset names")
	}
	for nameIndex := 1; nameIndex < len(names); nameIndex++ {
		if names[nameIndex-1] >= names[nameIndex] {
			t.Fatalf("preset names not sorted: %v", names)
		}
	}
	for _, name := range names {
		if !policy.IsKnownPreset(name) {
			t.Fatalf("listed preset %q not recognized", name)
		}
	}
	if policy.IsKnownPreset("cobol") {
		t.Fatalf("unexpected preset recognized")
	}
}
