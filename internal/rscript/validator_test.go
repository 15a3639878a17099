package rscript

import (
	"strings"
	"testing"
)

func TestValidateFile_Valid(t *testing.T) {
	for _, file := range []string{"Buffer_layer.rsx", "summary_stats.rsx", "blank_name.rsx"} {
		t.Run(file, func(t *testing.T) {
			result, err := ValidateFile(testPath(file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) error: %v", file, err)
			}
			if !result.Valid {
				t.Errorf("expected valid, got issues: %s", result.Summary())
			}
		})
	}
}

func TestValidateFile_Invalid(t *testing.T) {
	tests := []struct {
		file    string
		keyword string
	}{
		{"bad_identifier.rsx", "pattern"},
		{"bad_type.rsx", "header"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			if err != nil {
				t.Fatalf("ValidateFile(%s) unexpected error: %v", tt.file, err)
			}
			if result.Valid {
				t.Fatalf("expected invalid for %s", tt.file)
			}
			if len(result.Issues) == 0 {
				t.Fatal("expected at least one issue")
			}
			if result.Issues[0].Keyword != tt.keyword {
				t.Errorf("Keyword = %q, want %q", result.Issues[0].Keyword, tt.keyword)
			}
		})
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	if _, err := ValidateFile(testPath("nonexistent.rsx")); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestValidate_SchemaRules(t *testing.T) {
	tests := []struct {
		name string
		alg  *Algorithm
		path string
	}{
		{
			name: "empty group",
			alg:  &Algorithm{Name: "x", SourcePath: "/x.rsx", Parameters: []Parameter{}, Outputs: []Output{}},
			path: "/group",
		},
		{
			name: "selection without options",
			alg: &Algorithm{Name: "x", Group: "g", SourcePath: "/x.rsx", Outputs: []Output{},
				Parameters: []Parameter{{Name: "m", Description: "m", Type: ParamSelection}}},
			path: "/parameters/0",
		},
		{
			name: "unknown output kind",
			alg: &Algorithm{Name: "x", Group: "g", SourcePath: "/x.rsx", Parameters: []Parameter{},
				Outputs: []Output{{Name: "o", Description: "o", Kind: "shapefile"}}},
			path: "/outputs/0/kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(tt.alg)
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if result.Valid {
				t.Fatal("expected invalid result")
			}
			if !strings.Contains(result.Summary(), tt.path) {
				t.Errorf("Summary() = %q, want it to mention %q", result.Summary(), tt.path)
			}
		})
	}
}
