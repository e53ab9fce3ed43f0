package utils

import (
	"testing"

	"github.com/regenproject/regen/internal/toolchain"
)

func Test_Marshal(t *testing.T) {
	tests := []struct {
		outputType     string
		resource       any
		expectedOutput string
		hasError       bool
	}{
		{"json", toolchain.ToolStatus{
			Name:     "automake",
			Binary:   "automake",
			Path:     "/usr/bin/automake",
			Found:    true,
			Version:  "1.15",
			Minimum:  "1.16",
			Outdated: true,
		},
			`{
  "binary": "automake",
  "found": true,
  "minimum": "1.16",
  "name": "automake",
  "outdated": true,
  "path": "/usr/bin/automake",
  "version": "1.15"
}`, false},
		{"yaml", toolchain.ToolStatus{
			Name:    "autoconf",
			Binary:  "autoconf",
			Path:    "/usr/local/bin/autoconf",
			Found:   true,
			Version: "2.71",
		},
			`binary: autoconf
found: true
name: autoconf
path: /usr/local/bin/autoconf
version: "2.71"
`,
			false},
		{"json", toolchain.ToolStatus{
			Name:   "git",
			Binary: "git",
		},
			`{
  "binary": "git",
  "name": "git"
}`, false},
		{"unsupported", toolchain.ToolStatus{
			Name:   "aclocal",
			Binary: "aclocal",
		}, ``, true},
	}

	for _, tt := range tests {
		output, err := Encode(tt.outputType, tt.resource)
		if err != nil && !tt.hasError {
			t.Fatalf("Expected no error, but got: %v", err)
		}
		if err == nil && tt.hasError {
			t.Fatal("Expected an error, but got none")
		}

		if output != tt.expectedOutput {
			t.Errorf("Expected output %v but got %v", tt.expectedOutput, output)
		}
	}
}
