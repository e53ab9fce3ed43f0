package utils

import (
	"os"
	"path"
	"testing"

	"gotest.tools/v3/assert"
)

func TestDefaultStr(t *testing.T) {
	testTable := []struct {
		name   string
		values []string
		result string
	}{
		{name: "four non-empty", values: []string{"foo", "bar", "hello", "world"}, result: "foo"},
		{name: "leading empty strings", values: []string{"", "", "test", "1"}, result: "test"},
		{name: "single non-empty string", values: []string{"single"}, result: "single"},
		{name: "empty at end, non-empty at start", values: []string{"first", "", "", ""}, result: "first"},
		{name: "spaces are not empty", values: []string{"", " ", "test"}, result: " "},
		{name: "two strings, first empty", values: []string{"", "second"}, result: "second"},
		{name: "two strings, both non-empty", values: []string{"first", "second"}, result: "first"},
		{name: "all empty strings", values: []string{"", "", ""}, result: ""},
		{name: "single empty string", values: []string{""}, result: ""},
	}

	for _, test := range testTable {
		t.Run(test.name, func(t *testing.T) {
			expectedResult := test.result
			actualResult := DefaultStr(test.values...)
			assert.Equal(t, expectedResult, actualResult)
		})
	}
}

func TestFileDigest(t *testing.T) {
	baseDir := t.TempDir()

	write := func(name, content string) string {
		filename := path.Join(baseDir, name)
		assert.NilError(t, os.WriteFile(filename, []byte(content), 0644))
		return filename
	}

	t.Run("digest is stable for identical content", func(t *testing.T) {
		one := write("one.ac", "AC_INIT([demo], [1.0])\n")
		two := write("two.ac", "AC_INIT([demo], [1.0])\n")
		digestOne, err := FileDigest(one)
		assert.NilError(t, err)
		digestTwo, err := FileDigest(two)
		assert.NilError(t, err)
		assert.Equal(t, digestOne, digestTwo)
		assert.Equal(t, len(digestOne), 64)
	})

	t.Run("digest changes with content", func(t *testing.T) {
		one := write("one.ac", "AC_INIT([demo], [1.0])\n")
		two := write("three.ac", "AC_INIT([demo], [2.0])\n")
		digestOne, err := FileDigest(one)
		assert.NilError(t, err)
		digestTwo, err := FileDigest(two)
		assert.NilError(t, err)
		assert.Assert(t, digestOne != digestTwo)
	})

	t.Run("missing file reports an error", func(t *testing.T) {
		_, err := FileDigest(path.Join(baseDir, "absent.ac"))
		assert.ErrorContains(t, err, "no such file")
	})
}
