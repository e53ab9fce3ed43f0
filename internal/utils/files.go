package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type FilenameFilter func(string) bool
type DirectoryReader struct{}

// ReadDir returns the files under dirname, recursing into subdirectories,
// keeping only names accepted by filter. Results are sorted so callers
// produce stable listings.
func (f *DirectoryReader) ReadDir(dirname string, filter FilenameFilter) ([]string, error) {
	dir, err := os.Open(dirname)
	if err != nil {
		return nil, err
	}
	defer dir.Close()
	dirInfo, err := dir.Stat()
	if err != nil {
		return nil, err
	}
	if !dirInfo.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dirname)
	}
	files, err := dir.ReadDir(0)
	if err != nil {
		return nil, err
	}
	var fileNames []string
	for _, file := range files {
		if file.IsDir() {
			recursiveFiles, err := f.ReadDir(filepath.Join(dirname, file.Name()), filter)
			if err != nil {
				return nil, err
			}
			fileNames = append(fileNames, recursiveFiles...)
		} else {
			if filter == nil || filter(file.Name()) {
				fileNames = append(fileNames, filepath.Join(dirname, file.Name()))
			}
		}
	}
	sort.Strings(fileNames)
	return fileNames, nil
}
