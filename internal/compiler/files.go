package compiler

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Ext is the extension of Olive source files.
const Ext = ".oil"

func checkExt(path string) error {
	if filepath.Ext(path) != Ext {
		return errors.Errorf("%s: input must be a %s source file", path, Ext)
	}
	return nil
}

// SourceFiles expands args into the list of source files to build. A
// directory contributes every .oil file directly inside it, sorted by name.
// Duplicates are dropped, keeping the first occurrence.
func SourceFiles(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot resolve %s", arg)
		}
		if !info.IsDir() {
			if err := checkExt(arg); err != nil {
				return nil, err
			}
			add(arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read directory %s", arg)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			add(filepath.Join(arg, n))
		}
	}

	if len(files) == 0 {
		return nil, errors.Errorf("no %s files found", Ext)
	}
	return files, nil
}

// OutputPath returns where the JavaScript for input goes: next to the input,
// or inside outDir when it is set.
func OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input)) + ".js"
	if outDir == "" {
		return base
	}
	return filepath.Join(outDir, filepath.Base(base))
}

// WriteFile writes data to path through a uniquely named temporary file in
// the same directory, so readers never observe a partial file.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
