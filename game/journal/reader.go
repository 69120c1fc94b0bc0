package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Files returns the journal files in dir in chronological order
func Files(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ".jsonl.zst") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	// hour stamps sort lexically
	sort.Strings(files)
	return files, nil
}

// ReadFile decodes every entry of one journal file
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return out, fmt.Errorf("%s line %d: %w", filepath.Base(path), line, err)
		}
		out = append(out, entry)
	}
	return out, sc.Err()
}

// ReadAll decodes every placement journal file in dir, oldest first
func ReadAll(dir string) ([]Entry, error) {
	files, err := Files(dir, "placements")
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, path := range files {
		entries, err := ReadFile(path)
		if err != nil {
			return out, err
		}
		out = append(out, entries...)
	}
	return out, nil
}
