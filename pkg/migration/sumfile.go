package migration

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type (
	// SumFile records a chained SHA-256 hash for every unit file of a set,
	// plus a total hash over all of them. Each file's hash covers its own
	// content and the previous file's hash, so editing any unit file changes
	// the hash of every file after it.
	SumFile struct {
		entries   []sumEntry
		TotalHash string
	}

	sumEntry struct {
		Name string
		Hash []byte
	}
)

// NewSumFile creates an empty SumFile.
func NewSumFile() *SumFile {
	return &SumFile{entries: make([]sumEntry, 0)}
}

// LoadSumFile reads a SumFile in the format produced by WriteTo:
//
//	h1:<total>
//	0001_initial.yaml h1:<hash>
//	0002_add_tags.yaml h1:<hash>
func LoadSumFile(r io.Reader) (*SumFile, error) {
	scanner := bufio.NewScanner(r)
	sum := NewSumFile()

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read total hash line")
		}
		return sum, nil
	}

	total := strings.TrimSpace(scanner.Text())
	if total == "" {
		return sum, nil
	}

	if !strings.HasPrefix(total, "h1:") {
		return nil, errors.Errorf("invalid total hash format: %s", total)
	}
	sum.TotalHash = total

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, hash, ok := strings.Cut(line, " ")
		if !ok {
			return nil, errors.Errorf("invalid file entry format: %s", line)
		}

		if !strings.HasPrefix(hash, "h1:") {
			return nil, errors.Errorf("invalid hash format for file %s: %s", name, hash)
		}

		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(hash, "h1:"))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode hash for file %s", name)
		}

		sum.entries = append(sum.entries, sumEntry{Name: name, Hash: raw})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading sum file")
	}

	return sum, nil
}

// Add reads r fully and records it under name.
func (s *SumFile) Add(name string, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", name)
	}

	s.AddFile(name, content)
	return nil
}

// AddFile records content under name, chaining from the previous entry.
func (s *SumFile) AddFile(name string, content []byte) {
	h := sha256.New()
	h.Write(content)
	if len(s.entries) > 0 {
		h.Write(s.entries[len(s.entries)-1].Hash)
	}

	s.entries = append(s.entries, sumEntry{Name: name, Hash: h.Sum(nil)})
	s.computeTotalHash()
}

// Files returns the number of recorded files.
func (s *SumFile) Files() int {
	return len(s.entries)
}

// FirstMismatch compares s against other entry by entry and returns the name
// of the first file that differs, is missing, or is extra. An empty string
// means both describe the same files.
func (s *SumFile) FirstMismatch(other *SumFile) string {
	n := max(len(s.entries), len(other.entries))
	for i := range n {
		switch {
		case i >= len(s.entries):
			return other.entries[i].Name
		case i >= len(other.entries):
			return s.entries[i].Name
		case s.entries[i].Name != other.entries[i].Name:
			return s.entries[i].Name
		case !bytes.Equal(s.entries[i].Hash, other.entries[i].Hash):
			return s.entries[i].Name
		}
	}

	return ""
}

// WriteTo implements io.WriterTo.
func (s *SumFile) WriteTo(w io.Writer) (int64, error) {
	var total int64

	s.computeTotalHash()

	n, err := fmt.Fprintf(w, "%s\n", s.TotalHash)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, e := range s.entries {
		n, err := fmt.Fprintf(w, "%s h1:%s\n", e.Name, base64.StdEncoding.EncodeToString(e.Hash))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func (s *SumFile) computeTotalHash() {
	if len(s.entries) == 0 {
		s.TotalHash = ""
		return
	}

	h := sha256.New()
	for _, e := range s.entries {
		h.Write(e.Hash)
	}

	s.TotalHash = "h1:" + base64.StdEncoding.EncodeToString(h.Sum(nil))
}
