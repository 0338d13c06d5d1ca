// Package dataset loads the document corpus and gold evaluation set from
// JSONL files, one JSON object per line.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"rageval/internal/domain"
)

// LoadDocuments reads the document corpus. doc_id must be unique and the
// file must contain at least one document.
func LoadDocuments(path string) ([]domain.Document, error) {
	var docs []domain.Document
	seen := make(map[string]struct{})
	err := readJSONL(path, func(lineNo int, data []byte) error {
		var d domain.Document
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		if d.DocID == "" {
			return fmt.Errorf("missing doc_id")
		}
		if _, dup := seen[d.DocID]; dup {
			return fmt.Errorf("duplicate doc_id %q", d.DocID)
		}
		seen[d.DocID] = struct{}{}
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %s", path)
	}
	return docs, nil
}

// LoadGoldSet reads the gold question set. id must be unique and question
// non-empty.
func LoadGoldSet(path string) ([]domain.GoldItem, error) {
	var items []domain.GoldItem
	seen := make(map[string]struct{})
	err := readJSONL(path, func(lineNo int, data []byte) error {
		var g domain.GoldItem
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		if g.ID == "" {
			return fmt.Errorf("missing id")
		}
		if _, dup := seen[g.ID]; dup {
			return fmt.Errorf("duplicate id %q", g.ID)
		}
		if g.Question == "" {
			return fmt.Errorf("gold item %q missing question", g.ID)
		}
		seen[g.ID] = struct{}{}
		items = append(items, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no gold items found in %s", path)
	}
	return items, nil
}

func readJSONL(path string, handle func(lineNo int, data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := handle(lineNo, []byte(line)); err != nil {
			return fmt.Errorf("invalid JSONL at %s line %d: %w", path, lineNo, err)
		}
	}
	return sc.Err()
}
