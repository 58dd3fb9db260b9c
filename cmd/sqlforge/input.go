package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sqlforge/internal/record"
)

// readRecords decodes input records. format "json" accepts a single object
// or an array of objects; "ndjson" accepts one object per line, skipping
// blank lines.
func readRecords(r io.Reader, format string) ([]*record.Record, error) {
	switch format {
	case "json":
		return readJSON(r)
	case "ndjson":
		return readNDJSON(r)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

func readJSON(r io.Reader) ([]*record.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	if trimmed[0] == '[' {
		var recs []*record.Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}

	var rec record.Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, err
	}
	return []*record.Record{&rec}, nil
}

func readNDJSON(r io.Reader) ([]*record.Record, error) {
	var recs []*record.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec record.Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, &rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
