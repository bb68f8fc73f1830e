// Package frontmatter splits a fenced metadata block off the top of a
// markdown file.
//
// Two fences are recognised: "---" for YAML and "+++" for TOML. The opening
// fence must be the first line of the file; the block ends at the next line
// made of the same fence characters.
package frontmatter

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Matter is decoded frontmatter.
type Matter map[string]any

// String returns the value under key when it is a string, or its formatted
// form for scalars. Missing keys yield "".
func (m Matter) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []any, map[string]any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Strings returns a list value. A single string is split on commas.
func (m Matter) Strings(key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return nil
	}
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

// Split separates the frontmatter block from the body. Without a complete
// fenced block the whole text is returned as body with empty metadata. When
// the block cannot be decoded the body after the block is returned together
// with the decode error and empty metadata.
func Split(text string) (Matter, string, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	firstLine, rest, found := strings.Cut(text, "\n")
	if !found {
		return Matter{}, text, nil
	}
	var kind format
	switch {
	case isFence(firstLine, '-'):
		kind = formatYAML
	case isFence(firstLine, '+'):
		kind = formatTOML
	default:
		return Matter{}, text, nil
	}
	fenceChar := byte('-')
	if kind == formatTOML {
		fenceChar = '+'
	}

	offset := 0
	for offset <= len(rest) {
		line, _, _ := strings.Cut(rest[offset:], "\n")
		if isFence(line, fenceChar) {
			block := rest[:offset]
			body := ""
			if next := offset + len(line) + 1; next <= len(rest) {
				body = rest[next:]
			}
			matter, err := decode(kind, block)
			if err != nil {
				return Matter{}, body, err
			}
			return matter, body, nil
		}
		if offset+len(line) >= len(rest) {
			break
		}
		offset += len(line) + 1
	}
	return Matter{}, text, nil
}

// isFence reports whether line is three or more fence characters followed by
// optional whitespace.
func isFence(line string, char byte) bool {
	line = strings.TrimRight(line, " \t\r")
	if len(line) < 3 {
		return false
	}
	for i := 0; i < len(line); i++ {
		if line[i] != char {
			return false
		}
	}
	return true
}

func decode(kind format, block string) (Matter, error) {
	matter := Matter{}
	if strings.TrimSpace(block) == "" {
		return matter, nil
	}
	switch kind {
	case formatTOML:
		var raw map[string]any
		if _, err := toml.Decode(block, &raw); err != nil {
			return Matter{}, fmt.Errorf("decode toml frontmatter: %w", err)
		}
		for k, v := range raw {
			matter[k] = v
		}
		return matter, nil
	default:
		var raw any
		if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
			return Matter{}, fmt.Errorf("decode yaml frontmatter: %w", err)
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return Matter{}, nil
		}
		return Matter(m), nil
	}
}
