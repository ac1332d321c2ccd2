// Package textextract pulls human-readable text out of loosely shaped JSON
// responses decoded into map[string]any / []any trees.
package textextract

import (
	"sort"
	"strings"
	"unicode"
)

// MaxDepth bounds how deep Plausible descends.
const MaxDepth = 6

// FromResponse collects text from the known shapes of a generation API
// response and joins it. If none match it falls back to Plausible.
func FromResponse(node any) string {
	root, ok := node.(map[string]any)
	if !ok {
		return Plausible(node)
	}

	var pieces []string
	if s, ok := root["output_text"].(string); ok {
		pieces = append(pieces, s)
	}

	if output, ok := root["output"].([]any); ok {
		for _, item := range output {
			m, _ := item.(map[string]any)
			blocks, _ := m["content"].([]any)
			for _, block := range blocks {
				if s := blockText(block); s != "" {
					pieces = append(pieces, s)
				}
			}
		}
	}

	if content, ok := root["content"].([]any); ok && len(content) > 0 {
		first, _ := content[0].(map[string]any)
		if text, ok := first["text"].(map[string]any); ok {
			if s, ok := text["value"].(string); ok {
				pieces = append(pieces, s)
			}
		}
	}

	if joined := join(pieces); joined != "" {
		return joined
	}
	return Plausible(node)
}

// FromChatContent reads a chat message content that is either a string or
// a list of parts.
func FromChatContent(content any) string {
	switch c := content.(type) {
	case string:
		return strings.TrimSpace(c)
	case []any:
		var b strings.Builder
		for _, part := range c {
			if s, ok := part.(string); ok {
				b.WriteString(s)
				continue
			}
			b.WriteString(blockText(part))
		}
		return strings.TrimSpace(b.String())
	}
	return ""
}

// Plausible walks node and returns the longest string that looks like
// natural language, or "" if there is none.
func Plausible(node any) string {
	var found []string
	visit(node, 0, &found)
	sort.SliceStable(found, func(i, j int) bool { return len(found[i]) > len(found[j]) })
	for _, s := range found {
		if strings.IndexFunc(s, unicode.IsLetter) >= 0 {
			return s
		}
	}
	return ""
}

func visit(node any, depth int, found *[]string) {
	if node == nil || depth > MaxDepth {
		return
	}
	switch n := node.(type) {
	case string:
		s := strings.TrimSpace(n)
		if len(s) > 4 && !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
			*found = append(*found, s)
		}
	case []any:
		for _, v := range n {
			visit(v, depth+1, found)
		}
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			visit(n[k], depth+1, found)
		}
	}
}

// blockText reads text, text.value, content or value from a content block.
func blockText(block any) string {
	m, ok := block.(map[string]any)
	if !ok {
		return ""
	}
	switch text := m["text"].(type) {
	case string:
		return text
	case map[string]any:
		if s, ok := text["value"].(string); ok {
			return s
		}
	}
	if s, ok := m["content"].(string); ok {
		return s
	}
	if s, ok := m["value"].(string); ok {
		return s
	}
	return ""
}

func join(pieces []string) string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
