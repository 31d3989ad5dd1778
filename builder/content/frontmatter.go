package content

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontmatterDelim = []byte("---")

// SplitFrontmatter separates a leading YAML block delimited by ---
// lines from the body. Files without a frontmatter block return a nil
// map and the source unchanged.
func SplitFrontmatter(src []byte) (map[string]interface{}, []byte, error) {
	trimmed := bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(trimmed, frontmatterDelim) {
		return nil, src, nil
	}

	rest := trimmed[len(frontmatterDelim):]
	if len(rest) > 0 && rest[0] == '\r' {
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[0] != '\n' {
		// A line like "----" is content, not a delimiter
		return nil, src, nil
	}
	rest = rest[1:]

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, fmt.Errorf("unterminated frontmatter block")
	}

	header := rest[:end]
	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	meta := map[string]interface{}{}
	if err := yaml.Unmarshal(header, &meta); err != nil {
		return nil, nil, fmt.Errorf("invalid frontmatter: %w", err)
	}
	return meta, body, nil
}
