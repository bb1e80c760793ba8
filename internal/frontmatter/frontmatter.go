package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a front matter block. It must be the very first
// line of a template for the block to be recognized.
const Delimiter = "---\n"

var delimiter = []byte(Delimiter)

// Split separates a `---` delimited front matter block from the template body.
//
// The input is split on the first two occurrences of Delimiter into before,
// metadata and remainder. If the input does not start with Delimiter, had is
// false and body is the full input. If the delimiter does not occur a second
// time, ErrMissingClosingDelimiter is returned.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	if !bytes.HasPrefix(content, delimiter) {
		return nil, content, false, nil
	}

	parts := bytes.SplitN(content, delimiter, 3)
	if len(parts) != 3 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	if len(parts[0]) != 0 {
		return nil, nil, false, ErrUnexpectedPrefix
	}
	return parts[1], parts[2], true, nil
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
//
// An empty or null document yields an empty map. A document that is not a
// key/value mapping is rejected with ErrNotMapping.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(frontmatter, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return map[string]any{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return map[string]any{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	var fields map[string]any
	if err := root.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ErrMissingClosingDelimiter indicates the document started with a front
// matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// ErrUnexpectedPrefix indicates text was found before the opening delimiter.
var ErrUnexpectedPrefix = errors.New("unexpected text before front matter delimiter")

// ErrNotMapping indicates the front matter block is valid YAML but not a mapping.
var ErrNotMapping = errors.New("front matter is not a key/value mapping")
