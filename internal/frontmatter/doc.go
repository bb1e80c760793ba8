// Package frontmatter splits a leading YAML block from template source and
// partitions its keys into page variables and "$"-prefixed directives.
package frontmatter
