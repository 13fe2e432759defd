// Package seed loads document tree fixtures into a space.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	models "lessontree/internal/domain/models/classroom"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is a space and its nested documents, in sibling order
type Fixture struct {
	Space     string        `yaml:"space"`
	Documents []FixtureNode `yaml:"documents"`
}

// FixtureNode is one document; Type defaults to "document"
type FixtureNode struct {
	Title    string              `yaml:"title"`
	Type     models.DocumentType `yaml:"type"`
	Children []FixtureNode       `yaml:"children"`
}

// DefaultFixture returns the built-in sample space
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads a fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates fixture YAML
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if strings.TrimSpace(f.Space) == "" {
		return nil, fmt.Errorf("fixture: space name is required")
	}
	if err := validateNodes(f.Documents, "documents"); err != nil {
		return nil, err
	}
	return &f, nil
}

// Count returns the number of documents in the fixture
func (f *Fixture) Count() int {
	return countNodes(f.Documents)
}

func validateNodes(nodes []FixtureNode, path string) error {
	for i, n := range nodes {
		at := fmt.Sprintf("%s[%d]", path, i)
		if strings.TrimSpace(n.Title) == "" {
			return fmt.Errorf("fixture: %s: title is required", at)
		}
		switch n.Type {
		case "", models.DocumentTypeDocument, models.DocumentTypeAssignment, models.DocumentTypeSubmission:
		default:
			return fmt.Errorf("fixture: %s: unknown type %q", at, n.Type)
		}
		if err := validateNodes(n.Children, at+".children"); err != nil {
			return err
		}
	}
	return nil
}

func countNodes(nodes []FixtureNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countNodes(node.Children)
	}
	return n
}
