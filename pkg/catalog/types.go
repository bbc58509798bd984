package catalog

import (
	"gopkg.in/yaml.v3"
)

// Compound function types, built by the catalog itself.
const (
	TypeAll = "all"
	TypeAny = "any"
	TypeTry = "try"
)

// Definition is the YAML form of an api:
//
//	name: shop
//	context_root: /shop
//	functions:
//	  - type: require_basic_authentication
//	  - type: set_response_content
//	    config:
//	      content: "hello ${account.username}"
//	on_error:
//	  - type: set_response_content
//	    config:
//	      content: "${error.message}"
//	      status_code: "500"
type Definition struct {
	Name        string `yaml:"name" validate:"required"`
	ContextRoot string `yaml:"context_root" validate:"required,startswith=/"`
	Functions   []Node `yaml:"functions" validate:"dive"`
	OnError     []Node `yaml:"on_error" validate:"dive"`

	// File is the path the definition was read from.
	File string `yaml:"-"`
}

// Node is a function in a definition.
type Node struct {
	Type      string            `yaml:"type" validate:"required"`
	Name      string            `yaml:"name"`
	Config    map[string]string `yaml:"config"`
	Functions []Node            `yaml:"functions" validate:"dive"`
	OnError   []Node            `yaml:"on_error" validate:"dive"`
	Next      *Node             `yaml:"next"`

	// Line is where the node starts in its file.
	Line int `yaml:"-"`
}

// UnmarshalYAML records the line of the node.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	type plain Node
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.Line = value.Line
	return nil
}

// IsCompound reports whether the node is built from child nodes.
func (n *Node) IsCompound() bool {
	switch n.Type {
	case TypeAll, TypeAny, TypeTry:
		return true
	}
	return false
}
