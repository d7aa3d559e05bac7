/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/errors"
)

// File is the YAML form of a schema declaration:
//
//	settings:
//	  timestamps: {createdAt: createdAt, updatedAt: updatedAt}
//	  saveUnknown: ["meta.**"]
//	attributes:
//	  id: {type: String, hashKey: true}
//	  tags: {type: {name: Set, element: String}}
//	  data: {type: [String, Number]}
type File struct {
	Name       string                   `yaml:"name"`
	Settings   yamlSettings             `yaml:"settings"`
	Attributes map[string]yamlAttribute `yaml:"attributes"`
}

type yamlSettings struct {
	Timestamps struct {
		CreatedAt string `yaml:"createdAt"`
		UpdatedAt string `yaml:"updatedAt"`
	} `yaml:"timestamps"`
	SaveUnknown    []string `yaml:"saveUnknown"`
	SaveUnknownAll bool     `yaml:"saveUnknownAll"`
}

type yamlAttribute struct {
	Type         yamlTypes                `yaml:"type"`
	Schema       map[string]yamlAttribute `yaml:"schema"`
	Elements     []yamlAttribute          `yaml:"elements"`
	Default      any                      `yaml:"default"`
	ForceDefault bool                     `yaml:"forceDefault"`
	Validate     string                   `yaml:"validate"`
	Required     bool                     `yaml:"required"`
	Enum         []any                    `yaml:"enum"`
	Index        []yamlIndex              `yaml:"index"`
	HashKey      bool                     `yaml:"hashKey"`
	RangeKey     bool                     `yaml:"rangeKey"`
}

type yamlIndex struct {
	Name       string   `yaml:"name"`
	Local      bool     `yaml:"local"`
	RangeKey   string   `yaml:"rangeKey"`
	Projection []string `yaml:"projection"`
}

// yamlType is one candidate type, written either as a bare name or as a
// mapping carrying its settings.
type yamlType struct {
	Name        string                   `yaml:"name"`
	Storage     string                   `yaml:"storage"`
	Value       any                      `yaml:"value"`
	Attributes  []string                 `yaml:"attributes"`
	Separator   string                   `yaml:"separator"`
	Element     string                   `yaml:"element"`
	HashKey     string                   `yaml:"hashKey"`
	HashKeyType string                   `yaml:"hashKeyType"`
	Schema      map[string]yamlAttribute `yaml:"schema"`
}

type yamlTypes []yamlType

// UnmarshalYAML accepts a bare name, a settings mapping, or a sequence of either.
func (t *yamlTypes) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode, yaml.MappingNode:
		one, err := decodeType(node)
		if err != nil {
			return err
		}
		*t = yamlTypes{one}
		return nil
	case yaml.SequenceNode:
		out := make(yamlTypes, 0, len(node.Content))
		for _, item := range node.Content {
			one, err := decodeType(item)
			if err != nil {
				return err
			}
			out = append(out, one)
		}
		*t = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a type name, mapping or list", node.Line)
	}
}

func decodeType(node *yaml.Node) (yamlType, error) {
	var out yamlType
	switch node.Kind {
	case yaml.ScalarNode:
		if err := node.Decode(&out.Name); err != nil {
			return out, err
		}
	case yaml.MappingNode:
		if err := node.Decode(&out); err != nil {
			return out, err
		}
	default:
		return out, fmt.Errorf("line %d: expected a type name or mapping", node.Line)
	}
	return out, nil
}

// LoadYAML reads and builds a schema from a YAML file.
func LoadYAML(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML builds a schema from a YAML declaration.
func ParseYAML(data []byte) (*Schema, error) {
	s, _, err := ParseYAMLFile(data)
	return s, err
}

// ParseYAMLFile builds a schema and also returns the declared entity name.
func ParseYAMLFile(data []byte) (*Schema, string, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("failed to parse schema: %w", err)
	}
	def, err := convertDefinition(f.Attributes, "")
	if err != nil {
		return nil, "", err
	}
	settings := Settings{
		Timestamps: Timestamps{
			CreatedAt: f.Settings.Timestamps.CreatedAt,
			UpdatedAt: f.Settings.Timestamps.UpdatedAt,
		},
		SaveUnknown:    f.Settings.SaveUnknown,
		SaveUnknownAll: f.Settings.SaveUnknownAll,
	}
	s, err := New(def, WithSettings(settings))
	if err != nil {
		return nil, "", err
	}
	return s, f.Name, nil
}

func convertDefinition(attrs map[string]yamlAttribute, prefix string) (Definition, error) {
	if attrs == nil {
		return nil, nil
	}
	def := make(Definition, len(attrs))
	for name, ya := range attrs {
		path := join(prefix, name)
		ad, err := convertAttribute(ya, path)
		if err != nil {
			return nil, err
		}
		def[name] = ad
	}
	return def, nil
}

func convertAttribute(ya yamlAttribute, path string) (AttributeDefinition, error) {
	ad := AttributeDefinition{
		Default:      ya.Default,
		ForceDefault: ya.ForceDefault,
		Required:     ya.Required,
		Enum:         ya.Enum,
		HashKey:      ya.HashKey,
		RangeKey:     ya.RangeKey,
	}
	if ya.Validate != "" {
		re, err := regexp.Compile(ya.Validate)
		if err != nil {
			return ad, errors.NewSchemaDeclarationError(path, "invalid validate pattern: %v", err)
		}
		ad.Validate = re
	}
	for _, idx := range ya.Index {
		ad.Index = append(ad.Index, IndexDefinition(idx))
	}
	var err error
	if ad.Schema, err = convertDefinition(ya.Schema, path); err != nil {
		return ad, err
	}
	for _, el := range ya.Elements {
		converted, err := convertAttribute(el, path+".0")
		if err != nil {
			return ad, err
		}
		ad.Elements = append(ad.Elements, converted)
	}
	for _, yt := range ya.Type {
		ts, err := convertType(yt, path)
		if err != nil {
			return ad, err
		}
		ad.Type = append(ad.Type, ts)
	}
	return ad, nil
}

func convertType(yt yamlType, path string) (TypeSpec, error) {
	name, err := attrtype.Parse(yt.Name)
	if err != nil {
		return TypeSpec{}, errors.NewSchemaDeclarationError(path, "%v", err)
	}
	ts := TypeSpec{Spec: attrtype.Spec{Name: name}}
	switch name {
	case attrtype.Date:
		ts.Settings.Storage = attrtype.DateStorage(yt.Storage)
	case attrtype.Constant:
		ts.Settings.Value = yt.Value
	case attrtype.Combine:
		ts.Settings.Attributes = yt.Attributes
		ts.Settings.Separator = yt.Separator
	case attrtype.ModelRef:
		if yt.HashKey == "" {
			return TypeSpec{}, errors.NewSchemaDeclarationError(path, "model reference requires hashKey")
		}
		keyType := attrtype.String
		if yt.HashKeyType != "" {
			if keyType, err = attrtype.Parse(yt.HashKeyType); err != nil {
				return TypeSpec{}, errors.NewSchemaDeclarationError(path, "%v", err)
			}
		}
		ts.Settings.Ref = KeyRef{Key: yt.HashKey, Type: keyType}
	case attrtype.SetType:
		element, err := attrtype.Parse(yt.Element)
		if err != nil {
			return TypeSpec{}, errors.NewSchemaDeclarationError(path, "set element: %v", err)
		}
		el := attrtype.Spec{Name: element}
		if element == attrtype.Date {
			el.Settings.Storage = attrtype.DateStorage(yt.Storage)
		}
		ts.Settings.Element = &el
	case attrtype.Map:
		if ts.Schema, err = convertDefinition(yt.Schema, path); err != nil {
			return TypeSpec{}, err
		}
	}
	return ts, nil
}
