// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package catalog

import (
	"bytes"
	"io"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type importRecord struct {
	Name        string `yaml:"name"`
	City        string `yaml:"city"`
	State       string `yaml:"state"`
	Type        string `yaml:"type"`
	Website     string `yaml:"website"`
	Description string `yaml:"description"`
}

type importDocument struct {
	Schools []importRecord `yaml:"schools"`
}

// ParseImportFile reads schools from YAML or JSON. The document is either a
// list of schools or a mapping with a "schools" list.
func ParseImportFile(r io.Reader) ([]School, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, oops.Code(CodeImportParse).With("operation", "read import file").Wrap(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, oops.Code(CodeImportParse).Errorf("import file is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, oops.Code(CodeImportParse).Wrap(err)
	}

	if len(root.Content) == 0 {
		return nil, oops.Code(CodeImportParse).Errorf("import file is empty")
	}

	var records []importRecord
	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&records)
	case yaml.MappingNode:
		var wrapped importDocument
		err = doc.Decode(&wrapped)
		records = wrapped.Schools
	default:
		return nil, oops.Code(CodeImportParse).Errorf("import file must contain a list of schools")
	}
	if err != nil {
		return nil, oops.Code(CodeImportParse).Wrap(err)
	}

	schools := make([]School, 0, len(records))
	for _, rec := range records {
		schools = append(schools, School{
			Name:        rec.Name,
			City:        rec.City,
			State:       rec.State,
			Type:        rec.Type,
			Website:     rec.Website,
			Description: rec.Description,
		})
	}
	return schools, nil
}
