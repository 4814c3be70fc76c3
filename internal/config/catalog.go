// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/util"
)

// catalogFile is the shape of models.yaml:
//
//	models:
//	  - id: openai:gpt-5
//	    label: GPT-5
//	    cost_per_1k: 1.25
type catalogFile struct {
	Models []model.ModelInfo `yaml:"models"`
}

// LoadCatalog reads the model switcher list from path. A missing file, or
// one listing no models, yields the built-in catalog.
func LoadCatalog(path string) ([]model.ModelInfo, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DefaultCatalog, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	models := make([]model.ModelInfo, 0, len(file.Models))
	seen := make(map[string]bool, len(file.Models))
	for i, m := range file.Models {
		if m.ID == "" {
			return nil, errors.Errorf("%s: model %d has no id", path, i+1)
		}
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if m.Label == "" {
			m.Label = model.ModelName(m.ID)
		}
		models = append(models, m)
	}
	if len(models) == 0 {
		return model.DefaultCatalog, nil
	}
	return models, nil
}

// WriteCatalog writes models to path in the models.yaml format.
func WriteCatalog(path string, models []model.ModelInfo) error {
	data, err := yaml.Marshal(catalogFile{Models: models})
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	return util.AtomicWriteFileWithDir(path, data, 0644, 0700)
}
