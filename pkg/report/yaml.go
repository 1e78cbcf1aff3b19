// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔧 YAMLEncoder renders the report as YAML
type YAMLEncoder struct{}

func init() {
	Register(&YAMLEncoder{})
}

// 🔍 CanEncode checks if this encoder can handle the given file
func (e *YAMLEncoder) CanEncode(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Encode writes the report as YAML
func (e *YAMLEncoder) Encode(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(rep); err != nil {
		_ = enc.Close()
		return errors.Errorf("encoding YAML report: %w", err)
	}

	if err := enc.Close(); err != nil {
		return errors.Errorf("encoding YAML report: %w", err)
	}

	return nil
}
