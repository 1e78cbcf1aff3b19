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
	"bytes"
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Encoder renders a report in one output format
type Encoder interface {
	// 📝 Encode writes the rendered report to w
	Encode(w io.Writer, rep *Report) error

	// 🔍 CanEncode checks if this encoder can handle the given file
	CanEncode(filename string) bool
}

var (
	// 🗺️ encoders is a list of available encoders
	encoders []Encoder
)

// 📝 Register registers an encoder
func Register(e Encoder) {
	encoders = append(encoders, e)
}

// 🎯 GetEncoder returns an encoder that can handle the given file
func GetEncoder(filename string) Encoder {
	for _, e := range encoders {
		if e.CanEncode(filename) {
			return e
		}
	}
	return nil
}

// 💾 Write renders the report and writes it to path, picking the encoder
// by file extension.
func Write(ctx context.Context, path string, rep *Report) error {
	enc := GetEncoder(path)
	if enc == nil {
		return errors.Errorf("no encoder found for file: %s", path)
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, rep); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Errorf("writing report file: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("path", path).Msg("report written")
	return nil
}
