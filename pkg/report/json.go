package report

import (
	"encoding/json"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔧 JSONEncoder renders the report as indented JSON
type JSONEncoder struct{}

func init() {
	Register(&JSONEncoder{})
}

// 🔍 CanEncode checks if this encoder can handle the given file
func (e *JSONEncoder) CanEncode(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".json")
}

// 📝 Encode writes the report as JSON
func (e *JSONEncoder) Encode(w io.Writer, rep *Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Errorf("encoding JSON report: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return errors.Errorf("writing JSON report: %w", err)
	}

	return nil
}
