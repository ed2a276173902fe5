package export

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/docgraph/errors"
)

//go:embed nodelink_schema.json
var nodeLinkSchema []byte

// ValidateNodeLink checks an exported JSON file against the node-link
// schema. Returns nil when the document is valid; otherwise an error
// listing every violation.
func ValidateNodeLink(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "export", "ValidateNodeLink", "export file read")
	}

	schemaLoader := gojsonschema.NewBytesLoader(nodeLinkSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.Wrap(err, "export", "ValidateNodeLink", "schema validation")
	}
	if !result.Valid() {
		msg := filepath.Base(path)
		for _, desc := range result.Errors() {
			msg += fmt.Sprintf("\n  - %s: %s", desc.Field(), desc.Description())
		}
		return errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrValidationFailed, msg),
			"export", "ValidateNodeLink", "document check")
	}
	return nil
}
