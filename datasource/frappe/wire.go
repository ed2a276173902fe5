package frappe

import (
	"strconv"
	"strings"

	"github.com/c360/docgraph/datasource"
)

// listEnvelope wraps /api/resource listing responses.
type listEnvelope struct {
	Data []struct {
		Name string `json:"name"`
	} `json:"data"`
}

// schemaEnvelope wraps a single schema document.
type schemaEnvelope struct {
	Data typeDoc `json:"data"`
}

// recordsEnvelope wraps sampled documents.
type recordsEnvelope struct {
	Data []datasource.Record `json:"data"`
}

// typeDoc is the backend's own schema representation. Boolean flags
// arrive as 0/1 integers on most instances, so they decode through
// flexBool before conversion to the source-agnostic form.
type typeDoc struct {
	Name          string      `json:"name"`
	Module        string      `json:"module"`
	Custom        flexBool    `json:"custom"`
	IsVirtual     flexBool    `json:"is_virtual"`
	IsSubmittable flexBool    `json:"is_submittable"`
	HasWebView    flexBool    `json:"has_web_view"`
	Fields        []typeField `json:"fields"`
}

type typeField struct {
	Fieldname string `json:"fieldname"`
	Fieldtype string `json:"fieldtype"`
	Options   string `json:"options"`
}

// empty reports whether the backend answered with a schema document
// that carries no content at all.
func (d typeDoc) empty() bool {
	return d.Name == "" && d.Module == "" && len(d.Fields) == 0
}

// toSchema converts the wire document into a datasource.Schema.
// fallbackName covers responses that omit the document name.
func (d typeDoc) toSchema(fallbackName string) *datasource.Schema {
	name := d.Name
	if name == "" {
		name = fallbackName
	}

	fields := make([]datasource.Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, datasource.Field{
			Name:   f.Fieldname,
			Kind:   f.Fieldtype,
			Target: f.Options,
		})
	}

	return &datasource.Schema{
		Name:        name,
		Module:      d.Module,
		Custom:      bool(d.Custom),
		Virtual:     bool(d.IsVirtual),
		Submittable: bool(d.IsSubmittable),
		HasWebView:  bool(d.HasWebView),
		Fields:      fields,
	}
}

// flexBool accepts JSON booleans and the 0/1 integers the backend uses
// interchangeably for check fields.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch s := strings.TrimSpace(string(data)); s {
	case "true":
		*b = true
	case "false", "null":
		*b = false
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}
