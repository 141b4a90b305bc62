// Package variables synchronizes query-mode column filters with the
// host's template variables.
package variables

// Type is the host-side template variable kind.
type Type string

const (
	TypeQuery      Type = "query"
	TypeCustom     Type = "custom"
	TypeTextbox    Type = "textbox"
	TypeConstant   Type = "constant"
	TypeDatasource Type = "datasource"
	TypeInterval   Type = "interval"
	TypeAdhoc      Type = "adhoc"
)

// Option is the current selection of a variable. Multi-value variables
// carry every selected value.
type Option struct {
	Value []string `json:"value"`
}

// Variable is the read-only view of one host template variable.
type Variable struct {
	Name    string `json:"name"`
	Type    Type   `json:"type"`
	Multi   bool   `json:"multi"`
	Current Option `json:"current"`
}

// Provider is the host capability exposing template variables.
type Provider interface {
	Variables() []Variable
}

// LocationService is the host capability for writing query params. Saving
// a query-mode filter sets "var-<name>"; clearing the filter removes it
// by writing the empty string.
type LocationService interface {
	UpdateQueryParams(params map[string]string)
}

func findVariable(vars []Variable, name string) (Variable, bool) {
	for _, v := range vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
