package aci

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the backend's date parameter format.
const DateLayout = "15:04:05 02/01/2006"

// Databases is a list of database names, sent joined with "+".
type Databases []string

func (d Databases) String() string { return strings.Join(d, "+") }

// References is a list of document references. Each reference is escaped
// individually and the list joined with "+", so references may contain "+".
type References []string

func (r References) String() string {
	escaped := make([]string, len(r))
	for i, ref := range r {
		escaped[i] = strings.ReplaceAll(url.QueryEscape(ref), "+", "%20")
	}
	return strings.Join(escaped, "+")
}

type param struct {
	name  string
	value string
}

// Parameters is an ordered, case-insensitive multi-map of request parameters for one action.
type Parameters struct {
	action string
	params []param
}

// NewParameters creates an empty parameter set for action.
func NewParameters(action string) *Parameters {
	return &Parameters{action: action}
}

// Action returns the action name.
func (p *Parameters) Action() string { return p.action }

// Add appends a parameter, keeping any existing ones with the same name.
func (p *Parameters) Add(name string, value any) *Parameters {
	p.params = append(p.params, param{name: name, value: FormatValue(value)})
	return p
}

// Set replaces every occurrence of name with a single value at the position
// of the first occurrence, or appends it when absent.
func (p *Parameters) Set(name string, value any) *Parameters {
	v := FormatValue(value)
	out := p.params[:0:0]
	placed := false
	for _, pr := range p.params {
		if !strings.EqualFold(pr.name, name) {
			out = append(out, pr)
			continue
		}
		if !placed {
			out = append(out, param{name: pr.name, value: v})
			placed = true
		}
	}
	if !placed {
		out = append(out, param{name: name, value: v})
	}
	p.params = out
	return p
}

// Del removes every occurrence of name.
func (p *Parameters) Del(name string) *Parameters {
	out := p.params[:0:0]
	for _, pr := range p.params {
		if !strings.EqualFold(pr.name, name) {
			out = append(out, pr)
		}
	}
	p.params = out
	return p
}

// Get returns the first value of name.
func (p *Parameters) Get(name string) (string, bool) {
	for _, pr := range p.params {
		if strings.EqualFold(pr.name, name) {
			return pr.value, true
		}
	}
	return "", false
}

// Has reports whether name is present.
func (p *Parameters) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Len returns the number of parameters, the action excluded.
func (p *Parameters) Len() int { return len(p.params) }

// Clone returns an independent copy.
func (p *Parameters) Clone() *Parameters {
	return &Parameters{action: p.action, params: append([]param(nil), p.params...)}
}

// Encode renders the parameters as a form body, action first, then insertion order.
func (p *Parameters) Encode() string {
	var b strings.Builder
	b.WriteString(ParamAction)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(p.action))
	for _, pr := range p.params {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(pr.name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pr.value))
	}
	return b.String()
}

// String is Encode, for logging.
func (p *Parameters) String() string { return p.Encode() }

// FormatValue renders a parameter value in backend syntax.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(DateLayout)
	case fmt.Stringer:
		return x.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
