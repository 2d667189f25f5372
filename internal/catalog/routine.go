package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// RoutineKind tags the Routine variant.
type RoutineKind int

const (
	KindProcedure RoutineKind = iota
	KindFunction
)

func (k RoutineKind) String() string {
	if k == KindFunction {
		return "function"
	}
	return "procedure"
}

// ParseRoutineKind maps vendor routine type names to a RoutineKind.
func ParseRoutineKind(s string) RoutineKind {
	if strings.EqualFold(strings.TrimSpace(s), "FUNCTION") {
		return KindFunction
	}
	return KindProcedure
}

// FunctionInfo is the function-only part of a Routine.
type FunctionInfo struct {
	ReturnType string
}

// Routine is a stored procedure or function.
type Routine struct {
	Kind       RoutineKind
	Remarks    string
	Body       string
	Definition string
	Function   *FunctionInfo
	Attributes map[string]any

	schema     *Schema
	key        Key
	parameters NamedList[*Parameter]
}

func (r *Routine) Key() Key         { return r.key }
func (r *Routine) FullName() string { return r.key.FullName() }
func (r *Routine) Name() string     { return r.key.Name }
func (r *Routine) Schema() *Schema  { return r.schema }

// SpecificName disambiguates overloaded routines.
func (r *Routine) SpecificName() string { return r.key.Specific }

// IsFunction reports whether the routine is the function variant.
func (r *Routine) IsFunction() bool { return r.Kind == KindFunction }

// ResolveParameter returns the named parameter, creating it on first reference.
func (r *Routine) ResolveParameter(name string) (*Parameter, bool) {
	key := r.key.Child(name)
	key.Specific = r.key.Specific
	return resolveIn(r.schema.Catalog(), &r.parameters, key, func() *Parameter {
		return &Parameter{routine: r, name: name}
	})
}

// Parameters returns the parameters by ordinal position.
func (r *Routine) Parameters() []*Parameter {
	ps := r.parameters.All()
	slices.SortStableFunc(ps, func(a, b *Parameter) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	return ps
}

// LookupParameter finds a parameter by name.
func (r *Routine) LookupParameter(name string) (*Parameter, bool) {
	return r.parameters.LookupName(name)
}

// ParameterMode is the direction of a routine parameter.
type ParameterMode string

const (
	ModeUnknown ParameterMode = "unknown"
	ModeIn      ParameterMode = "in"
	ModeInOut   ParameterMode = "inout"
	ModeOut     ParameterMode = "out"
	ModeResult  ParameterMode = "result"
	ModeReturn  ParameterMode = "return"
)

// ParseParameterMode accepts mode names ("IN", "INOUT") as well as the
// numeric codes reported by metadata drivers.
func ParseParameterMode(s string) ParameterMode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN", "1":
		return ModeIn
	case "INOUT", "IN/OUT", "2":
		return ModeInOut
	case "OUT", "4":
		return ModeOut
	case "RESULT", "3":
		return ModeResult
	case "RETURN", "5":
		return ModeReturn
	}
	return ModeUnknown
}

// ReturnValueName names the parameter synthesized for a routine result that
// the database reports without a name.
const ReturnValueName = "<return value>"

// Parameter is a routine parameter.
type Parameter struct {
	Ordinal       int
	Mode          ParameterMode
	Type          *DataType
	Size          int
	DecimalDigits int
	Nullable      bool
	Remarks       string
	Attributes    map[string]any

	routine *Routine
	name    string
}

func (p *Parameter) Key() Key {
	k := p.routine.key.Child(p.name)
	k.Specific = p.routine.key.Specific
	return k
}
func (p *Parameter) FullName() string  { return p.routine.FullName() + "." + p.name }
func (p *Parameter) Name() string      { return p.name }
func (p *Parameter) Routine() *Routine { return p.routine }
