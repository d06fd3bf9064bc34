package filter

import (
	"slices"
	"strings"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
)

// Facets lists the distinct values available to the level, class and method predicates
type Facets struct {
	Levels  []string
	Classes []ClassOption
	Methods []MethodOption
}

// ClassOption is a class predicate choice split for display
type ClassOption struct {
	Value   string // Full class name
	Name    string // Simple name, "Unknown" if empty
	Package string // Everything before the simple name
}

// MethodOption is a method predicate choice split for display.
// Method values look like "void handle(java.lang.String, int)".
type MethodOption struct {
	Value      string
	ReturnType string
	Name       string
	Parameters []string // Simple type names
}

// Label renders the method as "name(Param, Param)"
func (m MethodOption) Label() string {
	return m.Name + "(" + strings.Join(m.Parameters, ", ") + ")"
}

// BuildFacets collects facets over all records, in first-appearance order
// for levels and by simple name for classes and methods
func BuildFacets(records []domain.LogRecord) Facets {
	var f Facets
	levels := make(map[string]struct{})
	classes := make(map[string]struct{})
	methods := make(map[string]struct{})

	for i := range records {
		r := &records[i]
		if _, ok := levels[r.Level]; !ok && strings.TrimSpace(r.Level) != "" {
			levels[r.Level] = struct{}{}
			f.Levels = append(f.Levels, r.Level)
		}
		if _, ok := classes[r.ClassName]; !ok && strings.TrimSpace(r.ClassName) != "" {
			classes[r.ClassName] = struct{}{}
			f.Classes = append(f.Classes, SplitClassName(r.ClassName))
		}
		if _, ok := methods[r.Method]; !ok && strings.TrimSpace(r.Method) != "" {
			methods[r.Method] = struct{}{}
			f.Methods = append(f.Methods, SplitMethod(r.Method))
		}
	}

	slices.SortStableFunc(f.Classes, func(a, b ClassOption) int { return strings.Compare(a.Name, b.Name) })
	slices.SortStableFunc(f.Methods, func(a, b MethodOption) int { return strings.Compare(a.Name, b.Name) })
	return f
}

// SplitClassName splits "com.example.Service" into package and simple name
func SplitClassName(full string) ClassOption {
	opt := ClassOption{Value: full, Name: full}
	if i := strings.LastIndex(full, "."); i >= 0 {
		opt.Package = full[:i]
		opt.Name = full[i+1:]
	}
	if opt.Name == "" {
		opt.Name = "Unknown"
	}
	return opt
}

// SplitMethod splits "Result name(pkg.A, B)" into its parts
func SplitMethod(full string) MethodOption {
	opt := MethodOption{Value: full}

	returnType, rest, found := strings.Cut(full, " ")
	opt.ReturnType = returnType
	if !found || rest == "" {
		rest = "Unknown"
	}

	name, params, hasParams := strings.Cut(rest, "(")
	opt.Name = name
	if hasParams {
		params, _, _ = strings.Cut(params, ")")
		for _, p := range strings.Split(params, ",") {
			if p = strings.TrimSpace(p); p != "" {
				opt.Parameters = append(opt.Parameters, SplitClassName(p).Name)
			}
		}
	}
	return opt
}
