package finalizer

import "strings"

// finalizeES keeps native import/export syntax: the chunk already contains
// an ES module body, so the finaliser only needs to prepend import
// statements and append the export clause.
func finalizeES(in Input) string {
	var sb strings.Builder

	for _, dep := range in.Dependencies {
		sb.WriteString(esImportStatement(dep))
	}

	if in.Code != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(in.Code)
	}

	if clause := esExportClause(in); clause != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(clause)
	}

	return sb.String()
}

func esImportStatement(dep Dependency) string {
	var named []string
	for _, imp := range dep.Imports {
		if imp.Imported == imp.Local {
			named = append(named, imp.Imported)
		} else {
			named = append(named, imp.Imported+" as "+imp.Local)
		}
	}
	if len(named) == 0 {
		return "import '" + dep.ID + "';\n"
	}
	return "import { " + strings.Join(named, ", ") + " } from '" + dep.ID + "';\n"
}

func esExportClause(in Input) string {
	var sb strings.Builder

	for _, dep := range in.Dependencies {
		for _, re := range dep.Reexports {
			switch {
			case re.Imported == "*" && re.Exported == "*":
				sb.WriteString("export * from '" + dep.ID + "';\n")
			case re.Imported == "*":
				sb.WriteString("export * as " + re.Exported + " from '" + dep.ID + "';\n")
			default:
				sb.WriteString("export { " + re.Imported + " as " + re.Exported + " } from '" + dep.ID + "';\n")
			}
		}
	}

	var names []string
	for _, e := range in.Exports {
		if e.Expression != "" {
			continue
		}
		if e.Local == e.Exported {
			names = append(names, e.Local)
		} else {
			names = append(names, e.Local+" as "+e.Exported)
		}
	}
	if len(names) > 0 {
		sb.WriteString("export { " + strings.Join(names, ", ") + " };\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
