package finalizer

import "strings"

func finalizeSystem(in Input) string {
	var deps []string
	var setters []string
	for _, dep := range in.Dependencies {
		deps = append(deps, "'"+dep.ID+"'")
		setters = append(setters, "function (module) {}")
	}

	executeKeyword := "function"
	if in.UsesTopLevelAwait {
		executeKeyword = "async function"
	}

	var sb strings.Builder
	sb.WriteString("System.register([" + strings.Join(deps, ", ") + "], function (exports, module) {\n")
	sb.WriteString("  'use strict';\n")
	sb.WriteString("  return {\n")
	sb.WriteString("    setters: [" + strings.Join(setters, ", ") + "],\n")
	sb.WriteString("    execute: " + executeKeyword + " () {\n\n")
	if in.Code != "" {
		sb.WriteString(indentLines(in.Code, "      "))
		sb.WriteString("\n\n")
	}
	for _, e := range in.Exports {
		sb.WriteString("      exports('" + e.Exported + "', " + firstNonEmpty(e.Expression, e.Local) + ");\n")
	}
	sb.WriteString("\n    }\n")
	sb.WriteString("  };\n")
	sb.WriteString("});")
	return sb.String()
}

func indentLines(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}
