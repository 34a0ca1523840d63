package finalizer

import (
	"fmt"
	"strings"
)

func finalizeCJS(in Input) string {
	var sb strings.Builder
	sb.WriteString("'use strict';\n\n")

	if in.HasExports {
		sb.WriteString("Object.defineProperty(exports, '__esModule', { value: true });\n\n")
	}

	for _, dep := range in.Dependencies {
		sb.WriteString(cjsRequireStatement(dep))
	}

	if in.Code != "" {
		sb.WriteString("\n")
		sb.WriteString(in.Code)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(cjsExportAssignments(in))

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func cjsRequireStatement(dep Dependency) string {
	if len(dep.Imports) == 0 && len(dep.Reexports) == 0 {
		return fmt.Sprintf("require('%s');\n", dep.ID)
	}
	return fmt.Sprintf("var %s = require('%s');\n", cjsRequireVarName(dep), dep.ID)
}

// cjsRequireVarName derives a stable local alias for a required module from
// its first consumed binding; the real graph-backed renderer would instead
// thread through the dependency's own deconflicted variable name.
func cjsRequireVarName(dep Dependency) string {
	if len(dep.Imports) > 0 {
		return dep.Imports[0].Local + "$cjs"
	}
	return "dep$cjs"
}

func cjsExportAssignments(in Input) string {
	var sb strings.Builder

	for _, e := range in.Exports {
		value := firstNonEmpty(e.Expression, e.Local)
		sb.WriteString(fmt.Sprintf("exports.%s = %s;\n", e.Exported, value))
	}

	for _, dep := range in.Dependencies {
		for _, re := range dep.Reexports {
			if re.Imported == "*" {
				sb.WriteString(cjsStarReexport(dep))
				continue
			}
			source := cjsRequireVarName(dep) + "." + re.Imported
			if re.NeedsLiveBinding {
				sb.WriteString(fmt.Sprintf(
					"Object.defineProperty(exports, '%s', { enumerable: true, get: function () { return %s; } });\n",
					re.Exported, source))
			} else {
				sb.WriteString(fmt.Sprintf("exports.%s = %s;\n", re.Exported, source))
			}
		}
	}

	return sb.String()
}

func cjsStarReexport(dep Dependency) string {
	v := cjsRequireVarName(dep)
	return fmt.Sprintf(
		"Object.keys(%s).forEach(function (k) {\n"+
			"  if (k !== 'default' && !Object.prototype.hasOwnProperty.call(exports, k)) exports[k] = %s[k];\n"+
			"});\n", v, v)
}
