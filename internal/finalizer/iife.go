package finalizer

import "strings"

func finalizeIIFE(in Input) string {
	args := umdGlobalArgs(in)

	var sb strings.Builder
	if in.HasExports && in.GlobalName != "" {
		depParams := strings.TrimPrefix(umdParams(in), "exports, ")
		depParams = strings.TrimPrefix(depParams, "exports")
		sb.WriteString("var " + in.GlobalName + " = (function (" + depParams + ") { 'use strict';\n")
		sb.WriteString("  var exports = {};\n\n")
	} else {
		sb.WriteString("(function (" + umdParams(in) + ") { 'use strict';\n\n")
	}

	if in.Code != "" {
		sb.WriteString(in.Code)
		sb.WriteString("\n\n")
	}

	for _, e := range in.Exports {
		sb.WriteString("  exports." + e.Exported + " = " + firstNonEmpty(e.Expression, e.Local) + ";\n")
	}

	if in.HasExports && in.GlobalName != "" {
		sb.WriteString("\n  return exports;\n")
	}

	sb.WriteString("\n}(" + args + "));")
	return sb.String()
}
