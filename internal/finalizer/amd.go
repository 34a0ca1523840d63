package finalizer

import "strings"

func finalizeAMD(in Input) string {
	var ids []string
	var params []string
	if in.HasExports {
		ids = append(ids, "'exports'")
		params = append(params, "exports")
	}
	for _, dep := range in.Dependencies {
		ids = append(ids, "'"+dep.ID+"'")
		params = append(params, cjsRequireVarName(dep))
	}

	var sb strings.Builder
	sb.WriteString("define([" + strings.Join(ids, ", ") + "], function (" + strings.Join(params, ", ") + ") { 'use strict';\n\n")
	if in.Code != "" {
		sb.WriteString(in.Code)
		sb.WriteString("\n\n")
	}
	for _, e := range in.Exports {
		sb.WriteString("  exports." + e.Exported + " = " + firstNonEmpty(e.Expression, e.Local) + ";\n")
	}
	sb.WriteString("\n});")
	return sb.String()
}
