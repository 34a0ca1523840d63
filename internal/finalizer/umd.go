package finalizer

import "strings"

func finalizeUMD(in Input) string {
	var sb strings.Builder
	sb.WriteString("(function (global, factory) {\n")
	sb.WriteString("  typeof exports === 'object' && typeof module !== 'undefined' ? factory(" + umdCJSArgs(in) + ") :\n")
	sb.WriteString("  typeof define === 'function' && define.amd ? define(" + umdAMDArgs(in) + ") :\n")
	sb.WriteString("  (global = typeof globalThis !== 'undefined' ? globalThis : global || self, factory(" + umdGlobalArgs(in) + "));\n")
	sb.WriteString("}(this, (function (" + umdParams(in) + ") { 'use strict';\n\n")
	if in.Code != "" {
		sb.WriteString(in.Code)
		sb.WriteString("\n\n")
	}
	for _, e := range in.Exports {
		sb.WriteString("  exports." + e.Exported + " = " + firstNonEmpty(e.Expression, e.Local) + ";\n")
	}
	sb.WriteString("\n})));")
	return sb.String()
}

func umdParams(in Input) string {
	var params []string
	if in.HasExports {
		params = append(params, "exports")
	}
	for _, dep := range in.Dependencies {
		params = append(params, cjsRequireVarName(dep))
	}
	return strings.Join(params, ", ")
}

func umdCJSArgs(in Input) string {
	var args []string
	if in.HasExports {
		args = append(args, "exports")
	}
	for _, dep := range in.Dependencies {
		args = append(args, "require('"+dep.ID+"')")
	}
	return strings.Join(args, ", ")
}

func umdAMDArgs(in Input) string {
	var ids []string
	if in.HasExports {
		ids = append(ids, "'exports'")
	}
	for _, dep := range in.Dependencies {
		ids = append(ids, "'"+dep.ID+"'")
	}
	return "[" + strings.Join(ids, ", ") + "], factory"
}

func umdGlobalArgs(in Input) string {
	var args []string
	if in.HasExports {
		name := in.GlobalName
		if name == "" {
			name = "bundle"
		}
		args = append(args, "global."+name+" = {}")
	}
	for _, dep := range in.Dependencies {
		name := dep.GlobalName
		if name == "" {
			name = "undefined"
		} else {
			name = "global." + name
		}
		args = append(args, name)
	}
	return strings.Join(args, ", ")
}
