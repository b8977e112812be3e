package codegen

import (
	"strings"
	"text/template"
)

var headerTemplate = template.Must(template.New("header").Parse(headerTemplateSource))

var classOpenTemplate = template.Must(template.New("class").Parse(classOpenTemplateSource))

var functionTemplate = template.Must(template.New("function").Funcs(template.FuncMap{
	"paramList": paramList,
	"argList":   argList,
}).Parse(functionTemplateSource))

const classClose = "}\n"

// hashLocal is the local constant every wrapper declares for its hash.
// Parameters never take this name.
const hashLocal = "hash"

// paramList renders the method parameter list: "int entity, float x".
func paramList(params []paramDef) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

// argList renders the invocation arguments following the hash: ", entity, x".
func argList(params []paramDef) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(", ")
		b.WriteString(p.Name)
	}
	return b.String()
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// docLines splits a free-form comment into XML-escaped doc comment lines,
// dropping blank leading and trailing lines.
func docLines(comment string) []string {
	comment = strings.TrimSpace(strings.ReplaceAll(comment, "\r\n", "\n"))
	if comment == "" {
		return nil
	}
	lines := strings.Split(comment, "\n")
	for i, l := range lines {
		lines[i] = xmlEscaper.Replace(strings.TrimRight(l, " \t"))
	}
	return lines
}

const headerTemplateSource = `// <auto-generated>
//     This file was generated by nativegen {{.Version}}.
//     Catalogue: {{.Groups}} groups, {{.Functions}} natives.
//     Changes to this file will be lost when the code is regenerated.
// </auto-generated>

#nullable disable
#pragma warning disable CS1591

using System;
using System.Numerics;

namespace {{.Namespace}};
`

const classOpenTemplateSource = `
/// <summary>Natives of the {{.Group}} namespace.</summary>
public static unsafe class {{.Name}}
{
`

const functionTemplateSource = `{{if .Summary}}    /// <summary>
{{range .Summary}}    /// {{.}}
{{end}}    /// </summary>
{{end}}    /// <remarks>{{.Remarks}}</remarks>
{{if .Obsolete}}    [Obsolete]
{{end}}    public static {{.ReturnType}} {{.MethodName}}({{paramList .Params}})
    {
        const {{.HashType}} {{.HashLocal}} = {{.Hash}};
        {{if eq .ReturnType "void"}}NativeCall.Invoke({{.HashLocal}}{{argList .Params}});{{else}}return NativeCall.Invoke<{{.ReturnType}}>({{.HashLocal}}{{argList .Params}});{{end}}
    }
`
