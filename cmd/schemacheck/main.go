/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command schemacheck loads a YAML schema declaration, reports declaration
// errors, and prints the attributes and index catalog it resolves to.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/suparena/shapestore"
	"github.com/suparena/shapestore/config"
	"github.com/suparena/shapestore/schema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schemacheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaFile := fs.String("schema", "", "Path to the YAML schema (defaults to SHAPESTORE_SCHEMA_FILE)")
	env := fs.String("env", "", "Environment whose .env file supplies defaults")
	versionFlag := fs.Bool("version", false, "Show version information")
	vFlag := fs.Bool("v", false, "Show version information (short)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *versionFlag || *vFlag {
		info := shapestore.GetVersionInfo()
		fmt.Fprintf(stdout, "shapestore schemacheck version %s\n", info.Version)
		fmt.Fprintf(stdout, "Git commit: %s\n", info.GitCommit)
		fmt.Fprintf(stdout, "Build date: %s\n", info.BuildDate)
		fmt.Fprintf(stdout, "Go version: %s\n", info.GoVersion)
		return 0
	}

	path := *schemaFile
	if path == "" {
		cfg, err := config.Load(*env)
		if err != nil {
			fmt.Fprintf(stderr, "error: no -schema given and configuration failed: %v\n", err)
			return 1
		}
		path = cfg.SchemaFile
	}
	if path == "" {
		fmt.Fprintln(stderr, "error: no schema file (use -schema or SHAPESTORE_SCHEMA_FILE)")
		return 1
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	s, name, err := schema.ParseYAMLFile(data)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s: %v\n", path, err)
		return 1
	}
	if name == "" {
		name = path
	}
	report(stdout, name, s)
	return 0
}

func report(w io.Writer, name string, s *schema.Schema) {
	fmt.Fprintf(w, "schema %s\n\n", name)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTRIBUTE\tTYPES\tFLAGS")
	s.Walk(func(path string, a *schema.Attribute) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", path, strings.Join(a.TypeNames(), "|"), flags(a))
	})
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tKIND\tHASH\tRANGE")
	for _, idx := range s.Indexes() {
		idxName, kind := idx.Name, "local"
		switch {
		case idx.IsTableIndex:
			idxName, kind = "(table)", "table"
		case idx.Global:
			kind = "global"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", idxName, kind, idx.HashKey, orDash(idx.RangeKey))
	}
	tw.Flush()
}

func flags(a *schema.Attribute) string {
	var out []string
	if a.HashKey {
		out = append(out, "hash")
	}
	if a.RangeKey {
		out = append(out, "range")
	}
	if a.Required {
		out = append(out, "required")
	}
	if a.HasDefault() {
		out = append(out, "default")
	}
	if len(a.Enum) > 0 {
		out = append(out, "enum")
	}
	if a.HasValidator() {
		out = append(out, "validate")
	}
	return orDash(strings.Join(out, ","))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
