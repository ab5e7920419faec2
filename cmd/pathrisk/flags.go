package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// flagKeys maps flag names to config keys understood by MergeWithFlags.
var flagKeys = map[string]string{
	"graph":                 "graph",
	"source":                "source",
	"target":                "target",
	"threshold":             "threshold",
	"max-depth":             "max_depth",
	"cache-size":            "cache_size",
	"strategy":              "strategy",
	"strategies":            "strategies",
	"permutation-max-nodes": "permutation_max_nodes",
	"hamiltonian":           "hamiltonian",
	"prune":                 "prune",
	"parallel":              "parallel",
	"format":                "format",
	"json":                  "json",
	"csv":                   "csv",
	"html":                  "html",
	"metrics-file":          "metrics_file",
	"log-level":             "log_level",
	"otel-endpoint":         "otel_endpoint",
	"otel-insecure":         "otel_insecure",
}

// changedFlags collects the flags set on the command line, keyed for
// config.MergeWithFlags. Flags left at their default never override the file.
func changedFlags(cmd *cobra.Command) (map[string]any, error) {
	fs := cmd.Flags()
	out := map[string]any{}
	for name, key := range flagKeys {
		if !fs.Changed(name) {
			continue
		}
		var (
			v   any
			err error
		)
		switch t := fs.Lookup(name).Value.Type(); t {
		case "string":
			v, err = fs.GetString(name)
		case "int":
			v, err = fs.GetInt(name)
		case "float64":
			v, err = fs.GetFloat64(name)
		case "bool":
			v, err = fs.GetBool(name)
		case "stringSlice":
			v, err = fs.GetStringSlice(name)
		default:
			err = fmt.Errorf("flag --%s has unsupported type %s", name, t)
		}
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}
