package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	rekodo "github.com/reoring/rekodo"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "inspect":
		inspectCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "rekodo CLI\n\nUsage:\n  rekodo inspect -f doc.json|doc.yaml\n\nNotes:\n  - Parses a class-tagged document (JSON, or YAML by extension), resolves\n    registered tags, reports the class tag and keys, and re-emits canonical JSON.")
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var file string
	fs.StringVar(&file, "f", "", "input file (.json, .yaml, .yml)")
	_ = fs.Parse(args)
	if file == "" {
		fs.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		fatalf("read: %v", err)
	}

	var v any
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		v, err = rekodo.DecodeTaggedYAML(data)
	default:
		v, err = rekodo.DecodeTagged(data)
	}
	if err != nil {
		fatalf("decode: %v", err)
	}

	if m, ok := v.(map[string]any); ok {
		if tag, ok := m["__class__"].(string); ok {
			fmt.Printf("class: %s\n", tag)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			if k != "__class__" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		fmt.Printf("keys: %s\n", strings.Join(keys, ", "))
	}

	out, err := json.MarshalIndent(normalize(v), "", "  ")
	if err != nil {
		fatalf("re-encode: %v", err)
	}
	fmt.Println(string(out))
}

// normalize re-expands registry-decoded values (sets, records) into their
// tagged wire form so the canonical JSON output stays self-describing.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	case rekodo.Set:
		return map[string]any{rekodo.TagSet: normalize(t.Values())}
	case rekodo.FrozenSet:
		return map[string]any{rekodo.TagFrozenSet: normalize(t.Values())}
	case *rekodo.Record:
		return map[string]any{t.Schema().Tag(): normalize(t.Store())}
	default:
		return v
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
