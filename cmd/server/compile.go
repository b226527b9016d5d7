package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlekbai/casewatch/internal/filter"
	"github.com/atlekbai/casewatch/internal/schema"
	"github.com/atlekbai/casewatch/internal/service"
)

func compileCmd() *cobra.Command {
	var (
		in     service.CompileInput
		file   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "compile [-f filter.json | --query TEXT]",
		Short: "Compile a filter and print the parameterized predicate",
		Long: "Compile reads a filter tree as JSON (from --file, or stdin when neither\n" +
			"--file nor --query is given) or in text form, and prints the compiled\n" +
			"expression and parameters. With --object the filter is checked against\n" +
			"that catalog object and the Postgres WHERE condition is printed too.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in.Query) == "" {
				tree, err := readTree(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				in.Filter = tree
			} else if file != "" {
				return fmt.Errorf("--file and --query are mutually exclusive")
			}

			res, err := service.CompileFilter(schema.NewCache(), in)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSONResult(cmd.OutOrStdout(), res)
			}
			return writeTextResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON filter file ('-' for stdin)")
	cmd.Flags().StringVarP(&in.Query, "query", "q", "", "filter in text form")
	cmd.Flags().StringVarP(&in.Object, "object", "o", "", "catalog object to resolve fields against")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func readTree(stdin io.Reader, file string) (*filter.ConditionGroup, error) {
	r := stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read filter: %w", err)
	}
	var tree filter.ConditionGroup
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return &tree, nil
}

func writeTextResult(w io.Writer, res *service.CompileResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "expression: %s\n", res.Expression)
	fmt.Fprintf(&sb, "text:       %s\n", res.Text)
	fmt.Fprintf(&sb, "depth:      %d\n", res.Depth)
	if len(res.Keys) > 0 {
		sb.WriteString("parameters:\n")
		for _, k := range res.Keys {
			fmt.Fprintf(&sb, "  %s = %#v\n", k, res.Parameters[k])
		}
	}
	if res.SQL != "" {
		fmt.Fprintf(&sb, "sql:        %s\n", res.SQL)
		fmt.Fprintf(&sb, "args:       %v\n", res.Args)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeJSONResult(w io.Writer, res *service.CompileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"expression": res.Expression,
		"parameters": res.Parameters,
		"keys":       res.Keys,
		"depth":      res.Depth,
		"text":       res.Text,
		"sql":        res.SQL,
		"args":       res.Args,
	})
}
