package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/endpoint"
)

func newOperationsCmd() *cobra.Command {
	var (
		asJSON   bool
		resource string
	)

	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List the Drive operations of the endpoint table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperations(cmd.OutOrStdout(), resource, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the operations as JSON")
	cmd.Flags().StringVar(&resource, "resource", "", "Only list the operations of one resource (files, permissions, ...)")
	return cmd
}

// operationRow is the JSON form of an operation
type operationRow struct {
	Name      string   `json:"name"`
	Method    string   `json:"method"`
	Path      string   `json:"path"`
	Arguments []string `json:"arguments,omitempty"`
	Params    bool     `json:"params"`
	Body      bool     `json:"body"`
	ReadOnly  bool     `json:"readOnly"`
	Note      string   `json:"note,omitempty"`
}

func runOperations(out io.Writer, resource string, asJSON bool) error {
	var ops []endpoint.Operation
	for _, op := range endpoint.Operations() {
		if resource == "" || op.Resource == resource {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return fmt.Errorf("no operations for resource %q", resource)
	}

	if asJSON {
		rows := make([]operationRow, 0, len(ops))
		for _, op := range ops {
			rows = append(rows, operationRow{
				Name:      op.Name,
				Method:    op.Method,
				Path:      op.Path,
				Arguments: op.Arguments,
				Params:    op.HasParams,
				Body:      op.HasBody,
				ReadOnly:  op.ReadOnly,
				Note:      op.Note,
			})
		}
		return printJSON(out, rows)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tMETHOD\tPATH\tARGUMENTS\tACCESS")
	for _, op := range ops {
		access := "write"
		if op.ReadOnly {
			access = "read"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", op.Name, op.Method, op.Path, strings.Join(op.Arguments, ","), access)
	}
	return tw.Flush()
}
