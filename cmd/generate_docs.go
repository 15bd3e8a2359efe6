package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"text/template"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Write a markdown reference of every MCP tool the server registers,
built from the live tool definitions.`,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := generateDocs()
			if err != nil {
				return err
			}
			if outputFile == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func generateDocs() (string, error) {
	// listing tools needs neither credentials nor a store
	sc, err := server.NewServerContext(context.Background(), server.Options{})
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	// write mode registers every tool
	mcpSrv, err := newMCPServer(sc, false)
	if err != nil {
		return "", err
	}

	tools := make([]mcp.Tool, 0)
	for _, t := range mcpSrv.ListTools() {
		tools = append(tools, t.Tool)
	}

	var sb strings.Builder
	if err := docsTemplate.Execute(&sb, buildDocCategories(tools)); err != nil {
		return "", fmt.Errorf("failed to render documentation: %w", err)
	}
	return sb.String(), nil
}

type docArg struct {
	Name     string
	Required bool
	Text     string
}

type docTool struct {
	Name        string
	Description string
	Write       bool
	Args        []docArg
}

type docCategory struct {
	Name  string
	Tools []docTool
}

func (c docCategory) Anchor() string {
	return strings.ToLower(strings.ReplaceAll(c.Name, " ", "-"))
}

// driveCategories maps the second segment of drive_* tool names
var driveCategories = map[string]string{
	"files":       "Files Tools",
	"permissions": "Permissions Tools",
	"comments":    "Comments and Replies Tools",
	"replies":     "Comments and Replies Tools",
	"revisions":   "Revisions Tools",
	"drives":      "Shared Drives Tools",
	"changes":     "Changes Tools",
	"channels":    "Changes Tools",
	"request":     "Generic Request Tools",
	"batch":       "Generic Request Tools",
	"store":       "File Store Tools",
}

func getCategoryFromToolName(name string) string {
	prefix, rest, ok := strings.Cut(name, "_")
	if !ok {
		return "Other"
	}
	switch prefix {
	case "google":
		return "Authentication Tools"
	case "drive":
		segment, _, _ := strings.Cut(rest, "_")
		if c, ok := driveCategories[segment]; ok {
			return c
		}
	}
	return "Other"
}

func buildDocCategories(tools []mcp.Tool) []docCategory {
	byName := map[string][]docTool{}
	for _, t := range tools {
		c := getCategoryFromToolName(t.Name)
		byName[c] = append(byName[c], describeTool(t))
	}

	out := make([]docCategory, 0, len(byName))
	for name, ts := range byName {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })
		out = append(out, docCategory{Name: name, Tools: ts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func describeTool(t mcp.Tool) docTool {
	d := docTool{
		Name:        t.Name,
		Description: t.Description,
		Write:       t.Annotations.ReadOnlyHint != nil && !*t.Annotations.ReadOnlyHint,
	}

	names := make([]string, 0, len(t.InputSchema.Properties))
	for name := range t.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop, _ := t.InputSchema.Properties[name].(map[string]any)
		text, _ := prop["description"].(string)
		if text == "" {
			typ, _ := prop["type"].(string)
			if typ == "" {
				typ = "unknown"
			}
			text = typ + " parameter"
		}
		d.Args = append(d.Args, docArg{
			Name:     name,
			Required: slices.Contains(t.InputSchema.Required, name),
			Text:     text,
		})
	}
	return d
}

var docsTemplate = template.Must(template.New("docs").Parse(`# MCP Tools Reference

**Note:** This documentation is automatically generated from the tool definitions.

gdrive-endpoint exposes the Google Drive v3 API as MCP tools. Tools that
change Drive state are only registered when the server runs with ` + "`--yolo`" + `.

## Table of Contents

{{range .}}- [{{.Name}}](#{{.Anchor}})
{{end}}
## Multi-Account Support

Every tool takes an optional ` + "`account`" + ` argument:

- **Default account:** calls without ` + "`account`" + ` use the server's default account
- **Multiple accounts:** You can manage multiple Google accounts (e.g., ` + "`work`" + `, ` + "`personal`" + `)
- **HTTP sessions:** the X-Drive-Account header binds a session to one account and overrides the argument

{{range .}}## {{.Name}}

{{range .Tools}}### {{.Name}}

{{if .Write}}*Write operation: only available with ` + "`--yolo`" + `.*

{{end}}{{with .Description}}{{.}}

{{end}}{{with .Args}}**Arguments:**
{{range .}}- ` + "`{{.Name}}`" + ` ({{if .Required}}required{{else}}optional{{end}}): {{.Text}}
{{end}}
{{end}}
{{end}}{{end}}`))
