package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/gdrive-endpoint/internal/config"
	"github.com/teemow/gdrive-endpoint/internal/endpoint"
	"github.com/teemow/gdrive-endpoint/internal/filestore"
	"github.com/teemow/gdrive-endpoint/internal/server"
)

// callOptions are the flags shared by call and request
type callOptions struct {
	account string
	params  string
	body    string
}

func (o *callOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.account, "account", "", "Account name (default: the configured default account)")
	cmd.Flags().StringVar(&o.params, "params", "", "Query parameters as a JSON object")
	cmd.Flags().StringVar(&o.body, "body", "", "Request body as JSON")
}

func newCallCmd() *cobra.Command {
	var opts callOptions

	cmd := &cobra.Command{
		Use:   "call <operation> [arguments...]",
		Short: "Call one Drive operation and print the result as JSON",
		Long: `Call one operation of the endpoint table by name. Positional arguments
fill the operation's arguments in order, e.g.

  gdrive-endpoint call files.get 1AbC --params '{"fields":"id,name"}'
  gdrive-endpoint call permissions.create 1AbC --body '{"role":"reader","type":"anyone"}'

Run "gdrive-endpoint operations" for the list of operations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, cleanup, err := newEndpoint(cmd.Context(), cfg, opts.account)
			if err != nil {
				return err
			}
			defer cleanup()
			return runCall(cmd.Context(), cmd.OutOrStdout(), ep, args[0], args[1:], opts)
		},
	}

	opts.register(cmd)
	return cmd
}

func newRequestCmd() *cobra.Command {
	var opts callOptions

	cmd := &cobra.Command{
		Use:   "request <get|post|put|patch|delete> <path>",
		Short: "Send a raw request to the Drive API and print the result as JSON",
		Long: `Send a request to a path relative to the Drive API root, e.g.

  gdrive-endpoint request get /about --params '{"fields":"user"}'
  gdrive-endpoint request post /files --body '{"name":"notes"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, cleanup, err := newEndpoint(cmd.Context(), cfg, opts.account)
			if err != nil {
				return err
			}
			defer cleanup()
			return runRequest(cmd.Context(), cmd.OutOrStdout(), ep, args[0], args[1], opts)
		},
	}

	opts.register(cmd)
	return cmd
}

// newEndpoint builds the endpoint of an account the same way the server
// does
func newEndpoint(ctx context.Context, c *config.Config, account string) (*endpoint.Endpoint, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := filestore.New(c.Drive.StoreDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file store: %w", err)
	}

	sc, err := server.NewServerContext(ctx, server.Options{
		Store:          store,
		DriveBaseURL:   c.Drive.BaseURL,
		DefaultAccount: c.Drive.DefaultAccount,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = sc.Shutdown() }

	if account == "" {
		account = sc.DefaultAccount()
	}
	ep, err := sc.EndpointForAccount(account)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return ep, cleanup, nil
}

func runCall(ctx context.Context, out io.Writer, ep *endpoint.Endpoint, name string, positional []string, opts callOptions) error {
	op, ok := endpoint.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", endpoint.ErrUnknownOperation, name)
	}
	if len(positional) > len(op.Arguments) {
		return fmt.Errorf("%s takes %d arguments (%s), got %d",
			name, len(op.Arguments), strings.Join(op.Arguments, ", "), len(positional))
	}

	args := endpoint.Args{Values: make(map[string]string, len(positional))}
	for i, value := range positional {
		args.Values[op.Arguments[i]] = value
	}

	var err error
	if args.Params, err = parseParams(opts.params); err != nil {
		return err
	}
	if args.Body, err = parseBody(opts.body); err != nil {
		return err
	}

	result, err := ep.Call(ctx, name, args)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func runRequest(ctx context.Context, out io.Writer, ep *endpoint.Endpoint, verb, path string, opts callOptions) error {
	params, err := parseParams(opts.params)
	if err != nil {
		return err
	}
	body, err := parseBody(opts.body)
	if err != nil {
		return err
	}

	// The descriptor form keeps params and body apart
	options := map[string]any{"path": path}
	if params != nil {
		options["params"] = map[string]any(params)
	}
	if body != nil {
		options["body"] = body
	}

	var send func(context.Context, any, any) (endpoint.Result, error)
	switch strings.ToLower(verb) {
	case "get":
		send = ep.Get
	case "post":
		send = ep.Post
	case "put":
		send = ep.Put
	case "patch":
		send = ep.Patch
	case "delete":
		send = ep.Delete
	default:
		return fmt.Errorf("unsupported method %q (supported: get, post, put, patch, delete)", verb)
	}

	result, err := send(ctx, nil, options)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func parseParams(raw string) (endpoint.Params, error) {
	if raw == "" {
		return nil, nil
	}
	var params endpoint.Params
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("--params must be a JSON object: %w", err)
	}
	return params, nil
}

func parseBody(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	var body any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, fmt.Errorf("--body must be valid JSON: %w", err)
	}
	return body, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
