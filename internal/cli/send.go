package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/avdeev/apilab/internal/app"
	"github.com/avdeev/apilab/internal/core"
	httpclient "github.com/avdeev/apilab/internal/protocol/http"
	"github.com/avdeev/apilab/internal/runner"
	"github.com/avdeev/apilab/internal/storage"
)

// SendOptions holds options for the send command.
type SendOptions struct {
	Headers    []string
	Params     []string
	Body       string
	EnvName    string
	Vars       []string
	Timeout    time.Duration
	NoRedirect bool
	JSON       bool
	Query      string
	SaveAs     string
	Collection string
}

// NewSendCommand creates the send command.
func NewSendCommand() *cobra.Command {
	opts := &SendOptions{}

	cmd := &cobra.Command{
		Use:   "send METHOD URL",
		Short: "Send an HTTP request",
		Long: "Send an HTTP request to the specified URL with the given method.\n" +
			"The URL, headers, and body may contain {{variable}} placeholders resolved\n" +
			"from the selected environment, --env, and --var values.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Request headers (format: Key: Value)")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "q", nil, "Query parameters (format: key=value)")
	cmd.Flags().StringVarP(&opts.Body, "body", "d", "", "Request body")
	cmd.Flags().StringVar(&opts.EnvName, "env", "", "Environment to resolve variables from (instead of the selected one)")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "Ad-hoc variables (format: key=value)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Request timeout (default 30s)")
	cmd.Flags().BoolVar(&opts.NoRedirect, "no-redirect", false, "Do not follow redirects")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the full response as JSON")
	cmd.Flags().StringVar(&opts.Query, "query", "", "Print only the given JSON path of the response body")
	cmd.Flags().StringVar(&opts.SaveAs, "save", "", "Save the request under this name before sending")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "Collection to save the request into (with --save)")

	return cmd
}

func runSend(cmd *cobra.Command, methodArg, rawURL string, opts *SendOptions) error {
	method, err := core.ParseMethod(methodArg)
	if err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	r := core.NewRequestDescriptor(method, rawURL)
	for _, h := range opts.Headers {
		key, value, ok := splitHeader(h)
		if !ok {
			return fmt.Errorf("invalid header %q, expected Key: Value", h)
		}
		r.SetHeader(key, value)
	}
	for _, p := range opts.Params {
		key, value, _ := strings.Cut(p, "=")
		if key == "" {
			return fmt.Errorf("invalid query parameter %q, expected key=value", p)
		}
		r.AddQueryParam(key, value)
	}
	r.Body = opts.Body

	if opts.SaveAs != "" {
		if err := saveRequest(cmd, a, r, opts); err != nil {
			return err
		}
	}

	sessionOpts, err := sendSessionOptions(cmd, a, opts)
	if err != nil {
		return err
	}
	session := a.NewSession(sessionOpts...)

	record, err := session.Send(ctx, r)
	if err != nil {
		return err
	}

	return printResponse(cmd, record, opts)
}

func sendSessionOptions(cmd *cobra.Command, a *app.App, opts *SendOptions) ([]runner.Option, error) {
	var sessionOpts []runner.Option

	if opts.Timeout > 0 || opts.NoRedirect {
		clientOpts := []httpclient.Option{}
		timeout := a.Config().Timeout()
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		clientOpts = append(clientOpts, httpclient.WithTimeout(timeout))
		if opts.NoRedirect {
			clientOpts = append(clientOpts, httpclient.WithNoRedirects())
		}
		sessionOpts = append(sessionOpts, runner.WithClient(httpclient.NewClient(clientOpts...)))
	}

	extra := map[string]string{}
	if opts.EnvName != "" {
		env, err := a.Environments.Get(cmd.Context(), opts.EnvName)
		if err != nil {
			return nil, err
		}
		for k, v := range env.Variables {
			extra[k] = v
		}
	}
	for _, pair := range opts.Vars {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		extra[key] = value
	}
	if len(extra) > 0 {
		sessionOpts = append(sessionOpts, runner.WithVars(extra))
	}

	return sessionOpts, nil
}

func saveRequest(cmd *cobra.Command, a *app.App, r *core.RequestDescriptor, opts *SendOptions) error {
	ctx := cmd.Context()
	name := opts.Collection
	if name == "" {
		name = "default"
	}
	_, err := a.Collections.Get(ctx, name)
	if errors.Is(err, storage.ErrCollectionNotFound) {
		_, err = a.Collections.Create(ctx, name)
	}
	if err != nil {
		return err
	}
	r.Name = opts.SaveAs
	return a.Collections.AddRequest(ctx, name, r)
}

func splitHeader(raw string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return "", "", false
	}
	return key, value, ok
}

func printResponse(cmd *cobra.Command, record *core.ResponseRecord, opts *SendOptions) error {
	out := cmd.OutOrStdout()

	if opts.Query != "" {
		result := gjson.GetBytes(record.RawBody, opts.Query)
		if !result.Exists() {
			return fmt.Errorf("no value at path %q", opts.Query)
		}
		fmt.Fprintln(out, result.String())
		return nil
	}

	if opts.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(record)
	}

	fmt.Fprintf(out, "%s %s\n", statusColor(record.Status).Sprintf("HTTP %d", record.Status), record.StatusText)
	fmt.Fprintf(out, "Time: %dms  Size: %dB\n\n", record.Time, record.Size)

	keys := make([]string, 0, len(record.Headers))
	for key := range record.Headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "%s: %s\n", key, record.Headers[key])
	}
	fmt.Fprintln(out)

	if record.IsJSON() {
		fmt.Fprintln(out, core.PrettyJSON(record.Data))
	} else if text, ok := record.Data.(string); ok && text != "" {
		fmt.Fprintln(out, text)
	}

	return nil
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen, color.Bold)
	case status >= 300 && status < 400:
		return color.New(color.FgCyan, color.Bold)
	case status >= 400 && status < 500:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
