// Package args provides commands exposing the macro argument codec.
package args

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/creole-cli/internal/view"
	"github.com/open-cli-collective/creole-cli/pkg/creole"
)

// NewCmdArgs creates the args command.
func NewCmdArgs() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "args",
		Short: "Decode and encode macro argument strings",
		Long:  `Commands for inspecting how macro argument strings are parsed.`,
	}

	cmd.AddCommand(NewCmdDecode())
	cmd.AddCommand(NewCmdEncode())

	return cmd
}

type decodeOptions struct {
	output  string
	noColor bool
	stdout  io.Writer
}

// NewCmdDecode creates the args decode command.
func NewCmdDecode() *cobra.Command {
	opts := &decodeOptions{}

	cmd := &cobra.Command{
		Use:   "decode <raw>",
		Short: "Parse a macro argument string",
		Example: `  crl args decode 'foo="bar" no=123 flag=True'
  crl args decode 'title="Read me"' -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()
			return runDecode(args[0], opts)
		},
	}

	return cmd
}

func runDecode(raw string, opts *decodeOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}

	decoded, err := creole.DecodeArgs(raw)
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)

	if renderer.Format() == view.FormatJSON {
		return renderer.RenderJSON(decoded)
	}

	keys := make([]string, 0, len(decoded))
	for k := range decoded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strings.TrimPrefix(creole.EncodeArgs(creole.Args{k: decoded[k]}), k+"="), typeName(decoded[k])})
	}
	renderer.RenderTable([]string{"NAME", "VALUE", "TYPE"}, rows)
	return nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "none"
	case bool:
		return "bool"
	case int:
		return "int"
	default:
		return "string"
	}
}

type encodeOptions struct {
	stdout io.Writer
}

// NewCmdEncode creates the args encode command.
func NewCmdEncode() *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode <json>",
		Short: "Build a macro argument string from a JSON object",
		Example: `  crl args encode '{"foo": "bar", "no": 123}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.stdout = cmd.OutOrStdout()
			return runEncode(args[0], opts)
		},
	}

	return cmd
}

func runEncode(raw string, opts *encodeOptions) error {
	if opts.stdout == nil {
		opts.stdout = os.Stdout
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("invalid JSON object: %w", err)
	}

	values := make(creole.Args, len(obj))
	for k, v := range obj {
		if !creole.ValidArgKey(k) {
			return fmt.Errorf("argument %q: keys must be non-empty without whitespace, quotes or '='", k)
		}
		switch val := v.(type) {
		case json.Number:
			n, err := val.Int64()
			if err != nil {
				return fmt.Errorf("argument %q: only integer numbers are supported", k)
			}
			values[k] = int(n)
		case string, bool, nil:
			values[k] = val
		default:
			return fmt.Errorf("argument %q: unsupported value type %T", k, v)
		}
	}

	_, err := fmt.Fprintln(opts.stdout, creole.EncodeArgs(values))
	return err
}
