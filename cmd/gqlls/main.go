package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/Protocol-Lattice/gqlls"
	"github.com/Protocol-Lattice/gqlls/handler"
	"github.com/Protocol-Lattice/gqlls/language"
	"github.com/Protocol-Lattice/gqlls/lsp"
	"github.com/Protocol-Lattice/gqlls/registry"
	"github.com/Protocol-Lattice/gqlls/schema"
)

func main() {
	var verbosity int
	var logFile string
	var cmdRoot = &cobra.Command{
		Use:   "gqlls",
		Short: "GraphQL language service",
		Long:  `gqlls highlights, completes and checks GraphQL documents, as a CLI, an HTTP service or a language server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)
			return nil
		},
		SilenceUsage: true,
	}
	cmdRoot.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more information (repeat for more)")
	cmdRoot.PersistentFlags().StringVar(&logFile, "log-file", logFile, "write the log to a file instead of stderr")

	cmdRoot.AddCommand(cmdLSP())
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdHighlight())
	cmdRoot.AddCommand(cmdComplete())
	cmdRoot.AddCommand(cmdHover())
	cmdRoot.AddCommand(cmdState())
	cmdRoot.AddCommand(cmdVersion())

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdLSP() *cobra.Command {
	var opts lsp.Options
	var cmd = &cobra.Command{
		Use:   "lsp",
		Short: "run a language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lsp.NewServer(gqlls.Version().Core(), opts).RunStdio()
		},
	}
	cmd.Flags().StringVar(&opts.SchemaPath, "schema", opts.SchemaPath, "schema file (SDL or introspection JSON), defaults to $"+lsp.SchemaEnv)
	cmd.Flags().IntVar(&opts.TabSize, "tab-size", 2, "columns per indentation level")
	return cmd
}

func cmdServe() *cobra.Command {
	var addr, schemaPath string
	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "serve the language features over HTTP and WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaPath != "" {
				if err := registry.Global().Load(registry.DefaultName, schemaPath); err != nil {
					return err
				}
			}
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Mux(),
			}

			errc := make(chan error, 1)
			go func() {
				log.Printf("gqlls: listening on %s\n", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errc:
				return err
			case <-quit:
			}

			log.Printf("gqlls: shutting down\n")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&schemaPath, "schema", schemaPath, "schema file (SDL or introspection JSON)")
	return cmd
}

// input reads the document named on the command line, or stdin for "-".
func input(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return string(data), nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return nil, nil
	}
	return schema.Load(path)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", string(data))
	return nil
}

func cmdHighlight() *cobra.Command {
	var variables bool
	var tabSize int
	var cmd = &cobra.Command{
		Use:   "highlight <file>",
		Short: "print the styled tokens of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(args[0])
			if err != nil {
				return err
			}
			p := gqlls.NewParser(tabSize)
			if variables {
				p = gqlls.NewVariablesParser(tabSize)
			}
			for _, span := range language.HighlightWith(p, text) {
				fmt.Printf("%d:%d-%d\t%-12s\t%s\n", span.Line+1, span.Start, span.End, span.Style, span.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&variables, "variables", false, "the document is a JSON variables object")
	cmd.Flags().IntVar(&tabSize, "tab-size", 2, "columns per indentation level")
	return cmd
}

// positionFlags registers --line and --column, both one-based.
func positionFlags(cmd *cobra.Command, pos *language.Position) {
	cmd.Flags().IntVar(&pos.Line, "line", 1, "cursor line (1-based)")
	cmd.Flags().IntVar(&pos.Character, "column", 1, "cursor column (1-based)")
}

func zeroBased(pos language.Position) language.Position {
	return language.Position{Line: pos.Line - 1, Character: pos.Character - 1}
}

func cmdComplete() *cobra.Command {
	var schemaPath string
	var pos language.Position
	var cmd = &cobra.Command{
		Use:   "complete <file>",
		Short: "print the completion items at a cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(args[0])
			if err != nil {
				return err
			}
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			return printJSON(gqlls.GetAutocompleteSuggestions(s, text, zeroBased(pos)))
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", schemaPath, "schema file (SDL or introspection JSON)")
	positionFlags(cmd, &pos)
	return cmd
}

func cmdHover() *cobra.Command {
	var schemaPath string
	var pos language.Position
	var cmd = &cobra.Command{
		Use:   "hover <file>",
		Short: "print the hover text at a cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(args[0])
			if err != nil {
				return err
			}
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			fmt.Println(gqlls.GetHoverInformation(s, text, zeroBased(pos)))
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", schemaPath, "schema file (SDL or introspection JSON)")
	positionFlags(cmd, &pos)
	return cmd
}

func cmdState() *cobra.Command {
	var schemaPath string
	var pos language.Position
	var cmd = &cobra.Command{
		Use:   "state <file>",
		Short: "dump the parse state and type information at a cursor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := input(args[0])
			if err != nil {
				return err
			}
			s, err := loadSchema(schemaPath)
			if err != nil {
				return err
			}
			tok := gqlls.GetTokenAtPosition(text, zeroBased(pos))
			fmt.Printf("token %q (%s) at %d-%d\n", tok.String, tok.Style, tok.Start, tok.End)
			repr.Println(tok.State, repr.Indent("  "), repr.OmitEmpty(true))
			for _, f := range tok.State.Path() {
				fmt.Printf("  %-20s step=%d name=%q type=%q\n", f.Kind, f.Step, f.Name, f.Type)
			}
			info := gqlls.GetTypeInfo(s, tok.State)
			fmt.Printf("type=%v parentType=%v inputType=%v\n", typeName(info.Type), namedName(info.ParentType), typeName(info.InputType))
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", schemaPath, "schema file (SDL or introspection JSON)")
	positionFlags(cmd, &pos)
	return cmd
}

func typeName(t schema.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func namedName(t schema.NamedType) string {
	if t == nil {
		return "<nil>"
	}
	return t.TypeName()
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(gqlls.Version().String())
				return nil
			}
			fmt.Println(gqlls.Version().Core())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
	return cmd
}
