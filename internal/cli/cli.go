// Package cli implements the plagcheck command-line client.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"plagcheck/internal/client"
	"plagcheck/internal/config"
	"plagcheck/internal/logger"
	"plagcheck/internal/model"
	"plagcheck/internal/report"
	"plagcheck/internal/upload"
)

// ErrNothingToCheck is returned when the folder selection is empty.
var ErrNothingToCheck = errors.New("select at least one folder file to compare against")

type rootOptions struct {
	configPath string
	logLevel   string
}

type checkOptions struct {
	doc     string
	folders []string
	output  string
}

// NewRootCommand builds the command tree. Results go to out; progress and logs go to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	ro := &rootOptions{}
	v := viper.New()

	root := &cobra.Command{
		Use:           "plagcheck",
		Short:         "Check a document for plagiarism against a folder of documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&ro.configPath, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&ro.logLevel, "log-level", "warn", "log level written to stderr")
	pf.String("endpoint", "", "base URL of the plagiarism check service")
	pf.Duration("timeout", 0, "give up after this long (0 waits indefinitely)")
	_ = v.BindPFlag("endpoint", pf.Lookup("endpoint"))
	_ = v.BindPFlag("timeout", pf.Lookup("timeout"))

	root.AddCommand(newCheckCommand(v, ro))
	return root
}

func newCheckCommand(v *viper.Viper, ro *rootOptions) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check --doc FILE [--folder DIR|FILE]... [FILE...]",
		Short: "Upload a document and a folder and print the results",
		Long: "Upload a document and a folder and print the results.\n\n" +
			"--folder accepts a directory (its regular files are used) or a single file and may be\n" +
			"repeated. Extra arguments are dropped onto the folder box and replace the --folder selection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(v, ro.configPath)
			if err != nil {
				return err
			}
			log, err := logger.NewWithWriter(cmd.ErrOrStderr(), ro.logLevel, time.Local)
			if err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			return runCheck(cmd, cfg, co, args, log)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&co.doc, "doc", "d", "", "document to check")
	f.StringSliceVarP(&co.folders, "folder", "f", nil, "folder directory or files to compare against")
	f.StringVarP(&co.output, "output", "o", "", "write results to this file instead of stdout")
	f.String("format", "", "output format: text, html or json")
	_ = v.BindPFlag("format", f.Lookup("format"))
	return cmd
}

func runCheck(cmd *cobra.Command, cfg *config.ClientConfig, co *checkOptions, args []string, log *zap.Logger) error {
	errOut := cmd.ErrOrStderr()
	sel := &upload.Selector{
		OnChange: func(c upload.Change) {
			fmt.Fprintf(errOut, "[%s]\n%s\n", c.Box, c.Details)
		},
	}

	if co.doc != "" {
		f, err := upload.FromPath(co.doc)
		if err != nil {
			return err
		}
		sel.BrowseMain(f)
	}

	browsed, err := expandAll(co.folders)
	if err != nil {
		return err
	}
	if len(browsed) > 0 {
		sel.BrowseFolder(browsed...)
	}
	dropped, err := expandAll(args)
	if err != nil {
		return err
	}
	sel.DropFolder(dropped...)

	s := sel.Selection()
	if s.Main != nil && !sel.CanCheck() {
		return ErrNothingToCheck
	}

	c := client.New(cfg.Endpoint, client.WithTimeout(cfg.Timeout), client.WithLogger(log))
	if sel.CanCheck() {
		fmt.Fprintln(errOut, "Checking...")
	}
	results, err := c.Check(cmd.Context(), s)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if co.output != "" {
		file, err := os.Create(co.output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return render(w, cfg.Format, results)
}

func expandAll(paths []string) ([]upload.File, error) {
	var out []upload.File
	for _, p := range paths {
		files, err := upload.ExpandFolder(p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func render(w io.Writer, format string, results []model.FileResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(model.CheckResponse{Files: results})
	case "html":
		return report.RenderHTML(w, report.Build(results))
	default:
		return report.RenderText(w, report.Build(results))
	}
}
