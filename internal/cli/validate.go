package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/tkestack/paramcheck/pkg/report"
	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/validator"
)

func addSchemaFlags(cmd *cobra.Command) {
	cmd.Flags().String("service", "", "service whose schema applies (overrides the values file)")
	cmd.Flags().String("section", "", "schema section: instance, plan or binding (default instance)")
	cmd.Flags().String("plan-schema", "", "OpenAPI or JSON schema document (path or URL) to validate against instead of the catalog")
	cmd.Flags().String("schema-name", "", "component schema to use from --plan-schema")
}

func newValidateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate FILE...",
		Short:   "Validate parameter value files",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: bindFlags(v),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd, v, args)
		},
	}
	addSchemaFlags(cmd)
	cmd.Flags().String("mode", "", "base keys to check: parameters, instance, plan or binding")
	cmd.Flags().Bool("set-parameters", true, "validate schema fields (false passes them unconditionally)")
	cmd.Flags().StringP("output", "o", "text", "report format: text, markdown or json")
	cmd.Flags().Bool("failures-only", false, "list failing keys only")
	cmd.Flags().Int("concurrency", 4, "files validated in parallel")
	return cmd
}

type fileResult struct {
	Path   string          `json:"file"`
	Valid  bool            `json:"valid"`
	Model  validator.Model `json:"results"`
	fields []schema.FieldSchema
}

func runValidate(ctx context.Context, cmd *cobra.Command, v *viper.Viper, paths []string) error {
	output := v.GetString("output")
	var format report.Format
	if output != "json" {
		parsed, err := report.ParseFormat(output)
		if err != nil {
			return err
		}
		format = parsed
	}

	stdinReads := 0
	for _, path := range paths {
		if path == "-" {
			stdinReads++
		}
	}
	if stdinReads > 1 {
		return fmt.Errorf("stdin (-) may be given only once, got %d times", stdinReads)
	}

	val := validator.New(
		validator.WithLocale(v.GetString("locale")),
		validator.WithLogger(klog.Background()),
	)

	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if limit := v.GetInt("concurrency"); limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result, err := validateFile(gctx, v, val, path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeResults(cmd.OutOrStdout(), results, output == "json", format, v.GetBool("failures-only")); err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if !result.Valid {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrInvalid, failed, len(results))
	}
	return nil
}

func validateFile(ctx context.Context, v *viper.Viper, val *validator.Validator, path string, stdin io.Reader) (fileResult, error) {
	file, err := readValues(path, stdin)
	if err != nil {
		return fileResult{}, err
	}
	t := resolveTarget(v, file)
	fields, err := resolveFields(ctx, v, t)
	if err != nil {
		return fileResult{}, fmt.Errorf("%s: %w", path, err)
	}

	modeName := v.GetString("mode")
	if modeName == "" {
		modeName = file.Mode
	}
	mode := validator.ModeParameters
	if modeName != "" {
		parsed, ok := validator.ParseMode(modeName)
		if !ok {
			return fileResult{}, fmt.Errorf("%s: unknown mode %q", path, modeName)
		}
		mode = parsed
	}

	setParameters := v.GetBool("set-parameters")
	if file.SetParameters != nil && !v.IsSet("set-parameters") {
		setParameters = *file.SetParameters
	}

	model := val.ValidateAll(file.form(), fields, validator.Request{
		Mode:          mode,
		SetParameters: setParameters,
		Context: validator.Context{
			ServiceName: t.service,
			Instance:    file.Instance,
		},
	})
	klog.V(2).InfoS("validated values file", "file", path, "service", t.service, "section", t.section, "keys", model.Len(), "failures", len(model.Failures()))

	return fileResult{Path: path, Valid: model.Valid(), Model: model, fields: fields}, nil
}

func writeResults(w io.Writer, results []fileResult, asJSON bool, format report.Format, failuresOnly bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, result := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		err := report.Render(w, result.fields, result.Model,
			report.WithTitle(result.Path),
			report.WithFormat(format),
			report.WithFailuresOnly(failuresOnly),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
