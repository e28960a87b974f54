package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/tkestack/paramcheck/pkg/prompt"
	"github.com/tkestack/paramcheck/pkg/validator"
)

func newFillCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill [FILE]",
		Short: "Fill in parameter values interactively",
		Long: `Ask for every active field of a service schema, validating each answer.
An existing values file is used as the starting point; its answers become the defaults.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: bindFlags(v),
		RunE: func(cmd *cobra.Command, args []string) error {
			var file valuesFile
			if len(args) == 1 {
				read, err := readValues(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
				file = read
			}
			t := resolveTarget(v, file)
			fields, err := resolveFields(cmd.Context(), v, t)
			if err != nil {
				return err
			}

			ctx := validator.Context{ServiceName: t.service, Instance: file.Instance}
			filler, err := prompt.New(
				prompt.NewSurveyDriver(cmd.ErrOrStderr()),
				prompt.WithValidator(validator.New(
					validator.WithLocale(v.GetString("locale")),
					validator.WithLogger(klog.Background()),
				)),
				prompt.WithContext(ctx),
				prompt.WithMaxAttempts(v.GetInt("max-attempts")),
			)
			if err != nil {
				return err
			}

			form, err := filler.Fill(cmd.Context(), fields, file.form())
			if err != nil {
				return err
			}
			file.Service = t.service
			file.Section = t.section
			file.FormData = form.FormData
			file.UnitMap = form.UnitMap

			out := cmd.OutOrStdout()
			if path := v.GetString("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("write values %s: %w", path, err)
				}
				defer f.Close()
				out = f
			}
			return encode(out, "yaml", file)
		},
	}
	addSchemaFlags(cmd)
	cmd.Flags().String("out", "", "write the values file here instead of stdout")
	cmd.Flags().Int("max-attempts", 3, "invalid answers accepted per field before giving up")
	return cmd
}
