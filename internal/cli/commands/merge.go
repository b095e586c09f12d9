package commands

import (
	"fmt"

	"github.com/conduit-lang/entitykit/internal/cli/ui"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMergeCommand(a *app) *cobra.Command {
	var (
		basePath string
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "merge <kind> <input>",
		Short: "Partial-merge decode a document into an entity",
		Long: `Decode a document into an entity of the given kind using partial-merge semantics.

Valid fields of the input are applied. Absent or malformed fields keep the value the
entity already had: the value from --base when given, otherwise the default of a new
entity. The merged entity is written to stdout and the fields that actually changed are
listed on stderr.

Examples:
  entitykit merge page update.json --base page.json
  entitykit merge section section.yaml --premium
  cat update.json | entitykit merge pricing -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.lookupKind(cmd, args[0])
			if err != nil {
				return err
			}

			e := k.New(a.registry)
			if basePath != "" {
				base, err := readDictionary(cmd.InOrStdin(), basePath)
				if err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), ui.InputError(basePath, err, a.colorless()))
					return err
				}
				e.Decode(base, a.registry)
			}

			input, err := readDictionary(cmd.InOrStdin(), args[1])
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.InputError(args[1], err, a.colorless()))
				return err
			}

			changes := translate.MergeReport(e, input, a.registry)
			a.logger.Info("merged document",
				zap.String("kind", k.Name),
				zap.String("id", e.EntityID()),
				zap.Int("changes", changes.Len()),
			)

			if err := a.writeEntity(cmd.OutOrStdout(), e); err != nil {
				return err
			}
			if !quiet {
				ui.ChangeTable(cmd.ErrOrStderr(), changes, a.colorless())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&basePath, "base", "", "Document holding the entity to merge into")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not list changed fields")

	return cmd
}
