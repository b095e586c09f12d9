package commands

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/entitykit/internal/cli/ui"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// isDecodeFailure reports whether err is a strict-schema failure rather than an I/O or
// syntax error
func isDecodeFailure(err error) bool {
	return errors.Is(err, wire.ErrMissingValue) ||
		errors.Is(err, wire.ErrTypeMismatch) ||
		errors.Is(err, wire.ErrNotAnObject)
}

func newValidateCommand(a *app) *cobra.Command {
	var printEntity bool

	cmd := &cobra.Command{
		Use:   "validate <kind> <file>",
		Short: "Strictly decode a document",
		Long: `Strictly decode a document as an entity of the given kind.

Every required field must be present with the declared type. The first missing or
malformed field is reported with its path within the document and the command exits
with a non-zero status. The document format is chosen from the file extension.

Examples:
  entitykit validate page page.json
  entitykit validate section section.yaml --premium`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.lookupKind(cmd, args[0])
			if err != nil {
				return err
			}

			e, err := a.strictDecode(cmd.InOrStdin(), k, args[1])
			if err != nil {
				if !isDecodeFailure(err) {
					fmt.Fprint(cmd.ErrOrStderr(), ui.InputError(args[1], err, a.colorless()))
					return err
				}
				path := wire.FieldPath(err)
				a.logger.Debug("strict decode failed",
					zap.String("kind", k.Name),
					zap.String("path", path),
					zap.Error(err),
				)
				fmt.Fprint(cmd.ErrOrStderr(), ui.StrictDecodeError(k.Name, path, err, a.colorless()))
				return errStrictDecode
			}

			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("valid %s %s", k.Name, e.EntityID()), a.colorless())
			summary := ui.NewKeyValueTable(cmd.OutOrStdout(), a.colorless())
			summary.AddRow("file", args[1])
			summary.AddRow("format", formatFor(args[1]).String())
			summary.AddRow("kind", k.Name)
			summary.AddRow("id", e.EntityID())
			summary.Render()
			if printEntity || a.dump {
				return a.writeEntity(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&printEntity, "print", "p", false, "Print the decoded entity")

	return cmd
}
