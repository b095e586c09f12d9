package commands

import (
	"errors"
	"fmt"

	"github.com/conduit-lang/entitykit/internal/catalog"
	"github.com/conduit-lang/entitykit/internal/cli/ui"
	"github.com/conduit-lang/entitykit/pkg/translate"
	"github.com/conduit-lang/entitykit/pkg/wire"
	"github.com/spf13/cobra"
)

// errEntitiesDiffer is returned by diff --exit-code when the entities differ
var errEntitiesDiffer = errors.New("entities differ")

func newDiffCommand(a *app) *cobra.Command {
	var (
		lenient  bool
		exitCode bool
	)

	cmd := &cobra.Command{
		Use:   "diff <kind> <a> <b>",
		Short: "Compare two documents as entities",
		Long: `Decode two documents as entities of the given kind and compare them field by field.

Documents are strictly decoded unless --lenient is given, in which case each is
partial-merge decoded into a copy of the same new entity, so fields absent from both
documents compare equal. Child entities without an id still get a generated one on
each side. Changed fields are listed with their value in each document.

Examples:
  entitykit diff page before.json after.json
  entitykit diff pricing a.yaml b.yaml --exit-code`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.lookupKind(cmd, args[0])
			if err != nil {
				return err
			}

			// Lenient decodes merge into copies of one entity so fields absent from
			// both documents, such as a generated id, compare equal
			var proto catalog.Item
			if lenient {
				proto = k.New(a.registry)
			}

			left, err := a.loadForDiff(cmd, k, args[1], proto)
			if err != nil {
				return err
			}
			right, err := a.loadForDiff(cmd, k, args[2], proto)
			if err != nil {
				return err
			}

			if !k.Diff(left, right) {
				ui.WriteSuccess(cmd.OutOrStdout(), "entities are identical", a.colorless())
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), ui.Warning("entities differ", a.colorless()))
			ui.ChangeTable(cmd.OutOrStdout(), translate.Changes(left.Encode(), right.Encode()), a.colorless())
			if exitCode {
				return errEntitiesDiffer
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&lenient, "lenient", false, "Partial-merge decode the documents instead of strict decode")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit with a non-zero status when the entities differ")

	return cmd
}

// loadForDiff strictly decodes path, or merges it into a copy of proto when proto is set
func (a *app) loadForDiff(cmd *cobra.Command, k catalog.Kind, path string, proto catalog.Item) (catalog.Item, error) {
	if proto != nil {
		d, err := readDictionary(cmd.InOrStdin(), path)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.InputError(path, err, a.colorless()))
			return nil, err
		}
		e := k.Copy(proto)
		e.Decode(d, a.registry)
		return e, nil
	}

	e, err := a.strictDecode(cmd.InOrStdin(), k, path)
	if err != nil {
		if isDecodeFailure(err) {
			fmt.Fprint(cmd.ErrOrStderr(), ui.StrictDecodeError(k.Name, wire.FieldPath(err), err, a.colorless()))
			return nil, errStrictDecode
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.InputError(path, err, a.colorless()))
		return nil, err
	}
	return e, nil
}
