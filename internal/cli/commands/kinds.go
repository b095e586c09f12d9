package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-lang/entitykit/internal/catalog"
	"github.com/conduit-lang/entitykit/internal/cli/ui"
	"github.com/spf13/cobra"
)

func newKindsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the entity kinds",
		Long:  "List the entity kinds known to entitykit and the concrete type each decodes to under the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := ui.NewTable(cmd.OutOrStdout(), []string{"Kind", "Type", "Description"}, &ui.TableOptions{NoColor: a.colorless()})
			for _, k := range catalog.Kinds() {
				typ := strings.TrimPrefix(fmt.Sprintf("%T", k.New(a.registry)), "*catalog.")
				table.AddRow(k.Name, typ, k.Description)
			}
			table.Render()
			return nil
		},
	}
}

// lookupKind resolves a kind name, reporting unknown names with suggestions
func (a *app) lookupKind(cmd *cobra.Command, name string) (catalog.Kind, error) {
	k, err := catalog.LookupKind(name)
	if errors.Is(err, catalog.ErrUnknownKind) {
		names := make([]string, 0)
		for _, known := range catalog.Kinds() {
			names = append(names, known.Name)
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.UnknownKindError(name, ui.Suggest(name, names), a.colorless()))
	}
	return k, err
}
