package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// connectCommand creates the connect command.
func (c *CLI) connectCommand() *cobra.Command {
	var relationship string

	cmd := &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Link two concepts",
		Long: `Link two concepts. Edges are "related" unless --relationship says
otherwise; a prerequisite edge that would close a cycle is refused.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			return c.withSession(cmd.Context(), func(s *session) error {
				if !cmd.Flags().Changed("relationship") {
					id, ok := s.store.Connect(source, target)
					if !ok {
						return c.explainConnect(s, source, target)
					}
					printSuccess(c.stdout, "Connected %s %s %s", source, iconArrow, target)
					printDetail(c.stdout, "%s (%s)", id, roadmap.Related)
					return nil
				}

				rel, err := errors.ValidateRelationship(relationship)
				if err != nil {
					return err
				}
				edges := len(s.store.Edges())
				id, err := s.store.ConnectWith(source, target, rel)
				if err != nil {
					return err
				}
				if len(s.store.Edges()) == edges {
					printInfo(c.stdout, "Edge %s already exists", id)
					return nil
				}
				printSuccess(c.stdout, "Connected %s %s %s", source, iconArrow, target)
				printDetail(c.stdout, "%s (%s)", id, rel)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&relationship, "relationship", "r", string(roadmap.Related), "prerequisite, related or optional")
	return cmd
}

// explainConnect reports why Connect did nothing.
func (c *CLI) explainConnect(s *session, source, target string) error {
	for _, id := range []string{source, target} {
		if _, ok := s.store.Node(id); !ok {
			return notFound(id)
		}
	}
	if source == target {
		return errors.New(errors.ErrCodeInvalidInput, "cannot connect %q to itself", source)
	}
	printInfo(c.stdout, "Edge %s already exists", roadmap.EdgeID(source, target))
	return nil
}

// disconnectCommand creates the disconnect command.
func (c *CLI) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <edge-id> | disconnect <source> <target>",
		Short: "Remove an edge",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if len(args) == 2 {
				id = roadmap.EdgeID(args[0], args[1])
			}
			return c.withSession(cmd.Context(), func(s *session) error {
				if !applied(s.store, func() { s.store.DeleteEdge(id) }) {
					return errors.New(errors.ErrCodeEdgeNotFound, "no edge with id %q", id)
				}
				printSuccess(c.stdout, "Removed edge %s", id)
				return nil
			})
		},
	}
}
