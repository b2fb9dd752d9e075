package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/roadmap"
)

func notFound(id string) error {
	return errors.New(errors.ErrCodeNodeNotFound, "no concept with id %q", id)
}

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <node-json>",
		Short: "Add a concept from its JSON form",
		Example: `  roadmap add '{"id":"go","position":{"x":0,"y":0},"data":{"label":"Go","status":"pending","category":"core"}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseNode(args[0])
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), func(s *session) error {
				if _, exists := s.store.Node(n.ID); exists {
					return errors.New(errors.ErrCodeInvalidInput, "a concept with id %q already exists", n.ID)
				}
				s.store.AddNode(n)
				printSuccess(c.stdout, "Added %s", renderConcept(n))
				return nil
			})
		},
	}
}

func parseNode(s string) (roadmap.Node, error) {
	var n roadmap.Node
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&n); err != nil {
		return roadmap.Node{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid node JSON: %s", err)
	}
	if err := errors.ValidateNode(n); err != nil {
		return roadmap.Node{}, err
	}
	return n, nil
}

// addChildCommand creates the add-child command.
func (c *CLI) addChildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-child <parent-id> [label]",
		Short: "Add a concept below a parent",
		Long: `Add a concept linked to its parent by a prerequisite edge. The child
takes the parent's category and is placed below it. Without a label it is
called "New Topic".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := ""
			if len(args) == 2 {
				label = args[1]
				if err := errors.ValidateLabel(label); err != nil {
					return err
				}
			}
			return c.withSession(cmd.Context(), func(s *session) error {
				id, ok := s.store.AddChildNode(args[0], label)
				if !ok {
					return notFound(args[0])
				}
				n, _ := s.store.Node(id)
				printSuccess(c.stdout, "Added %s", renderConcept(n))
				if s.store.HiddenNodeIDs().Has(id) {
					printDetail(c.stdout, "hidden: %s is collapsed", args[0])
				}
				return nil
			})
		},
	}
}

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a concept and its edges",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				n, ok := s.store.Node(args[0])
				edges := len(s.store.Edges())
				if !applied(s.store, func() { s.store.DeleteNode(args[0]) }) {
					printWarning(c.stdout, "No concept with id %q; nothing deleted", args[0])
					return nil
				}
				if ok {
					printSuccess(c.stdout, "Deleted %s", n.Data.Label)
				}
				printDetail(c.stdout, "%d edges removed", edges-len(s.store.Edges()))
				return nil
			})
		},
	}
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	var (
		label, description, status, category, parent string
		duration                                     int
		tags                                         []string
		resources                                    string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a concept's fields",
		Long: `Change the fields named by flags and leave the rest unchanged. Tags and
resources replace the whole list.`,
		Example: `  roadmap update react --label "React 19" --duration 240 --tags ui,spa
  roadmap update react --resources '[{"title":"Docs","url":"https://react.dev","type":"documentation"}]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch roadmap.NodePatch
			if flags.Changed("label") {
				if err := errors.ValidateLabel(label); err != nil {
					return err
				}
				patch.Label = &label
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("status") {
				st, err := errors.ValidateStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}
			if flags.Changed("category") {
				cat := roadmap.Category(category)
				if !cat.Valid() {
					return errors.New(errors.ErrCodeInvalidInput, "invalid category %q", category)
				}
				patch.Category = &cat
			}
			if flags.Changed("duration") {
				if duration < 0 {
					return errors.New(errors.ErrCodeInvalidInput, "duration must not be negative")
				}
				patch.Duration = &duration
			}
			if flags.Changed("tags") {
				patch.Tags = &tags
			}
			if flags.Changed("parent") {
				patch.ParentID = &parent
			}
			if flags.Changed("resources") {
				var rs []roadmap.Resource
				if err := json.Unmarshal([]byte(resources), &rs); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid resources JSON: %s", err)
				}
				for _, r := range rs {
					if err := errors.ValidateURL(r.URL); err != nil {
						return err
					}
				}
				patch.Resources = &rs
			}
			if patch.IsEmpty() {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to update; pass at least one field flag")
			}

			return c.withSession(cmd.Context(), func(s *session) error {
				n, ok := s.store.Node(args[0])
				if !ok {
					return notFound(args[0])
				}
				if err := patch.Apply(n.Data).Validate(); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", err)
				}
				if !applied(s.store, func() { s.store.UpdateNodeData(args[0], patch) }) {
					printInfo(c.stdout, "%s unchanged", n.Data.Label)
					return nil
				}
				n, _ = s.store.Node(args[0])
				printSuccess(c.stdout, "Updated %s", renderConcept(n))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "display name")
	cmd.Flags().StringVar(&description, "description", "", "description text")
	cmd.Flags().StringVar(&status, "status", "", "pending, in-progress, completed or locked")
	cmd.Flags().StringVar(&category, "category", "", "foundation, core, advanced, practice or project")
	cmd.Flags().IntVar(&duration, "duration", 0, "estimated minutes")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	cmd.Flags().StringVar(&parent, "parent", "", "parent concept id")
	cmd.Flags().StringVar(&resources, "resources", "", "resources as a JSON array")
	return cmd
}

// expandCommand creates the expand command.
func (c *CLI) expandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <id>",
		Short: "Toggle a concept's detail view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				if !applied(s.store, func() { s.store.ToggleNodeExpanded(args[0]) }) {
					return notFound(args[0])
				}
				n, _ := s.store.Node(args[0])
				if n.Data.IsExpanded {
					printSuccess(c.stdout, "Expanded %s", n.Data.Label)
					printConcept(c.stdout, n)
				} else {
					printSuccess(c.stdout, "Folded %s", n.Data.Label)
				}
				return nil
			})
		},
	}
}

// collapseCommand creates the collapse command.
func (c *CLI) collapseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collapse <id>",
		Short: "Toggle hiding a concept's subtree",
		Long: `Hide every concept reachable from this one through prerequisite edges,
or show them again when it is already collapsed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				before := s.store.HiddenNodeIDs().Len()
				if !applied(s.store, func() { s.store.ToggleNodeCollapse(args[0]) }) {
					return notFound(args[0])
				}
				n, _ := s.store.Node(args[0])
				after := s.store.HiddenNodeIDs().Len()
				if n.Data.IsCollapsed {
					printSuccess(c.stdout, "Collapsed %s", n.Data.Label)
					printDetail(c.stdout, "%d concepts hidden", after-before)
				} else {
					printSuccess(c.stdout, "Expanded %s", n.Data.Label)
					printDetail(c.stdout, "%d concepts shown", before-after)
				}
				return nil
			})
		},
	}
}

// statusCommand creates the status command.
func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <pending|in-progress|completed|locked>",
		Short: "Set a concept's progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := errors.ValidateStatus(args[1])
			if err != nil {
				return err
			}
			return c.withSession(cmd.Context(), func(s *session) error {
				n, ok := s.store.Node(args[0])
				if !ok {
					return notFound(args[0])
				}
				s.store.SetNodeStatus(args[0], status)
				printSuccess(c.stdout, "%s %s %s", n.Data.Label, iconArrow, renderStatus(status))
				return nil
			})
		},
	}
}

// moveCommand creates the move command.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <x> <y>",
		Short: "Place a concept at a canvas position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid x %q", args[1])
			}
			y, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid y %q", args[2])
			}
			return c.withSession(cmd.Context(), func(s *session) error {
				if _, ok := s.store.Node(args[0]); !ok {
					return notFound(args[0])
				}
				s.store.UpdateNodePosition(args[0], roadmap.Position{X: x, Y: y})
				printSuccess(c.stdout, "Moved %s to %.0f, %.0f", args[0], x, y)
				return nil
			})
		},
	}
}

// duplicateCommand creates the duplicate command.
func (c *CLI) duplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a concept under the same parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				id, ok := s.store.DuplicateNode(args[0])
				if !ok {
					return notFound(args[0])
				}
				n, _ := s.store.Node(id)
				printSuccess(c.stdout, "Added %s", renderConcept(n))
				return nil
			})
		},
	}
}

// selectCommand creates the select command.
func (c *CLI) selectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Open a concept's detail panel",
		Long: `Select a concept and print its detail panel. The selection belongs to
the session and is not stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				s.store.SelectNode(args[0])
				id := s.store.SelectedNodeID()
				if id == "" {
					return notFound(args[0])
				}
				n, _ := s.store.Node(id)
				printConcept(c.stdout, n)
				if s.store.HiddenNodeIDs().Has(id) {
					fmt.Fprintln(c.stdout)
					printWarning(c.stdout, "Hidden by a collapsed ancestor")
				}
				return nil
			})
		},
	}
}
