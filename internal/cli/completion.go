package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for roadmap.

Besides commands and flags, the scripts complete concept ids from the stored
roadmap (show, update, collapse, connect, ...) and status values.

To load completions:

Bash:
  $ source <(roadmap completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ roadmap completion bash > /etc/bash_completion.d/roadmap
  # macOS:
  $ roadmap completion bash > $(brew --prefix)/etc/bash_completion.d/roadmap

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ roadmap completion zsh > "${fpath[1]}/_roadmap"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ roadmap completion fish | source

  # To load completions for each session, execute once:
  $ roadmap completion fish > ~/.config/fish/completions/roadmap.fish

PowerShell:
  PS> roadmap completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> roadmap completion powershell > roadmap.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// argKind is what a positional argument holds.
type argKind int

const (
	argConcept argKind = iota
	argStatus
)

// conceptArgs lists the positional arguments of commands that address
// concepts. Arguments beyond the list are not completed.
var conceptArgs = map[string][]argKind{
	"show":       {argConcept},
	"add-child":  {argConcept},
	"delete":     {argConcept},
	"update":     {argConcept},
	"expand":     {argConcept},
	"collapse":   {argConcept},
	"status":     {argConcept, argStatus},
	"move":       {argConcept},
	"duplicate":  {argConcept},
	"select":     {argConcept},
	"connect":    {argConcept, argConcept},
	"disconnect": {argConcept, argConcept},
}

// registerCompletions attaches argument completion to every command that
// takes concept ids.
func (c *CLI) registerCompletions(root *cobra.Command) {
	for _, sub := range root.Commands() {
		if kinds, ok := conceptArgs[sub.Name()]; ok {
			sub.ValidArgsFunction = c.completeArgs(kinds)
		}
	}
}

// completeArgs suggests concept ids (with their labels as descriptions) or
// statuses, depending on the position being completed.
func (c *CLI) completeArgs(kinds []argKind) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= len(kinds) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if kinds[len(args)] == argStatus {
			return statusCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var out []string
		err := c.withSession(ctx, func(s *session) error {
			out = conceptCompletions(s.store.Nodes(), toComplete)
			return nil
		})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func conceptCompletions(nodes []roadmap.Node, prefix string) []string {
	var out []string
	for _, n := range nodes {
		if strings.HasPrefix(n.ID, prefix) {
			out = append(out, fmt.Sprintf("%s\t%s", n.ID, n.Data.Label))
		}
	}
	return out
}

func statusCompletions(prefix string) []string {
	var out []string
	for _, st := range roadmap.Statuses {
		if strings.HasPrefix(string(st), prefix) {
			out = append(out, string(st))
		}
	}
	return out
}
