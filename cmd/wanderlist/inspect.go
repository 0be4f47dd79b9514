package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

var inspectDiagram bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the internal state of the service and storage adapter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		components := []any{app.Notes, app.Repository()}
		if inspectDiagram {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "wanderlist"
			config.SecondaryLabel = "Data Layer"
			fmt.Fprintln(cmd.OutOrStdout(), introspection.TreeDiagram(componentTree(components), config))
			return nil
		}

		report := map[string]any{}
		for _, c := range components {
			intro, ok := c.(introspection.Introspectable)
			if !ok {
				continue
			}
			report[componentType(c)] = intro.State()
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	},
}

// stateNode is rendered by introspection.TreeDiagram. Status must be one of
// the classes of introspection.DefaultStyles().
type stateNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []stateNode
}

func componentTree(components []any) stateNode {
	root := stateNode{
		Name:     "Wanderlist",
		Status:   "running",
		Metadata: map[string]string{"type": "container"},
	}
	for _, c := range components {
		node := stateNode{
			Name:     componentType(c),
			Status:   "running",
			Metadata: map[string]string{"type": "process"},
		}
		if intro, ok := c.(introspection.Introspectable); ok {
			node.Metadata["state"] = fmt.Sprintf("%+v", intro.State())
		}
		root.Children = append(root.Children, node)
	}
	return root
}

func componentType(c any) string {
	if comp, ok := c.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return fmt.Sprintf("%T", c)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectDiagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
}
