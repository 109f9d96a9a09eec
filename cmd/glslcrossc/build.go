package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Translate every shader pair listed in glslcross.toml",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	startDir := ""
	if len(args) == 1 {
		startDir = args[0]
	}

	manifest, ok, err := loadProjectManifest(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s", noManifestMessage)
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	dialect, err := parseDialect(manifest.Config.Output.Dialect)
	if err != nil {
		return err
	}
	outDir := filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Output.Dir))

	nameColor := color.New(color.FgCyan)
	successColor := color.New(color.FgGreen)

	for _, shader := range manifest.Config.Shaders {
		vertexPath := filepath.Join(manifest.Root, filepath.FromSlash(shader.Vertex))
		fragmentPath := filepath.Join(manifest.Root, filepath.FromSlash(shader.Fragment))

		result, err := compilePair(vertexPath, fragmentPath, dialect)
		if err != nil {
			return fmt.Errorf("shader %q: %w", shader.Name, err)
		}
		if err := writeShaderOutputs(outDir, shader.Name, result, manifest.Config.Output.Reflect); err != nil {
			return fmt.Errorf("shader %q: %w", shader.Name, err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				successColor.Sprint("ok"), nameColor.Sprint(shader.Name))
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "built %d shader pair(s) for %s\n",
			len(manifest.Config.Shaders), manifest.Config.Package.Name)
	}
	return nil
}
