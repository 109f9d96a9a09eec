// Package main implements the glslcrossc CLI, a batch front end for
// translating Vulkan-style GLSL shader pairs to OpenGL dialects.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/glslcross/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "glslcrossc",
	Short: "Vulkan-style GLSL to OpenGL GLSL cross-compiler",
	Long:  "glslcrossc translates vertex/fragment shader pairs written in Vulkan-flavored GLSL into desktop or ES OpenGL dialects, with reflection sidecars.",
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	cobra.OnInitialize(configureColor)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configureColor() {
	mode, err := rootCmd.PersistentFlags().GetString("color")
	if err != nil {
		return
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
