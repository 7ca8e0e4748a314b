package cmd

import (
	"fmt"
	"runtime"

	"github.com/gophertribe/devtool/build"
	"github.com/spf13/cobra"
)

const (
	binary      = "dist/colorsensor"
	mainPackage = "./cmd/colorsensor"
	buildImage  = "gophertribe/gobuild:1.25-bookworm"
)

// BuildCmd builds the cli natively or, for a foreign target, inside the build image.
// hid needs cgo, hence the container for cross builds.
func BuildCmd() *cobra.Command {
	var noCache bool
	var version, targetOS, targetArch, crossOS, crossArch string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the colorsensor cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			if targetOS == runtime.GOOS && targetArch == runtime.GOARCH {
				if crossOS != "" && crossArch != "" {
					targetOS, targetArch = crossOS, crossArch
				}
				return build.GoBuild(binary, mainPackage, build.GoBuildOpts{
					Version:       version,
					InjectVersion: true,
					ConfigPackage: "main",
					EnableCgo:     true,
					Arch:          targetArch,
					OS:            targetOS,
				})
			}
			return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", targetOS, targetArch),
				[]string{"build", "--version", version, "--cross-os", crossOS, "--cross-arch", crossArch},
				build.DockerBuildOpts{NoCache: noCache, Image: buildImage})
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not use cache when building in docker")
	cmd.Flags().StringVar(&version, "version", "latest", "version injected into the binary")
	cmd.Flags().StringVar(&targetOS, "os", runtime.GOOS, "os to build for")
	cmd.Flags().StringVar(&targetArch, "arch", runtime.GOARCH, "arch to build for")
	cmd.Flags().StringVar(&crossOS, "cross-os", "", "os to cross-compile for")
	cmd.Flags().StringVar(&crossArch, "cross-arch", "", "arch to cross-compile for")
	return cmd
}
