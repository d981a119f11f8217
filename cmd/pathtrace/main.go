// pathtrace renders scenes of spheres with a physically based path tracer.
//
// Usage:
//
//	pathtrace render --scene cover --width 400 --samples 50 -o cover.png
//	pathtrace render --scene model.glb --preview
//	pathtrace scenes
package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var cmdRoot = &cobra.Command{
	Use:   "pathtrace",
	Short: "Offline path tracer for sphere scenes",
	Long: `pathtrace renders a scene of spheres with diffuse, metal and glass
materials under a sky gradient, writing a PPM or PNG image.`,
	SilenceUsage: true,
}

func main() {
	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	// glog registers its flags on the standard flag set; expose them as
	// persistent cobra flags and mark the standard set parsed.
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	_ = flag.CommandLine.Parse(nil)

	cmdRoot.AddCommand(cmdRender, cmdScenes)

	if err := fang.Execute(context.Background(), cmdRoot); err != nil {
		glog.Flush()
		os.Exit(1)
	}
}
