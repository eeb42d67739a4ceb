// The robodesc command processes SDF and URDF robot descriptions.
package main

import (
	"os"

	"github.com/edaniels/golog"

	"github.com/robodesc/robodesc/cli"
)

func main() {
	if err := cli.NewApp().Run(os.Args); err != nil {
		golog.Global.Fatal(err)
	}
}
