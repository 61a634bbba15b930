package main

import (
	"github.com/Paintersrp/portpatrol/internal/cli"
	"github.com/Paintersrp/portpatrol/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
