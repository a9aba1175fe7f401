package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/pkg/cmd/server"
)

// serveTrackingCmd represents the serve tracking command
var serveTrackingCmd = &cobra.Command{
	Use:   "tracking",
	Short: "Serve the bus tracking instance",
	Run:   server.RunServeTracking(c),
}

func init() {
	serveCmd.AddCommand(serveTrackingCmd)
}
