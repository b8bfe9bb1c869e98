package main

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/itohio/goaccel/pkg/accel"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		ports, err := accel.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		printPorts(cmd.OutOrStdout(), ports)
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func printPorts(w io.Writer, ports []accel.Port) {
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found")
		return
	}
	for _, p := range ports {
		if p.Description != "" && p.Description != p.Name {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
		} else {
			fmt.Fprintln(w, p.Name)
		}
	}
}
