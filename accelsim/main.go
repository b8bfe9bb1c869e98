// Command accelsim runs the accelerometer sampling loop on a host against
// simulated channels and streams the lines to stdout or a serial port.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.bug.st/serial"

	"github.com/itohio/goaccel/pkg/config"
)

// rootCmd runs the sampling loop.
var rootCmd = &cobra.Command{
	Use:   "accelsim",
	Short: "Stream simulated accelerometer samples.",
	Long: `accelsim runs the fixed-rate sampling loop against simulated ` +
		`X/Y/Z channels and writes one "x y z delta" line per iteration ` +
		`to stdout or to a serial port.`,
	Args: cobra.NoArgs,
	Run:  runRoot,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("config", "config.yaml", "Configuration file path")
	flags.StringP("port", "p", "", "Serial port to write to (stdout when empty)")
	flags.IntP("count", "n", 0, "Number of iterations (0 = until interrupted)")
	flags.Duration("period", 0, "Loop period override (e.g., 500us)")
}

func main() {
	// Diagnostics go to stderr so stdout carries only samples.
	log.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func runRoot(cmd *cobra.Command, _ []string) {
	configPath, _ := cmd.Flags().GetString("config")
	port, _ := cmd.Flags().GetString("port")
	count, _ := cmd.Flags().GetInt("count")
	period, _ := cmd.Flags().GetDuration("period")

	cfg, err := config.Load(configPath)
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}
	if period != 0 {
		cfg.Loop.Period = period
	}
	if err := cfg.Validate(); err != nil {
		fatalf("Invalid configuration: %v", err)
	}

	out, err := openOutput(port, cfg.Serial.BaudRate)
	if err != nil {
		fatalf("Failed to open output: %v", err)
	}
	atexit.Register(func() {
		if err := out.Close(); err != nil {
			log.Printf("Failed to close output: %v", err)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	st, err := run(ctx, cfg, out, count)
	if err != nil {
		fatalf("Sampling loop failed: %v", err)
	}

	log.Printf("%d iterations in %v: %d overruns, %d dropped lines, %d failed writes, %d read errors",
		st.Iterations, time.Since(start).Round(time.Millisecond), st.Overruns, st.Dropped, st.Failed, st.ReadErrors)
}

// fatalf logs and exits through atexit so registered handlers still run.
func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	atexit.Exit(1)
}

// openOutput opens the serial port, or returns stdout when port is empty.
func openOutput(port string, baudRate int) (io.WriteCloser, error) {
	if port == "" {
		return nopCloser{os.Stdout}, nil
	}

	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	log.Printf("Writing samples to %s at %d baud", port, baudRate)
	return conn, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
