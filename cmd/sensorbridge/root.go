// Package sensorbridge implements the sensorbridge CLI.
package sensorbridge

import (
	"fmt"
	"os"

	"github.com/edgehem/sensorbridge/pkg/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var cfgFile string
var logLevel string
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sensorbridge",
	Short: "sensorbridge forwards MQTT sensor telemetry to a hem store",
	Long: `sensorbridge subscribes to MQTT topics carrying periodic sensor
readings from field devices, resolves each topic to a registered device in a
hem store, and forwards every reading as a measurement write.`,
	Run: func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Println(Version)
			return
		}

		cmd.Help()
	},
}

// Main runs the CLI.
func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/sensorbridge.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "L", "info", "log at this level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print the version number")

	rootCmd.AddCommand(bridgeCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
}
