// Package cmd provides the barangayctl commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"barangaylink/pkg/apiclient"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "barangayctl",
	Short: "barangayctl - BarangayLink from the terminal",
	Long: `barangayctl talks to a BarangayLink server as a signed-in resident.

Configuration:
  Config is read from $HOME/.barangayctl.yaml (or --config).
  Environment variables override it with the BARANGAY_ prefix.
  Example: BARANGAY_API_URL=https://barangay.example.org/api

Keys:
  api_url       API root, default http://localhost:3000/api
  ws_url        push channel URL, derived from api_url when empty
  session_file  where the session is kept, default $HOME/.barangayctl/session.json`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.barangayctl.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "API root URL")
	rootCmd.PersistentFlags().Bool("verbose", false, "log HTTP activity")
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	home, _ := os.UserHomeDir()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(home)
		viper.SetConfigName(".barangayctl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BARANGAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api_url", "http://localhost:3000/api")
	viper.SetDefault("session_file", filepath.Join(home, ".barangayctl", "session.json"))
	viper.SetDefault("timeout", 30*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// app is a client plus the session restored from session_file
type app struct {
	client   *apiclient.Client
	session  *apiclient.Session
	services *apiclient.Services
}

func newApp(ctx context.Context) *app {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	opts := []apiclient.Option{
		apiclient.WithLogger(log),
		apiclient.WithTimeout(viper.GetDuration("timeout")),
		apiclient.WithUserAgent("barangayctl/1.0"),
	}
	if ws := viper.GetString("ws_url"); ws != "" {
		opts = append(opts, apiclient.WithWebSocketURL(ws))
	}

	client := apiclient.New(viper.GetString("api_url"), opts...)
	session := apiclient.NewSession(client, apiclient.NewFileStorage(viper.GetString("session_file")))
	<-session.Init(ctx)

	return &app{
		client:   client,
		session:  session,
		services: apiclient.NewServices(client),
	}
}

// signedIn restores the session and fails when there is none
func signedIn(ctx context.Context) (*app, error) {
	a := newApp(ctx)
	if !a.session.IsAuthenticated() {
		return nil, fmt.Errorf("not logged in; run 'barangayctl login'")
	}
	return a, nil
}
