package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gazawayj/planetgis/internal/firms"
	"github.com/gazawayj/planetgis/internal/server"
)

// Options defines all CLI flags and env vars for the viewer server.
// Flags: --host, --port, --data-dir, --web-dir, --firms-map-key, ...
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host    string `doc:"Host to bind to" default:"0.0.0.0"`
	Port    int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir string `doc:"Directory for the detection archive" default:".data"`
	WebDir  string `doc:"Path to web/ directory" default:"web"`

	FirmsMapKey string `doc:"NASA FIRMS map key for the CSV proxy"`
	FirmsSource string `doc:"FIRMS detection source" default:"VIIRS_SNPP_NRT"`
	FirmsArea   string `doc:"FIRMS area of interest" default:"world"`
	FirmsRange  string `doc:"FIRMS day range" default:"1"`
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		DataDir:     opts.DataDir,
		WebDir:      opts.WebDir,
		FIRMSMapKey: opts.FirmsMapKey,
		FIRMSSource: opts.FirmsSource,
		FIRMSArea:   opts.FirmsArea,
		FIRMSRange:  opts.FirmsRange,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("planetgis server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Viewer:  %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			if opts.FirmsMapKey == "" {
				fmt.Println()
				fmt.Printf("  Note: no FIRMS map key set, /firms proxy will fail (%s)\n", firms.DefaultBaseURL)
			}
			fmt.Println()

			go func() {
				if err := firms.PingHealth(context.Background(), http.DefaultClient,
					baseURL+"/health", 5, 3*time.Second); err != nil {
					log.Printf("health check never came up: %v", err)
				}
			}()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})
		hooks.OnStop(func() {
			srv.Close()
		})
	})

	cli.Root().Use = "planetgis"
	cli.Root().Short = "Multi-planet map viewer with live fire detection overlays"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := newServer(opts)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}
