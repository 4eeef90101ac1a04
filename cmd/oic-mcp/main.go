package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/sudhagarjb/oic-mcp/internal/config"
	"github.com/sudhagarjb/oic-mcp/internal/server"
)

var BuildVersion = "dev"

func main() {
	conf := flag.String("config", "", "path to config file or a http(s) url; upstream settings fall back to OIC_* / OAUTH_* env vars")
	port := flag.String("port", "", "port to listen on (overrides config), e.g. '8080' or ':8080'")
	version := flag.Bool("version", false, "print version and exit")
	help := flag.Bool("help", false, "print help and exit")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(BuildVersion)
		return
	}
	cfg, err := config.Load(*conf)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *port != "" {
		if (*port)[0] != ':' {
			cfg.Server.Addr = ":" + *port
		} else {
			cfg.Server.Addr = *port
		}
	}

	if err := server.Run(cfg); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
