package main

import (
	"flag"
	"log"
	"os"

	"github.com/slpgo/slpd/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML directory agent configuration file")
	adminAddr := flag.String("admin-addr", ":8080", "address for the read-only admin/metrics HTTP server, empty to disable")
	redisAddr := flag.String("redis-addr", "", "optional Redis address for a shared registration rate limiter")
	flag.Parse()

	a, err := app.New(app.Options{
		ConfigPath: *configPath,
		AdminAddr:  *adminAddr,
		RedisAddr:  *redisAddr,
	})
	if err != nil {
		log.Printf("slpd failed to initialize: %v", err)
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		log.Printf("slpd failed: %v", err)
		os.Exit(1)
	}
}
